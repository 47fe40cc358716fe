package tradelog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/types"
)

// TimeLayout matches the date-and-minutes timestamp of the trade log.
const TimeLayout = "2006.01.02 15:04"

// Log appends one comma-separated line per executed trade:
//
//	timestamp,symbol,direction,orderBlockType,lotSize,stopLoss,equity
//
// Lines are only ever appended; the file is never truncated while open.
type Log struct {
	mu   sync.Mutex
	path string
	loc  *time.Location
}

var _ interfaces.TradeRecorder = (*Log)(nil)

// Open creates the log file (and its directory) if missing. Timestamps are
// written in loc so that ReadDay with the same zone finds them.
func Open(path string, loc *time.Location) (*Log, error) {
	if path == "" {
		return nil, errors.New("empty trade log path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Log{path: path, loc: loc}, nil
}

func (l *Log) Path() string { return l.path }

// Record appends rec. The file is opened per write so external rotation is safe.
func (l *Log) Record(_ context.Context, rec types.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(Format(rec, l.loc)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Close is a no-op; the log holds no open handle between writes.
func (l *Log) Close() error { return nil }

// Remove deletes the log file. Only used when deletion at shutdown is
// explicitly configured.
func (l *Log) Remove() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := os.Remove(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Format renders rec as log fields with the timestamp in loc.
func Format(rec types.TradeRecord, loc *time.Location) []string {
	return []string{
		rec.Time.In(loc).Format(TimeLayout),
		rec.Symbol,
		rec.Side,
		rec.OrderBlock,
		strconv.FormatFloat(rec.LotSize, 'f', 2, 64),
		strconv.FormatFloat(rec.StopLoss, 'f', 5, 64),
		strconv.FormatFloat(rec.Equity, 'f', 2, 64),
	}
}

// Parse is the inverse of Format. Times are read in loc.
func Parse(fields []string, loc *time.Location) (types.TradeRecord, error) {
	var rec types.TradeRecord
	if len(fields) != 7 {
		return rec, fmt.Errorf("trade log line has %d fields, want 7", len(fields))
	}
	ts, err := time.ParseInLocation(TimeLayout, fields[0], loc)
	if err != nil {
		return rec, fmt.Errorf("timestamp: %w", err)
	}
	nums := make([]float64, 3)
	for i, s := range fields[4:] {
		if nums[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return rec, fmt.Errorf("field %d: %w", i+4, err)
		}
	}
	return types.TradeRecord{
		Time:       ts,
		Symbol:     fields[1],
		Side:       fields[2],
		OrderBlock: fields[3],
		LotSize:    nums[0],
		StopLoss:   nums[1],
		Equity:     nums[2],
	}, nil
}

// ReadDay returns the records whose timestamp falls on day (YYYY-MM-DD).
// Malformed lines are skipped.
func ReadDay(path, day string, loc *time.Location) ([]types.TradeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var out []types.TradeRecord
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return out, err
		}
		rec, err := Parse(fields, loc)
		if err != nil {
			continue
		}
		if rec.Time.Format("2006-01-02") == day {
			out = append(out, rec)
		}
	}
	return out, nil
}
