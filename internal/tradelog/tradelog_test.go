package tradelog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartob-trader/internal/types"
)

func sampleRecord(at time.Time) types.TradeRecord {
	return types.TradeRecord{
		Time:       at,
		Symbol:     "EURUSD",
		Side:       "BUY",
		OrderBlock: "BullishOB",
		LotSize:    0.5,
		StopLoss:   1.098123456,
		Equity:     10000,
	}
}

func TestFormat(t *testing.T) {
	rec := sampleRecord(time.Date(2024, 3, 4, 9, 5, 59, 0, time.UTC))
	got := strings.Join(Format(rec, time.UTC), ",")
	want := "2024.03.04 09:05,EURUSD,BUY,BullishOB,0.50,1.09812,10000.00"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	rec := sampleRecord(time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC))
	got, err := Parse(Format(rec, time.UTC), time.UTC)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !got.Time.Equal(rec.Time) || got.Symbol != rec.Symbol || got.LotSize != 0.5 || got.StopLoss != 1.09812 {
		t.Errorf("Parse = %+v", got)
	}
	if _, err := Parse([]string{"x"}, time.UTC); err == nil {
		t.Error("expected error for short line")
	}
}

func TestRecordAppendsAndReadDay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trades.csv")
	l, err := Open(path, time.UTC)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	day1 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	for _, at := range []time.Time{day1, day1.Add(time.Hour), day2} {
		if err := l.Record(ctx, sampleRecord(at)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	// A reopened log keeps earlier lines.
	l2, err := Open(path, time.UTC)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := l2.Record(ctx, sampleRecord(day2.Add(time.Hour))); err != nil {
		t.Fatalf("Record: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("garbage line\n")
	f.Close()

	recs, err := ReadDay(path, "2024-03-04", time.UTC)
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("day 1 has %d records, want 2", len(recs))
	}
	recs, _ = ReadDay(path, "2024-03-05", time.UTC)
	if len(recs) != 2 {
		t.Errorf("day 2 has %d records, want 2", len(recs))
	}
}

func TestReadDayMissingFile(t *testing.T) {
	recs, err := ReadDay(filepath.Join(t.TempDir(), "none.csv"), "2024-03-04", time.UTC)
	if err != nil || recs != nil {
		t.Errorf("ReadDay = %v, %v; want nil, nil", recs, err)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	l, err := Open(path, time.UTC)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("log still exists after Remove")
	}
	if err := l.Remove(); err != nil {
		t.Errorf("second Remove = %v, want nil", err)
	}
}

func TestRecordWritesInLogZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	path := filepath.Join(t.TempDir(), "trades.csv")
	l, err := Open(path, time.UTC)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// 02:00 IST on the 18th is 20:30 UTC on the 17th.
	at := time.Date(2026, 10, 18, 2, 0, 0, 0, ist)
	if err := l.Record(context.Background(), sampleRecord(at)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "2026.10.17 20:30,") {
		t.Errorf("line = %q, want a UTC timestamp", data)
	}
	recs, err := ReadDay(path, "2026-10-17", time.UTC)
	if err != nil || len(recs) != 1 || !recs[0].Time.Equal(at) {
		t.Errorf("ReadDay = %+v, %v; want the trade on 2026-10-17", recs, err)
	}
	if recs, _ := ReadDay(path, "2026-10-18", time.UTC); len(recs) != 0 {
		t.Errorf("trade also reported on 2026-10-18")
	}
}
