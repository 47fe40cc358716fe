package eod

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/tradelog"
)

type aggRow struct {
	Symbol   string
	Buys     int
	Sells    int
	BuyLots  float64
	SellLots float64
	Bullish  int
	Bearish  int
}

func (r aggRow) fields() []string {
	return []string{r.Symbol, strconv.Itoa(r.Buys + r.Sells), strconv.Itoa(r.Buys), strconv.Itoa(r.Sells),
		fmt.Sprintf("%.2f", r.BuyLots), fmt.Sprintf("%.2f", r.SellLots), strconv.Itoa(r.Bullish), strconv.Itoa(r.Bearish)}
}

type eodSummarizer struct {
	logPath string
	outDir  string
	loc     *time.Location
}

var _ interfaces.EodSummarizer = (*eodSummarizer)(nil)

// NewSummarizer reads the trade log at logPath and writes reports to
// outDir/<day>.csv. Log timestamps are interpreted in loc.
func NewSummarizer(logPath, outDir string, loc *time.Location) interfaces.EodSummarizer {
	if loc == nil {
		loc = time.UTC
	}
	return &eodSummarizer{logPath: logPath, outDir: outDir, loc: loc}
}

func (s *eodSummarizer) csvPath(day string) string {
	return filepath.Join(s.outDir, day+".csv")
}

func (s *eodSummarizer) SummarizeDay(day string) (string, error) {
	recs, err := tradelog.ReadDay(s.logPath, day, s.loc)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", nil
	}

	aggs := map[string]*aggRow{}
	for _, r := range recs {
		row := aggs[r.Symbol]
		if row == nil {
			row = &aggRow{Symbol: r.Symbol}
			aggs[r.Symbol] = row
		}
		switch r.Side {
		case "BUY":
			row.Buys++
			row.BuyLots += r.LotSize
		case "SELL":
			row.Sells++
			row.SellLots += r.LotSize
		}
		switch r.OrderBlock {
		case "BullishOB":
			row.Bullish++
		case "BearishOB":
			row.Bearish++
		}
	}
	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := s.csvPath(day)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()
	w := csv.NewWriter(out)
	headers := []string{"symbol", "trades", "buys", "sells", "buy_lots", "sell_lots", "bullish_ob", "bearish_ob"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	total := aggRow{Symbol: "TOTAL"}
	for _, k := range keys {
		r := aggs[k]
		if err := w.Write(r.fields()); err != nil {
			return "", err
		}
		total.Buys += r.Buys
		total.Sells += r.Sells
		total.BuyLots += r.BuyLots
		total.SellLots += r.SellLots
		total.Bullish += r.Bullish
		total.Bearish += r.Bearish
	}
	if err := w.Write(total.fields()); err != nil {
		return "", err
	}
	w.Flush()
	return outPath, w.Error()
}

func (s *eodSummarizer) ShouldRun(day string) (bool, string) {
	outPath := s.csvPath(day)
	if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
		return true, outPath
	}
	return false, outPath
}
