package paper

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"smartob-trader/internal/types"
)

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestStartLoadsCSV(t *testing.T) {
	b := New(Params{
		Equity:       5000,
		DataDir:      "testdata",
		SpreadPoints: 2,
		Instruments:  map[string]types.SymbolInfo{"EURUSD": {MinIncrement: 0.00001, TickValue: 1, MinVolume: 0.01, MaxVolume: 5}},
		Now:          fixedNow(time.Date(2024, 3, 4, 9, 57, 0, 0, time.UTC)),
	})
	ctx := context.Background()
	if err := b.Start(ctx, []string{"EURUSD", "GBPUSD"}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// At 09:57 the 09:55 bar is still forming and the 10:00 bar has not opened.
	w, err := b.Bars(ctx, "EURUSD", types.M5, 10)
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if len(w) != 2 {
		t.Fatalf("got %d bars, want 2", len(w))
	}
	if err := w.Validate(); err != nil {
		t.Errorf("window out of order: %v", err)
	}
	if w[0].Close != 1.10020 || w[0].Volume != 120 {
		t.Errorf("newest bar = %+v, want the 09:50 bar", w[0])
	}

	bid, ask, err := b.Quote(ctx, "EURUSD")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if math.Abs(bid-1.10019) > 1e-9 || math.Abs(ask-1.10021) > 1e-9 {
		t.Errorf("quote = %v/%v, want 1.10019/1.10021", bid, ask)
	}

	if _, err := b.Bars(ctx, "GBPUSD", types.M5, 10); !errors.Is(err, types.ErrInsufficientData) {
		t.Errorf("GBPUSD err = %v, want ErrInsufficientData", err)
	}
	if eq, _ := b.Equity(ctx); eq != 5000 {
		t.Errorf("Equity = %v, want 5000", eq)
	}
}

func TestAppendBarAndFills(t *testing.T) {
	b := New(Params{Equity: 1000})
	ctx := context.Background()
	t0 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	b.AppendBar("X", types.H1, types.Bar{Time: t0.Add(time.Hour), Close: 2})
	b.AppendBar("X", types.H1, types.Bar{Time: t0, Close: 1})

	w, err := b.Bars(ctx, "X", types.H1, 1)
	if err != nil || len(w) != 1 || w[0].Close != 2 {
		t.Fatalf("Bars = %+v, %v; want the later bar", w, err)
	}

	info, _ := b.SymbolInfo(ctx, "X")
	if info.Symbol != "X" || info.MaxVolume != DefaultInstrument.MaxVolume {
		t.Errorf("SymbolInfo = %+v, want defaults", info)
	}

	ok, err := b.OpenPosition(ctx, types.TradeIntent{Symbol: "X", LotSize: 1})
	if err != nil || !ok {
		t.Errorf("OpenPosition = %v, %v; want accepted", ok, err)
	}
	for _, lots := range []float64{0, -1, DefaultInstrument.MaxVolume + 1} {
		if ok, _ := b.OpenPosition(ctx, types.TradeIntent{Symbol: "X", LotSize: lots}); ok {
			t.Errorf("lot size %v was accepted", lots)
		}
	}
	b.SetReject(true)
	if ok, _ := b.OpenPosition(ctx, types.TradeIntent{Symbol: "X", LotSize: 1}); ok {
		t.Error("order accepted while rejecting")
	}
	if n := len(b.Fills()); n != 1 {
		t.Errorf("fills = %d, want 1", n)
	}
}

func TestParseBarTime(t *testing.T) {
	for _, s := range []string{"2024-03-04T10:00:00Z", "2024-03-04 10:00:00", "2024.03.04 10:00"} {
		got, err := parseBarTime(s)
		if err != nil {
			t.Errorf("parseBarTime(%q): %v", s, err)
			continue
		}
		if !got.Equal(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)) {
			t.Errorf("parseBarTime(%q) = %v", s, got)
		}
	}
	if _, err := parseBarTime("yesterday"); err == nil {
		t.Error("expected error for free text")
	}
}

func TestBarsShowOnlyClosedBars(t *testing.T) {
	t0 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	now := t0.Add(59 * time.Minute)
	b := New(Params{Equity: 1000, Now: func() time.Time { return now }})
	ctx := context.Background()
	b.AppendBar("X", types.H1, types.Bar{Time: t0.Add(-time.Hour), Close: 1})
	b.AppendBar("X", types.H1, types.Bar{Time: t0, Close: 2})

	w, err := b.Bars(ctx, "X", types.H1, 5)
	if err != nil || len(w) != 1 || w[0].Close != 1 {
		t.Fatalf("Bars before close = %+v, %v; want only the 08:00 bar", w, err)
	}

	now = t0.Add(time.Hour)
	w, err = b.Bars(ctx, "X", types.H1, 5)
	if err != nil || len(w) != 2 || w[0].Close != 2 {
		t.Errorf("Bars at close = %+v, %v; want the 09:00 bar first", w, err)
	}

	if _, err := b.Bars(ctx, "X", types.H1, -3); err == nil {
		t.Error("expected error for a negative count")
	}
}
