package ta

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"smartob-trader/internal/types"
)

func constant(n int, v float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = v
	}
	return xs
}

func TestEMAConstantSeries(t *testing.T) {
	if got := EMA(constant(60, 1.25), 20); math.Abs(got-1.25) > 1e-12 {
		t.Errorf("EMA = %v, want 1.25", got)
	}
	if got := EMA(constant(5, 1), 20); !math.IsNaN(got) {
		t.Errorf("EMA on short series = %v, want NaN", got)
	}
}

func TestRSIRisingSeries(t *testing.T) {
	xs := make([]float64, 40)
	for i := range xs {
		xs[i] = float64(i)
	}
	if got := RSI(xs, 14); math.Abs(got-100) > 1e-9 {
		t.Errorf("RSI = %v, want 100", got)
	}
	if got := RSI(xs[:14], 14); !math.IsNaN(got) {
		t.Errorf("RSI on short series = %v, want NaN", got)
	}
}

func TestATRConstantRange(t *testing.T) {
	n := 40
	if got := ATR(constant(n, 11), constant(n, 9), constant(n, 10), 14); math.Abs(got-2) > 1e-9 {
		t.Errorf("ATR = %v, want 2", got)
	}
	if got := ATR(constant(n, 11), constant(n-1, 9), constant(n, 10), 14); !math.IsNaN(got) {
		t.Errorf("ATR on ragged input = %v, want NaN", got)
	}
}

type staticData struct {
	w types.BarWindow
}

func (s staticData) Bars(_ context.Context, _ string, _ types.Timeframe, count int) (types.BarWindow, error) {
	if count < len(s.w) {
		return s.w[:count], nil
	}
	return s.w, nil
}

func (s staticData) SymbolInfo(context.Context, string) (types.SymbolInfo, error) {
	return types.SymbolInfo{}, nil
}

func (s staticData) Quote(context.Context, string) (float64, float64, error) { return 0, 0, nil }

func flatWindow(n int) types.BarWindow {
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	w := make(types.BarWindow, n)
	for i := range w {
		w[i] = types.Bar{Time: now.Add(-time.Duration(i) * time.Hour), Open: 10, High: 11, Low: 9, Close: 10, Volume: 100}
	}
	return w
}

func TestProvider(t *testing.T) {
	p := NewProvider(staticData{w: flatWindow(100)})
	ctx := context.Background()

	ema, err := p.EMA(ctx, "X", types.H1, 20, types.PriceClose)
	if err != nil || math.Abs(ema-10) > 1e-9 {
		t.Errorf("EMA = %v, %v; want 10", ema, err)
	}
	atr, err := p.ATR(ctx, "X", types.H1, 14)
	if err != nil || math.Abs(atr-2) > 1e-9 {
		t.Errorf("ATR = %v, %v; want 2", atr, err)
	}
}

func TestProviderInsufficientData(t *testing.T) {
	p := NewProvider(staticData{w: flatWindow(10)})
	_, err := p.EMA(context.Background(), "X", types.H1, 50, types.PriceClose)
	if !errors.Is(err, types.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}
