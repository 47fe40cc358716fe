package strategy

import (
	"context"
	"fmt"

	"smartob-trader/internal/types"
)

type indKey struct {
	kind   types.IndicatorKind
	tf     types.Timeframe
	period int
}

// fakeIndicators returns canned values keyed by kind/timeframe/period.
type fakeIndicators struct {
	values map[indKey]float64
	err    error
}

func (f *fakeIndicators) get(kind types.IndicatorKind, tf types.Timeframe, period int) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	v, ok := f.values[indKey{kind, tf, period}]
	if !ok {
		return 0, fmt.Errorf("no %s(%d) on %s: %w", kind, period, tf, types.ErrInsufficientData)
	}
	return v, nil
}

func (f *fakeIndicators) EMA(_ context.Context, _ string, tf types.Timeframe, period int, _ types.AppliedPrice) (float64, error) {
	return f.get(types.IndicatorEMA, tf, period)
}

func (f *fakeIndicators) RSI(_ context.Context, _ string, tf types.Timeframe, period int, _ types.AppliedPrice) (float64, error) {
	return f.get(types.IndicatorRSI, tf, period)
}

func (f *fakeIndicators) ATR(_ context.Context, _ string, tf types.Timeframe, period int) (float64, error) {
	return f.get(types.IndicatorATR, tf, period)
}

// fakeData serves fixed windows per timeframe.
type fakeData struct {
	bars map[types.Timeframe]types.BarWindow
}

func (f *fakeData) Bars(_ context.Context, symbol string, tf types.Timeframe, count int) (types.BarWindow, error) {
	w, ok := f.bars[tf]
	if !ok || len(w) == 0 {
		return nil, fmt.Errorf("no %s bars for %s: %w", tf, symbol, types.ErrInsufficientData)
	}
	if count < len(w) {
		w = w[:count]
	}
	return w, nil
}

func (f *fakeData) SymbolInfo(context.Context, string) (types.SymbolInfo, error) {
	return types.SymbolInfo{MinIncrement: 0.00001, TickValue: 1}, nil
}

func (f *fakeData) Quote(context.Context, string) (float64, float64, error) {
	return 0, 0, nil
}
