package ta

import (
	"context"
	"fmt"
	"math"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/types"
)

// warmupFactor sizes the history fetched for recursive indicators so the
// seed value has decayed by the time the newest bar is reached.
const warmupFactor = 3

// Provider computes indicators from bars fetched through a MarketData source.
type Provider struct {
	md interfaces.MarketData
}

var _ interfaces.Indicators = (*Provider)(nil)

func NewProvider(md interfaces.MarketData) *Provider {
	return &Provider{md: md}
}

func (p *Provider) EMA(ctx context.Context, symbol string, tf types.Timeframe, period int, price types.AppliedPrice) (float64, error) {
	bars, err := p.history(ctx, symbol, tf, period*warmupFactor, period)
	if err != nil {
		return 0, err
	}
	return checked("EMA", symbol, tf, EMA(series(bars, price), period))
}

func (p *Provider) RSI(ctx context.Context, symbol string, tf types.Timeframe, period int, price types.AppliedPrice) (float64, error) {
	bars, err := p.history(ctx, symbol, tf, period*warmupFactor+1, period+1)
	if err != nil {
		return 0, err
	}
	return checked("RSI", symbol, tf, RSI(series(bars, price), period))
}

func (p *Provider) ATR(ctx context.Context, symbol string, tf types.Timeframe, period int) (float64, error) {
	bars, err := p.history(ctx, symbol, tf, period*warmupFactor+1, period+1)
	if err != nil {
		return 0, err
	}
	h := series(bars, types.PriceHigh)
	l := series(bars, types.PriceLow)
	c := series(bars, types.PriceClose)
	return checked("ATR", symbol, tf, ATR(h, l, c, period))
}

// history fetches up to want bars and fails when fewer than need came back.
func (p *Provider) history(ctx context.Context, symbol string, tf types.Timeframe, want, need int) ([]types.Bar, error) {
	if need <= 1 {
		return nil, fmt.Errorf("invalid indicator period for %s %s", symbol, tf)
	}
	w, err := p.md.Bars(ctx, symbol, tf, want)
	if err != nil {
		return nil, err
	}
	if len(w) < need {
		return nil, fmt.Errorf("%s %s: have %d bars, need %d: %w", symbol, tf, len(w), need, types.ErrInsufficientData)
	}
	return w.Chronological(), nil
}

func series(bars []types.Bar, price types.AppliedPrice) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = price.Of(b)
	}
	return out
}

func checked(name, symbol string, tf types.Timeframe, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s on %s %s is undefined: %w", name, symbol, tf, types.ErrInsufficientData)
	}
	return v, nil
}
