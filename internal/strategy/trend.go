package strategy

import (
	"context"
	"fmt"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/types"
)

// TrendEvaluator compares a fast and a slow EMA of closes.
type TrendEvaluator struct {
	Indicators interfaces.Indicators
	FastPeriod int
	SlowPeriod int
}

// IsUptrend reports EMA(fast) > EMA(slow) on one timeframe.
func (te TrendEvaluator) IsUptrend(ctx context.Context, symbol string, tf types.Timeframe) (bool, error) {
	fast, err := te.Indicators.EMA(ctx, symbol, tf, te.FastPeriod, types.PriceClose)
	if err != nil {
		return false, fmt.Errorf("fast EMA(%d) %s %s: %w", te.FastPeriod, symbol, tf, err)
	}
	slow, err := te.Indicators.EMA(ctx, symbol, tf, te.SlowPeriod, types.PriceClose)
	if err != nil {
		return false, fmt.Errorf("slow EMA(%d) %s %s: %w", te.SlowPeriod, symbol, tf, err)
	}
	return fast > slow, nil
}

// Overall combines two timeframes: Up when both are up, Down when both are
// not up, Mixed otherwise.
func (te TrendEvaluator) Overall(ctx context.Context, symbol string, tf1, tf2 types.Timeframe) (types.Trend, error) {
	up1, err := te.IsUptrend(ctx, symbol, tf1)
	if err != nil {
		return types.TrendMixed, err
	}
	up2, err := te.IsUptrend(ctx, symbol, tf2)
	if err != nil {
		return types.TrendMixed, err
	}
	switch {
	case up1 && up2:
		return types.TrendUp, nil
	case !up1 && !up2:
		return types.TrendDown, nil
	default:
		return types.TrendMixed, nil
	}
}
