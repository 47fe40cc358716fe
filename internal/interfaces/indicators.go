package interfaces

import (
	"context"

	"smartob-trader/internal/types"
)

// Indicators computes the latest value of an indicator on a symbol/timeframe.
type Indicators interface {
	EMA(ctx context.Context, symbol string, tf types.Timeframe, period int, price types.AppliedPrice) (float64, error)
	RSI(ctx context.Context, symbol string, tf types.Timeframe, period int, price types.AppliedPrice) (float64, error)
	ATR(ctx context.Context, symbol string, tf types.Timeframe, period int) (float64, error)
}
