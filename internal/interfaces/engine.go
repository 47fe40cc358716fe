package interfaces

import (
	"context"
	"time"

	"smartob-trader/internal/types"
)

// Engine runs decision cycles. Step returns nil results when no new bar has
// formed or the session gates are closed.
type Engine interface {
	Step(ctx context.Context) ([]*types.StepResult, error)
	OnTimer(ctx context.Context, now time.Time)
}

// TradeRecorder persists executed trades.
type TradeRecorder interface {
	Record(ctx context.Context, rec types.TradeRecord) error
	Close() error
}

// TradeHistory answers the questions the engine asks at startup to resume a
// trading day after a restart.
type TradeHistory interface {
	CountOnDay(ctx context.Context, day string) (int, error)
	LastTradeTime(ctx context.Context) (time.Time, error)
}
