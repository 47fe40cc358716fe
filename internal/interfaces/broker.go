package interfaces

import (
	"context"

	"smartob-trader/internal/types"
)

// MarketData supplies bars and instrument properties.
type MarketData interface {
	// Bars returns the count most recent bars, newest first.
	Bars(ctx context.Context, symbol string, tf types.Timeframe, count int) (types.BarWindow, error)

	// SymbolInfo returns tick size, tick value and volume limits.
	SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error)

	// Quote returns the current bid and ask.
	Quote(ctx context.Context, symbol string) (bid, ask float64, err error)
}

// Account reports the account's current equity.
type Account interface {
	Equity(ctx context.Context) (float64, error)
}

// Executor submits orders. accepted is false when the broker declines.
type Executor interface {
	OpenPosition(ctx context.Context, intent types.TradeIntent) (accepted bool, err error)
}

// Broker bundles the collaborators a live or paper venue provides.
type Broker interface {
	MarketData
	Account
	Executor

	// Start prepares connections and instrument metadata for the symbols.
	Start(ctx context.Context, symbols []string) error

	// Stop releases broker resources.
	Stop(ctx context.Context)
}
