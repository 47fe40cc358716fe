package engine

import (
	"context"
	"fmt"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/logger"
	"smartob-trader/internal/metrics"
	"smartob-trader/internal/types"
)

// orderExecutor submits intents and records accepted trades.
type orderExecutor struct {
	executor  interfaces.Executor
	recorders []interfaces.TradeRecorder
}

func newOrderExecutor(executor interfaces.Executor, recorders []interfaces.TradeRecorder) *orderExecutor {
	return &orderExecutor{executor: executor, recorders: recorders}
}

// submit sends intent to the executor. A transport failure wraps
// ErrExternalService and a decline wraps ErrOrderRejected; in both cases
// nothing is recorded.
func (oe *orderExecutor) submit(ctx context.Context, intent types.TradeIntent) error {
	accepted, err := oe.executor.OpenPosition(ctx, intent)
	if err != nil {
		return fmt.Errorf("open %s %s: %v: %w", intent.Direction.Side(), intent.Symbol, err, types.ErrExternalService)
	}
	if !accepted {
		metrics.RejectionsTotal.WithLabelValues(intent.Symbol).Inc()
		return fmt.Errorf("open %s %s %.2f lots: %w", intent.Direction.Side(), intent.Symbol, intent.LotSize, types.ErrOrderRejected)
	}

	metrics.TradesTotal.WithLabelValues(intent.Symbol, intent.Direction.Side()).Inc()
	logger.Trade(ctx, intent.Symbol, intent.Direction.Side(), intent.LotSize, intent.EntryPrice, intent.StopLoss, intent.ID,
		"order_block", intent.OrderBlock.String(),
		"equity", intent.Equity,
		"magic", intent.Magic,
	)

	rec := types.TradeRecord{
		Time:       intent.CreatedAt,
		Symbol:     intent.Symbol,
		Side:       intent.Direction.Side(),
		OrderBlock: intent.OrderBlock.String(),
		LotSize:    intent.LotSize,
		StopLoss:   intent.StopLoss,
		Equity:     intent.Equity,
	}
	for _, r := range oe.recorders {
		// The position is already open; a failed write must not undo it.
		if err := r.Record(ctx, rec); err != nil {
			logger.ErrorWithErr(ctx, "Failed to record trade", err, "symbol", intent.Symbol, "intent_id", intent.ID)
		}
	}
	return nil
}
