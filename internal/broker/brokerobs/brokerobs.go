package brokerobs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/logger"
	"smartob-trader/internal/trace"
	"smartob-trader/internal/types"
)

func symbolAttr(symbol string) oteltrace.SpanStartOption {
	return oteltrace.WithAttributes(attribute.String("symbol", symbol))
}

// observableBroker wraps a Broker with logging and tracing
type observableBroker struct {
	broker interfaces.Broker
}

var _ interfaces.Broker = (*observableBroker)(nil)

func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

func (ob *observableBroker) Bars(ctx context.Context, symbol string, tf types.Timeframe, count int) (types.BarWindow, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Bars", symbolAttr(symbol),
		oteltrace.WithAttributes(attribute.String("timeframe", string(tf)), attribute.Int("count", count)))
	defer span.End()

	w, err := ob.broker.Bars(ctx, symbol, tf, count)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch bars", err, "symbol", symbol, "timeframe", tf, "count", count)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Bars fetched", "symbol", symbol, "timeframe", tf, "count", len(w))
	return w, nil
}

func (ob *observableBroker) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	ctx, span := trace.StartSpan(ctx, "broker.SymbolInfo", symbolAttr(symbol))
	defer span.End()

	info, err := ob.broker.SymbolInfo(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch symbol info", err, "symbol", symbol)
		return info, err
	}
	return info, nil
}

func (ob *observableBroker) Quote(ctx context.Context, symbol string) (float64, float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Quote", symbolAttr(symbol))
	defer span.End()

	bid, ask, err := ob.broker.Quote(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch quote", err, "symbol", symbol)
		return 0, 0, err
	}

	logger.DebugSkip(ctx, 1, "Quote fetched", "symbol", symbol, "bid", bid, "ask", ask)
	return bid, ask, nil
}

func (ob *observableBroker) Equity(ctx context.Context) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Equity")
	defer span.End()

	eq, err := ob.broker.Equity(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch equity", err)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Equity fetched", "equity", eq)
	return eq, nil
}

func (ob *observableBroker) OpenPosition(ctx context.Context, intent types.TradeIntent) (bool, error) {
	ctx, span := trace.StartSpan(ctx, "broker.OpenPosition", symbolAttr(intent.Symbol),
		oteltrace.WithAttributes(
			attribute.String("intent_id", intent.ID),
			attribute.String("side", intent.Direction.Side()),
			attribute.Float64("lots", intent.LotSize),
		))
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", intent.Symbol,
		"side", intent.Direction.Side(),
		"lots", intent.LotSize,
		"entry", intent.EntryPrice,
		"stop_loss", intent.StopLoss,
		"intent_id", intent.ID,
	)

	accepted, err := ob.broker.OpenPosition(ctx, intent)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", intent.Symbol,
			"intent_id", intent.ID,
		)
		return false, err
	}
	span.SetAttributes(attribute.Bool("accepted", accepted))
	if !accepted {
		logger.WarnSkip(ctx, 1, "Order declined", "symbol", intent.Symbol, "intent_id", intent.ID)
	}
	return accepted, nil
}

func (ob *observableBroker) Start(ctx context.Context, symbols []string) error {
	ctx, span := trace.StartSpan(ctx, "broker.Start",
		oteltrace.WithAttributes(attribute.StringSlice("symbols", symbols)))
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting broker", "symbols", symbols)

	if err := ob.broker.Start(ctx, symbols); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to start broker", err)
		return err
	}

	logger.InfoSkip(ctx, 1, "Broker started successfully")
	return nil
}

func (ob *observableBroker) Stop(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "broker.Stop")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Stopping broker")
	ob.broker.Stop(ctx)
}
