package zerodha

import (
	"context"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"
	kiteticker "github.com/zerodha/gokiteconnect/v4/ticker"

	"smartob-trader/internal/logger"
)

// setupEventHandlers configures all WebSocket event callbacks
func (z *Zerodha) setupEventHandlers() {
	z.ticker.OnConnect(z.onConnect)
	z.ticker.OnError(z.onError)
	z.ticker.OnClose(z.onClose)
	z.ticker.OnReconnect(z.onReconnect)
	z.ticker.OnNoReconnect(z.onNoReconnect)
	z.ticker.OnTick(z.onTick)
	z.ticker.OnOrderUpdate(z.onOrderUpdate)
}

// onConnect (re)subscribes every mapped instrument in full mode so ticks
// carry market depth.
func (z *Zerodha) onConnect() {
	ctx := context.Background()
	tokens := z.mapper.getAllTokens()
	if err := z.ticker.Subscribe(tokens); err != nil {
		logger.ErrorWithErr(ctx, "Failed to subscribe instruments", err, "count", len(tokens))
		return
	}
	if err := z.ticker.SetMode(kiteticker.ModeFull, tokens); err != nil {
		logger.ErrorWithErr(ctx, "Failed to set ticker mode", err)
		return
	}
	logger.Info(ctx, "WebSocket connected", "instruments", len(tokens))
}

func (z *Zerodha) onError(err error) {
	logger.ErrorWithErr(context.Background(), "WebSocket error", err)
}

func (z *Zerodha) onClose(code int, reason string) {
	logger.Warn(context.Background(), "WebSocket closed", "code", code, "reason", reason)
}

func (z *Zerodha) onReconnect(attempt int, delay time.Duration) {
	logger.Info(context.Background(), "WebSocket reconnecting", "attempt", attempt, "delay", delay)
}

func (z *Zerodha) onNoReconnect(attempt int) {
	logger.Warn(context.Background(), "WebSocket reconnection failed, quotes fall back to REST", "attempt", attempt)
}

func (z *Zerodha) onTick(tick models.Tick) {
	symbol := z.mapper.getSymbol(tick.InstrumentToken)
	if symbol == "" {
		return
	}
	z.quotes.put(symbol, tickQuote(tick, time.Now()))
}

func (z *Zerodha) onOrderUpdate(order kiteconnect.Order) {
	logger.Debug(context.Background(), "Order update received",
		"order_id", order.OrderID,
		"status", order.Status,
		"symbol", order.TradingSymbol,
	)
}

// tickQuote takes the best bid and ask from the tick's depth, falling back
// to the last price when a side is empty.
func tickQuote(tick models.Tick, at time.Time) quote {
	q := quote{Bid: tick.LastPrice, Ask: tick.LastPrice, At: at}
	if p := tick.Depth.Buy[0].Price; p > 0 {
		q.Bid = p
	}
	if p := tick.Depth.Sell[0].Price; p > 0 {
		q.Ask = p
	}
	return q
}
