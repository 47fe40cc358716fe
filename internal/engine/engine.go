package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/logger"
	"smartob-trader/internal/metrics"
	"smartob-trader/internal/risk"
	"smartob-trader/internal/store"
	"smartob-trader/internal/strategy"
	"smartob-trader/internal/types"
)

// Deps are the collaborators the engine drives. Now defaults to time.Now.
type Deps struct {
	Data       interfaces.MarketData
	Indicators interfaces.Indicators
	Account    interfaces.Account
	Executor   interfaces.Executor
	Recorders  []interfaces.TradeRecorder
	Calendar   interfaces.Calendar
	History    interfaces.TradeHistory
	Now        func() time.Time
}

type engine struct {
	cfg *store.Config

	data     interfaces.MarketData
	inds     interfaces.Indicators
	account  interfaces.Account
	calendar interfaces.Calendar
	now      func() time.Time

	trend  strategy.TrendEvaluator
	entry  strategy.EntryFilter
	stops  *stopManager
	orders *orderExecutor

	obParams strategy.OrderBlockParams
	cooldown time.Duration
	entryTF  types.Timeframe
	trendTF1 types.Timeframe
	trendTF2 types.Timeframe

	session *sessionState
}

func newEngine(cfg *store.Config, d Deps) (*engine, error) {
	if d.Data == nil || d.Indicators == nil || d.Account == nil || d.Executor == nil || d.Calendar == nil {
		return nil, errors.New("engine: market data, indicators, account, executor and calendar are required")
	}
	if len(cfg.Symbols) == 0 {
		return nil, errors.New("engine: no symbols configured")
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	tf1, tf2 := cfg.TrendTimeframes()
	entryTF := cfg.EntryTimeframe()

	e := &engine{
		cfg:      cfg,
		data:     d.Data,
		inds:     d.Indicators,
		account:  d.Account,
		calendar: d.Calendar,
		now:      now,
		trend: strategy.TrendEvaluator{
			Indicators: d.Indicators,
			FastPeriod: cfg.Indicators.EMAFast,
			SlowPeriod: cfg.Indicators.EMASlow,
		},
		entry: strategy.EntryFilter{
			Data:              d.Data,
			Indicators:        d.Indicators,
			EntryTF:           entryTF,
			StructureTF:       tf1,
			OscPeriod:         cfg.Indicators.RSIPeriod,
			Oversold:          cfg.Indicators.RSIOversold,
			Overbought:        cfg.Indicators.RSIOverbought,
			StructureLookback: cfg.StructureLookback,
		},
		stops:  newStopManager(cfg.Indicators.ATRMult),
		orders: newOrderExecutor(d.Executor, d.Recorders),
		obParams: strategy.OrderBlockParams{
			VolumeMultiplier: cfg.OrderBlock.VolumeMult,
			FibLevel:         cfg.OrderBlock.FibLevels[0],
		},
		cooldown: time.Duration(cfg.CooldownSeconds) * time.Second,
		entryTF:  entryTF,
		trendTF1: tf1,
		trendTF2: tf2,
		session:  newSessionState(d.Calendar.DayKey(now())),
	}
	return e, nil
}

// restore resumes today's counters from the journal.
func (e *engine) restore(ctx context.Context, h interfaces.TradeHistory) error {
	_, _, day := e.session.snapshot()
	n, err := h.CountOnDay(ctx, day)
	if err != nil {
		return fmt.Errorf("count trades on %s: %w", day, err)
	}
	last, err := h.LastTradeTime(ctx)
	if err != nil {
		return fmt.Errorf("last trade time: %w", err)
	}
	e.session.restore(n, last)
	metrics.TradesToday.Set(float64(n))
	logger.Info(ctx, "Session restored from journal", "day", day, "trades_today", n, "last_trade_at", last)
	return nil
}

// Step runs one decision cycle across all symbols. The first symbol whose
// entry bars can be fetched triggers the cycle; symbols before it are
// reported as failed. It returns no results when the trigger's bar has not
// advanced or the session gates are closed. Errors for one symbol are
// reported in its result and never stop the others.
func (e *engine) Step(ctx context.Context) ([]*types.StepResult, error) {
	now := e.now()
	if e.cfg.Calendar.SkipHolidays && !e.calendar.IsTradingDay(now) {
		logger.Debug(ctx, "Exchange closed today, skipping cycle", "day", e.calendar.DayKey(now))
		return nil, nil
	}

	var results []*types.StepResult
	trigger := -1
	for i, symbol := range e.cfg.Symbols {
		fresh, err := e.newBar(ctx, symbol)
		if err != nil {
			results = append(results, e.failed(ctx, &types.StepResult{Symbol: symbol, Stage: types.StageIdle, Time: now.Unix()}, err))
			continue
		}
		if !fresh {
			return results, nil
		}
		trigger = i
		break
	}
	if trigger < 0 {
		return results, nil
	}

	if reason := e.session.gate(now, e.cooldown, e.cfg.MaxTradesPerDay); reason != "" {
		logger.Debug(ctx, "Session gate closed", "reason", reason)
		return results, nil
	}
	metrics.CyclesTotal.Inc()

	equity, err := e.account.Equity(ctx)
	if err != nil {
		return nil, fmt.Errorf("read equity: %w: %w", types.ErrExternalService, err)
	}

	for i := trigger; i < len(e.cfg.Symbols); i++ {
		symbol := e.cfg.Symbols[i]
		if i > trigger {
			fresh, err := e.newBar(ctx, symbol)
			if err != nil {
				results = append(results, e.failed(ctx, &types.StepResult{Symbol: symbol, Stage: types.StageIdle, Time: now.Unix()}, err))
				continue
			}
			if !fresh {
				continue
			}
		}
		res, err := e.evaluate(ctx, symbol, equity, now)
		if err != nil {
			res = e.failed(ctx, res, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// newBar advances symbol's entry-timeframe watermark.
func (e *engine) newBar(ctx context.Context, symbol string) (bool, error) {
	w, err := e.data.Bars(ctx, symbol, e.entryTF, 1)
	if err != nil {
		return false, fmt.Errorf("latest %s bar for %s: %w", e.entryTF, symbol, err)
	}
	if len(w) == 0 {
		return false, fmt.Errorf("latest %s bar for %s: %w", e.entryTF, symbol, types.ErrInsufficientData)
	}
	return e.session.advanceBar(symbol, w[0].Time), nil
}

func (e *engine) failed(ctx context.Context, res *types.StepResult, err error) *types.StepResult {
	kind := types.ErrorKind(err)
	metrics.ErrorsTotal.WithLabelValues(res.Symbol, kind).Inc()
	if errors.Is(err, types.ErrOrderRejected) {
		logger.Warn(ctx, "Order rejected", "symbol", res.Symbol, "error", err.Error())
	} else {
		logger.ErrorWithErr(ctx, "Symbol evaluation failed", err, "symbol", res.Symbol, "kind", kind)
	}
	res.Reason = "ERROR: " + err.Error()
	return res
}

// evaluate walks one symbol through order block, trend, entry filter, sizing
// and submission. The result is never nil.
func (e *engine) evaluate(ctx context.Context, symbol string, equity float64, now time.Time) (*types.StepResult, error) {
	res := &types.StepResult{
		Symbol:     symbol,
		Stage:      types.StageEvaluating,
		OrderBlock: types.OrderBlockNone.String(),
		Trend:      types.TrendMixed.String(),
		Time:       now.Unix(),
	}

	info, err := e.data.SymbolInfo(ctx, symbol)
	if err != nil {
		res.Stage = types.StageIdle
		return res, fmt.Errorf("symbol info %s: %w", symbol, err)
	}

	window, err := e.data.Bars(ctx, symbol, e.trendTF1, e.cfg.OrderBlock.Lookback)
	if err != nil {
		res.Stage = types.StageIdle
		return res, fmt.Errorf("order block bars %s %s: %w", symbol, e.trendTF1, err)
	}
	params := e.obParams
	params.Proximity = strategy.Proximity(info, e.cfg.OrderBlock.ProximityPoints)
	ob, err := strategy.DetectOrderBlock(window, params)
	if err != nil {
		res.Stage = types.StageIdle
		return res, fmt.Errorf("%s: %w", symbol, err)
	}
	res.OrderBlock = ob.String()
	if ob == types.OrderBlockNone {
		res.Stage = types.StageIdle
		res.Reason = "NO_ORDER_BLOCK"
		return res, nil
	}
	metrics.SignalsTotal.WithLabelValues(symbol, ob.String()).Inc()

	trend, err := e.trend.Overall(ctx, symbol, e.trendTF1, e.trendTF2)
	if err != nil {
		res.Stage = types.StageIdle
		return res, err
	}
	res.Trend = trend.String()
	dir := tradeDirection(trend, ob)
	if dir == types.DirectionNone {
		logger.Signal(ctx, symbol, ob.String(), trend.String(), false)
		res.Stage = types.StageIdle
		res.Reason = "TREND_MISMATCH"
		return res, nil
	}

	decision, err := e.entry.Check(ctx, symbol, dir == types.DirectionLong)
	if err != nil {
		res.Stage = types.StageIdle
		return res, err
	}
	res.Entry = &decision
	qualified := strategy.Qualified(decision)
	logger.Signal(ctx, symbol, ob.String(), trend.String(), qualified,
		"oscillator", decision.Oscillator,
		"momentum", decision.Momentum,
		"gap", decision.Gap,
		"shift", decision.Shift,
	)
	if !qualified {
		res.Stage = types.StageIdle
		res.Reason = "ENTRY_FILTER"
		return res, nil
	}

	if e.session.capReached(e.cfg.MaxTradesPerDay) {
		logger.Risk(ctx, symbol, "DAILY_CAP", "max_trades_per_day", e.cfg.MaxTradesPerDay)
		res.Stage = types.StageIdle
		res.Reason = "DAILY_CAP"
		return res, nil
	}

	intent, err := e.buildIntent(ctx, symbol, info, dir, ob, equity, now)
	if err != nil {
		res.Stage = types.StageIdle
		return res, err
	}
	res.Stage = types.StageSubmitting
	res.Intent = &intent

	if err := e.orders.submit(ctx, intent); err != nil {
		return res, err
	}
	n := e.session.recordTrade(now)
	metrics.TradesToday.Set(float64(n))
	res.Reason = "OPENED"
	return res, nil
}

// buildIntent prices, protects and sizes the trade.
func (e *engine) buildIntent(ctx context.Context, symbol string, info types.SymbolInfo, dir types.Direction,
	ob types.OrderBlock, equity float64, now time.Time) (types.TradeIntent, error) {
	bid, ask, err := e.data.Quote(ctx, symbol)
	if err != nil {
		return types.TradeIntent{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	entry := ask
	if dir == types.DirectionShort {
		entry = bid
	}

	atr, err := e.inds.ATR(ctx, symbol, e.entryTF, e.cfg.Indicators.ATRPeriod)
	if err != nil {
		return types.TradeIntent{}, fmt.Errorf("ATR(%d) %s %s: %w", e.cfg.Indicators.ATRPeriod, symbol, e.entryTF, err)
	}
	stop := e.stops.calculateStopPrice(dir, entry, atr, info.MinIncrement)

	riskPct := risk.RiskPercent(equity, e.cfg.DynamicRiskEnabled())
	lots, err := risk.LotSize(info, riskPct, entry, stop, equity)
	if err != nil {
		return types.TradeIntent{}, fmt.Errorf("size %s: %w", symbol, err)
	}
	logger.Debug(ctx, "Position sized",
		"symbol", symbol,
		"entry", entry,
		"stop_loss", stop,
		"atr", atr,
		"risk_percent", riskPct,
		"lots", lots,
	)

	return types.TradeIntent{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Direction:  dir,
		OrderBlock: ob,
		EntryPrice: entry,
		StopLoss:   stop,
		LotSize:    lots,
		Equity:     equity,
		Magic:      e.cfg.MagicNumber,
		CreatedAt:  now,
	}, nil
}

// OnTimer zeroes the daily trade counter when the trading day changes.
func (e *engine) OnTimer(ctx context.Context, now time.Time) {
	day := e.calendar.DayKey(now)
	if e.session.resetIfNewDay(day) {
		metrics.TradesToday.Set(0)
		logger.Info(ctx, "New trading day, daily counter reset", "day", day)
	}
}
