package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smartob-trader/internal/types"
)

type fakeMarket struct {
	mu    sync.Mutex
	bars  map[string]map[types.Timeframe]types.BarWindow
	infos map[string]types.SymbolInfo
	bid   float64
	ask   float64
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		bars:  map[string]map[types.Timeframe]types.BarWindow{},
		infos: map[string]types.SymbolInfo{},
	}
}

func (f *fakeMarket) set(symbol string, tf types.Timeframe, w types.BarWindow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bars[symbol] == nil {
		f.bars[symbol] = map[types.Timeframe]types.BarWindow{}
	}
	f.bars[symbol][tf] = w
}

// advance shifts every bar of symbol/tf forward by d, simulating a new bar.
func (f *fakeMarket) advance(symbol string, tf types.Timeframe, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.bars[symbol][tf]
	next := make(types.BarWindow, len(w))
	for i, b := range w {
		b.Time = b.Time.Add(d)
		next[i] = b
	}
	f.bars[symbol][tf] = next
}

func (f *fakeMarket) Bars(_ context.Context, symbol string, tf types.Timeframe, count int) (types.BarWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.bars[symbol][tf]
	if len(w) == 0 {
		return nil, fmt.Errorf("no %s bars for %s: %w", tf, symbol, types.ErrInsufficientData)
	}
	if count < len(w) {
		w = w[:count]
	}
	return w, nil
}

func (f *fakeMarket) SymbolInfo(_ context.Context, symbol string) (types.SymbolInfo, error) {
	info, ok := f.infos[symbol]
	if !ok {
		return types.SymbolInfo{}, fmt.Errorf("unknown symbol %s: %w", symbol, types.ErrExternalService)
	}
	return info, nil
}

func (f *fakeMarket) Quote(context.Context, string) (float64, float64, error) {
	return f.bid, f.ask, nil
}

type indKey struct {
	kind   types.IndicatorKind
	symbol string
	tf     types.Timeframe
	period int
}

type fakeIndicators struct {
	values map[indKey]float64
}

func (f *fakeIndicators) get(k indKey) (float64, error) {
	v, ok := f.values[k]
	if !ok {
		return 0, fmt.Errorf("no %s(%d) for %s %s: %w", k.kind, k.period, k.symbol, k.tf, types.ErrInsufficientData)
	}
	return v, nil
}

func (f *fakeIndicators) EMA(_ context.Context, symbol string, tf types.Timeframe, period int, _ types.AppliedPrice) (float64, error) {
	return f.get(indKey{types.IndicatorEMA, symbol, tf, period})
}

func (f *fakeIndicators) RSI(_ context.Context, symbol string, tf types.Timeframe, period int, _ types.AppliedPrice) (float64, error) {
	return f.get(indKey{types.IndicatorRSI, symbol, tf, period})
}

func (f *fakeIndicators) ATR(_ context.Context, symbol string, tf types.Timeframe, period int) (float64, error) {
	return f.get(indKey{types.IndicatorATR, symbol, tf, period})
}

type fakeAccount struct {
	equity float64
	err    error
}

func (f *fakeAccount) Equity(context.Context) (float64, error) { return f.equity, f.err }

type fakeExecutor struct {
	mu      sync.Mutex
	reject  bool
	err     error
	intents []types.TradeIntent
}

func (f *fakeExecutor) OpenPosition(_ context.Context, intent types.TradeIntent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.reject {
		return false, nil
	}
	f.intents = append(f.intents, intent)
	return true, nil
}

func (f *fakeExecutor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.intents)
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []types.TradeRecord
}

func (f *fakeRecorder) Record(_ context.Context, rec types.TradeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRecorder) Close() error { return nil }

type fakeHistory struct {
	count int
	last  time.Time
}

func (f fakeHistory) CountOnDay(context.Context, string) (int, error) { return f.count, nil }
func (f fakeHistory) LastTradeTime(context.Context) (time.Time, error) { return f.last, nil }

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
