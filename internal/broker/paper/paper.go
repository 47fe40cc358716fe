// Package paper is an in-process broker for dry runs and tests. It replays
// bars from CSV files, quotes the last close with a fixed spread and fills
// every order that fits the instrument's volume limits.
package paper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/logger"
	"smartob-trader/internal/types"
)

// DefaultInstrument applies to symbols without configured properties.
var DefaultInstrument = types.SymbolInfo{
	MinIncrement: 0.01,
	TickValue:    0.01,
	MinVolume:    0.01,
	MaxVolume:    100,
	VolumeStep:   0.01,
}

type Params struct {
	Equity       float64
	DataDir      string
	SpreadPoints float64
	Instruments  map[string]types.SymbolInfo
	// Now bounds replay: bars later than Now() are invisible. Defaults to time.Now.
	Now func() time.Time
}

type seriesKey struct {
	symbol string
	tf     types.Timeframe
}

type Broker struct {
	p Params

	mu     sync.RWMutex
	series map[seriesKey][]types.Bar // oldest first
	fills  []types.TradeIntent
	reject bool
}

var _ interfaces.Broker = (*Broker)(nil)

func New(p Params) *Broker {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Instruments == nil {
		p.Instruments = map[string]types.SymbolInfo{}
	}
	return &Broker{p: p, series: map[seriesKey][]types.Bar{}}
}

// Start loads every <symbol>_<TF>.csv found in the data directory. Missing
// files are skipped; bars may also be fed with AppendBar.
func (b *Broker) Start(ctx context.Context, symbols []string) error {
	if b.p.DataDir == "" {
		return nil
	}
	loaded := 0
	for _, sym := range symbols {
		for _, tf := range []types.Timeframe{types.M1, types.M5, types.M15, types.M30, types.H1, types.H4, types.D1} {
			path := barFile(b.p.DataDir, sym, tf)
			bars, err := loadBars(path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return err
			}
			b.mu.Lock()
			b.series[seriesKey{sym, tf}] = bars
			b.mu.Unlock()
			loaded++
			logger.Debug(ctx, "Loaded paper bars", "symbol", sym, "timeframe", tf, "count", len(bars))
		}
	}
	logger.Info(ctx, "Paper broker ready", "series", loaded, "data_dir", b.p.DataDir)
	return nil
}

func (b *Broker) Stop(ctx context.Context) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	logger.Info(ctx, "Paper broker stopped", "fills", len(b.fills))
}

// AppendBar adds a bar to a series, keeping it ordered.
func (b *Broker) AppendBar(symbol string, tf types.Timeframe, bar types.Bar) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := seriesKey{symbol, tf}
	s := append(b.series[k], bar)
	if n := len(s); n > 1 && s[n-1].Time.Before(s[n-2].Time) {
		sort.Slice(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
	}
	b.series[k] = s
}

// SetReject makes OpenPosition decline every order.
func (b *Broker) SetReject(reject bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reject = reject
}

// Fills returns the accepted intents in submission order.
func (b *Broker) Fills() []types.TradeIntent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]types.TradeIntent, len(b.fills))
	copy(out, b.fills)
	return out
}

// visible returns the bars that have closed by now, oldest first. A row
// carries the bar's final prices, so the bar still forming is withheld.
func (b *Broker) visible(symbol string, tf types.Timeframe) []types.Bar {
	s := b.series[seriesKey{symbol, tf}]
	now := b.p.Now()
	d := tf.Duration()
	n := sort.Search(len(s), func(i int) bool { return s[i].Time.Add(d).After(now) })
	return s[:n]
}

func (b *Broker) Bars(_ context.Context, symbol string, tf types.Timeframe, count int) (types.BarWindow, error) {
	if count <= 0 {
		return nil, fmt.Errorf("bar count for %s %s must be positive, got %d", symbol, tf, count)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := b.visible(symbol, tf)
	if len(s) == 0 {
		return nil, fmt.Errorf("no %s bars for %s: %w", tf, symbol, types.ErrInsufficientData)
	}
	if count > len(s) {
		count = len(s)
	}
	w := make(types.BarWindow, count)
	for i := 0; i < count; i++ {
		w[i] = s[len(s)-1-i]
	}
	return w, nil
}

func (b *Broker) SymbolInfo(_ context.Context, symbol string) (types.SymbolInfo, error) {
	info, ok := b.p.Instruments[symbol]
	if !ok {
		info = DefaultInstrument
	}
	info.Symbol = symbol
	return info, nil
}

// Quote centres a spread of SpreadPoints increments on the last visible close
// of any loaded timeframe, finest first.
func (b *Broker) Quote(ctx context.Context, symbol string) (float64, float64, error) {
	info, _ := b.SymbolInfo(ctx, symbol)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, tf := range []types.Timeframe{types.M1, types.M5, types.M15, types.M30, types.H1, types.H4, types.D1} {
		s := b.visible(symbol, tf)
		if len(s) == 0 {
			continue
		}
		mid := s[len(s)-1].Close
		half := b.p.SpreadPoints * info.MinIncrement / 2
		return mid - half, mid + half, nil
	}
	return 0, 0, fmt.Errorf("no prices for %s: %w", symbol, types.ErrInsufficientData)
}

func (b *Broker) Equity(context.Context) (float64, error) {
	return b.p.Equity, nil
}

// OpenPosition fills intents whose size respects the instrument's limits.
func (b *Broker) OpenPosition(ctx context.Context, intent types.TradeIntent) (bool, error) {
	info, _ := b.SymbolInfo(ctx, intent.Symbol)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reject || intent.LotSize <= 0 || intent.LotSize < info.MinVolume ||
		(info.MaxVolume > 0 && intent.LotSize > info.MaxVolume) {
		return false, nil
	}
	b.fills = append(b.fills, intent)
	return true, nil
}
