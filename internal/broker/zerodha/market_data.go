package zerodha

import (
	"context"
	"fmt"
	"sort"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"smartob-trader/internal/types"
)

var kiteIntervals = map[types.Timeframe]string{
	types.M1:  "minute",
	types.M5:  "5minute",
	types.M15: "15minute",
	types.M30: "30minute",
	types.H1:  "60minute",
	types.D1:  "day",
}

// historySpan is how far back a request for count bars of tf must reach
// across NSE sessions.
func historySpan(tf types.Timeframe, count int) time.Duration {
	const sessionHours = 6.25
	d := tf.Duration()
	if d <= 0 || d >= 24*time.Hour {
		return time.Duration(count*2+7) * 24 * time.Hour
	}
	perDay := int(sessionHours * float64(time.Hour) / float64(d))
	if perDay < 1 {
		perDay = 1
	}
	days := count/perDay + 1
	// weekends and holidays
	return time.Duration(days*2+5) * 24 * time.Hour
}

// Bars returns up to count bars newest first. H4 is not offered by Kite.
func (z *Zerodha) Bars(ctx context.Context, symbol string, tf types.Timeframe, count int) (types.BarWindow, error) {
	if z.kc == nil {
		return nil, errNotStarted
	}
	interval, ok := kiteIntervals[tf]
	if !ok {
		return nil, fmt.Errorf("timeframe %s not supported by Kite", tf)
	}
	inst, ok := z.mapper.get(symbol)
	if !ok {
		return nil, fmt.Errorf("unknown symbol %s: %w", symbol, types.ErrExternalService)
	}
	to := time.Now()
	hist, err := z.kc.GetHistoricalData(int(inst.Token), interval, to.Add(-historySpan(tf, count)), to, false, false)
	if err != nil {
		return nil, venueErr("historical "+symbol, err)
	}
	return toWindow(hist, count), nil
}

// toWindow converts Kite's oldest-first history into the newest count bars,
// newest first.
func toWindow(hist []kiteconnect.HistoricalData, count int) types.BarWindow {
	bars := make([]types.Bar, 0, len(hist))
	for _, h := range hist {
		bars = append(bars, types.Bar{
			Time:   h.Date.Time,
			Open:   h.Open,
			High:   h.High,
			Low:    h.Low,
			Close:  h.Close,
			Volume: float64(h.Volume),
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.After(bars[j].Time) })
	if len(bars) > count {
		bars = bars[:count]
	}
	return types.BarWindow(bars)
}

// SymbolInfo reports exchange tick size. Equity quantities are whole shares,
// so one lot is one share and a tick moves one share by the tick size.
func (z *Zerodha) SymbolInfo(_ context.Context, symbol string) (types.SymbolInfo, error) {
	inst, ok := z.mapper.get(symbol)
	if !ok {
		return types.SymbolInfo{}, fmt.Errorf("unknown symbol %s: %w", symbol, types.ErrExternalService)
	}
	lot := inst.LotSize
	if lot <= 0 {
		lot = 1
	}
	return types.SymbolInfo{
		Symbol:       symbol,
		MinIncrement: inst.TickSize,
		TickValue:    inst.TickSize,
		MinVolume:    lot,
		MaxVolume:    z.p.MaxVolume,
		VolumeStep:   lot,
	}, nil
}

func (z *Zerodha) Quote(_ context.Context, symbol string) (float64, float64, error) {
	if q, ok := z.quotes.fresh(symbol, time.Now()); ok {
		return q.Bid, q.Ask, nil
	}
	if z.kc == nil {
		return 0, 0, errNotStarted
	}
	key := z.p.Exchange + ":" + symbol
	quotes, err := z.kc.GetQuote(key)
	if err != nil {
		return 0, 0, venueErr("quote "+key, err)
	}
	data, ok := quotes[key]
	if !ok {
		return 0, 0, fmt.Errorf("no quote for %s: %w", key, types.ErrExternalService)
	}
	bid, ask := data.LastPrice, data.LastPrice
	if len(data.Depth.Buy) > 0 && data.Depth.Buy[0].Price > 0 {
		bid = data.Depth.Buy[0].Price
	}
	if len(data.Depth.Sell) > 0 && data.Depth.Sell[0].Price > 0 {
		ask = data.Depth.Sell[0].Price
	}
	return bid, ask, nil
}
