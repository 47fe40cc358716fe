package strategy

import (
	"context"
	"fmt"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/types"
)

// gapBars is the number of entry bars the fair-value-gap check reads.
const gapBars = 3

// EntryFilter gates entries on momentum, a fair-value gap and a market
// structure shift. All three must agree with the requested side.
type EntryFilter struct {
	Data       interfaces.MarketData
	Indicators interfaces.Indicators

	EntryTF     types.Timeframe
	StructureTF types.Timeframe

	OscPeriod         int
	Oversold          float64
	Overbought        float64
	StructureLookback int
}

// HasGap checks a three-bar fair-value gap on w = [newest, mid, oldest].
// A long gap has the middle bar's low above both neighbours' highs; a short
// gap has its high below both neighbours' lows.
func HasGap(w types.BarWindow, isLong bool) (bool, error) {
	if len(w) < gapBars {
		return false, fmt.Errorf("gap check needs %d bars, have %d: %w", gapBars, len(w), types.ErrInsufficientData)
	}
	newest, mid, oldest := w[0], w[1], w[2]
	if isLong {
		return mid.Low > newest.High && mid.Low > oldest.High, nil
	}
	return mid.High < newest.Low && mid.High < oldest.Low, nil
}

// HasShift reports whether lastClose breaks the structure window's range:
// above its highest high for longs, below its lowest low for shorts.
func HasShift(structure types.BarWindow, lastClose float64, isLong bool) (bool, error) {
	if len(structure) == 0 {
		return false, fmt.Errorf("structure shift over empty window: %w", types.ErrInsufficientData)
	}
	if isLong {
		return lastClose > structure.Highest(), nil
	}
	return lastClose < structure.Lowest(), nil
}

// MomentumOK applies the oscillator threshold for the side.
func (f EntryFilter) MomentumOK(osc float64, isLong bool) bool {
	if isLong {
		return osc < f.Oversold
	}
	return osc > f.Overbought
}

// Check fetches fresh data and evaluates all three conditions. The returned
// decision carries DirectionNone unless every condition holds.
func (f EntryFilter) Check(ctx context.Context, symbol string, isLong bool) (types.EntryDecision, error) {
	var d types.EntryDecision

	osc, err := f.Indicators.RSI(ctx, symbol, f.EntryTF, f.OscPeriod, types.PriceClose)
	if err != nil {
		return d, fmt.Errorf("oscillator %s %s: %w", symbol, f.EntryTF, err)
	}
	d.Oscillator = osc
	d.Momentum = f.MomentumOK(osc, isLong)

	entryBars, err := f.Data.Bars(ctx, symbol, f.EntryTF, gapBars)
	if err != nil {
		return d, fmt.Errorf("entry bars %s %s: %w", symbol, f.EntryTF, err)
	}
	if d.Gap, err = HasGap(entryBars, isLong); err != nil {
		return d, fmt.Errorf("%s: %w", symbol, err)
	}

	structure, err := f.Data.Bars(ctx, symbol, f.StructureTF, f.StructureLookback)
	if err != nil {
		return d, fmt.Errorf("structure bars %s %s: %w", symbol, f.StructureTF, err)
	}
	if d.Shift, err = HasShift(structure, entryBars[0].Close, isLong); err != nil {
		return d, fmt.Errorf("%s: %w", symbol, err)
	}

	if d.Momentum && d.Gap && d.Shift {
		if isLong {
			d.Direction = types.DirectionLong
		} else {
			d.Direction = types.DirectionShort
		}
	}
	return d, nil
}

// Qualified reports whether the decision allows an entry.
func Qualified(d types.EntryDecision) bool {
	return d.Direction != types.DirectionNone
}
