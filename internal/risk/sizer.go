// Package risk maps account equity to a risk percentage and converts that
// risk into a position size.
package risk

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"smartob-trader/internal/types"
)

const (
	// StaticRiskPercent applies when dynamic risk is off.
	StaticRiskPercent = 2.0

	// DefaultVolumeStep is the lot precision used when the instrument has none.
	DefaultVolumeStep = 0.01
)

// riskStep is one rung of the equity ladder: equity <= MaxEquity risks Percent.
type riskStep struct {
	MaxEquity float64
	Percent   float64
}

// Small accounts risk more so they can recover; large accounts risk less.
var dynamicLadder = []riskStep{
	{MaxEquity: 10, Percent: 20.0},
	{MaxEquity: 200, Percent: 2.0},
	{MaxEquity: math.Inf(1), Percent: 1.0},
}

// RiskPercent returns the percentage of equity to risk on the next trade.
func RiskPercent(equity float64, dynamic bool) float64 {
	if !dynamic {
		return StaticRiskPercent
	}
	for _, step := range dynamicLadder {
		if equity <= step.MaxEquity {
			return step.Percent
		}
	}
	return dynamicLadder[len(dynamicLadder)-1].Percent
}

// Profile wraps RiskPercent into a RiskProfile.
func Profile(equity float64, dynamic bool) types.RiskProfile {
	return types.RiskProfile{RiskPercent: RiskPercent(equity, dynamic)}
}

// LotSize sizes a position so that a stop-out loses riskPercent of equity.
//
//	riskAmount = equity * riskPercent/100
//	points     = |entry - stop| / minIncrement
//	lots       = riskAmount / (points * tickValue)
//
// The result is rounded to the instrument's volume step and clamped to its
// maximum volume. A zero stop distance or tick value yields ErrDivisionByZero;
// a size that rounds to nothing or below the minimum yields ErrInvalidSize.
func LotSize(info types.SymbolInfo, riskPercent, entry, stop, equity float64) (float64, error) {
	if info.MinIncrement <= 0 {
		return 0, fmt.Errorf("%s min increment %.8f: %w", info.Symbol, info.MinIncrement, types.ErrDivisionByZero)
	}
	if info.TickValue <= 0 {
		return 0, fmt.Errorf("%s tick value %.8f: %w", info.Symbol, info.TickValue, types.ErrDivisionByZero)
	}
	points := math.Abs(entry-stop) / info.MinIncrement
	if points == 0 || math.IsNaN(points) {
		return 0, fmt.Errorf("%s stop distance is zero: %w", info.Symbol, types.ErrDivisionByZero)
	}

	riskAmount := equity * riskPercent / 100
	raw := riskAmount / (points * info.TickValue)
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("%s raw size %v: %w", info.Symbol, raw, types.ErrInvalidSize)
	}

	step := info.VolumeStep
	if step <= 0 {
		step = DefaultVolumeStep
	}
	lots := roundToStep(raw, step)

	if info.MaxVolume > 0 && lots.GreaterThan(decimal.NewFromFloat(info.MaxVolume)) {
		lots = decimal.NewFromFloat(info.MaxVolume)
	}

	size := lots.InexactFloat64()
	if size <= 0 || size < info.MinVolume {
		return 0, fmt.Errorf("%s size %.4f (raw %.6f, min %.4f): %w", info.Symbol, size, raw, info.MinVolume, types.ErrInvalidSize)
	}
	return size, nil
}

// roundToStep rounds x half away from zero to a multiple of step.
func roundToStep(x, step float64) decimal.Decimal {
	s := decimal.NewFromFloat(step)
	return decimal.NewFromFloat(x).Div(s).Round(0).Mul(s)
}
