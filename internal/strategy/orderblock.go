package strategy

import (
	"fmt"
	"math"

	"smartob-trader/internal/types"
)

// DefaultProximityScale is the number of price increments within which a bar
// open counts as touching the retracement level.
const DefaultProximityScale = 50

// OrderBlockParams tunes DetectOrderBlock.
type OrderBlockParams struct {
	VolumeMultiplier float64
	FibLevel         float64 // percent
	Proximity        float64 // absolute price distance
}

// Proximity converts a scale in increments into a price distance.
func Proximity(info types.SymbolInfo, scale float64) float64 {
	return info.MinIncrement * scale
}

// DetectOrderBlock classifies w[0]. The bar must expand volume over w[1] by
// the multiplier and open within Proximity of the retracement level; its body
// direction then picks bullish or bearish. A doji is never an order block.
func DetectOrderBlock(w types.BarWindow, p OrderBlockParams) (types.OrderBlock, error) {
	if len(w) < 2 {
		return types.OrderBlockNone, fmt.Errorf("order block needs 2 bars, have %d: %w", len(w), types.ErrInsufficientData)
	}
	fib, err := RetracementLevel(w, p.FibLevel)
	if err != nil {
		return types.OrderBlockNone, err
	}

	cur, prev := w[0], w[1]
	volumeSpike := cur.Volume > prev.Volume*p.VolumeMultiplier
	nearFib := math.Abs(cur.Open-fib) < p.Proximity
	if !volumeSpike || !nearFib {
		return types.OrderBlockNone, nil
	}

	switch {
	case cur.Close > cur.Open:
		return types.OrderBlockBullish, nil
	case cur.Close < cur.Open:
		return types.OrderBlockBearish, nil
	default:
		return types.OrderBlockNone, nil
	}
}
