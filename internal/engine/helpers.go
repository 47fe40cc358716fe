package engine

import (
	"math"

	"smartob-trader/internal/types"
)

func roundToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	return math.Round(price/tick) * tick
}

// tradeDirection pairs the trend with the order block. A long needs an
// uptrend on both timeframes and a bullish block; a short needs a downtrend on
// both and a bearish block.
func tradeDirection(trend types.Trend, ob types.OrderBlock) types.Direction {
	switch {
	case trend == types.TrendUp && ob == types.OrderBlockBullish:
		return types.DirectionLong
	case trend == types.TrendDown && ob == types.OrderBlockBearish:
		return types.DirectionShort
	default:
		return types.DirectionNone
	}
}
