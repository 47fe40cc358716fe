package engine

import (
	"smartob-trader/internal/types"
)

// stopManager places the protective stop a multiple of ATR away from entry.
type stopManager struct {
	atrMult float64
}

func newStopManager(atrMult float64) *stopManager {
	return &stopManager{atrMult: atrMult}
}

// calculateStopPrice returns entry - atr*mult for longs and entry + atr*mult
// for shorts, rounded to the instrument's price increment.
func (sm *stopManager) calculateStopPrice(dir types.Direction, entry, atr, tick float64) float64 {
	offset := atr * sm.atrMult
	stop := entry - offset
	if dir == types.DirectionShort {
		stop = entry + offset
	}
	return roundToTick(stop, tick)
}
