// Package strategy holds the signal logic: retracement levels, order-block
// detection, multi-timeframe trend and the entry filter.
package strategy

import (
	"fmt"

	"smartob-trader/internal/types"
)

// RetracementLevel returns high - (high-low)*levelPercent/100 over the window's
// highest high and lowest low. Bar order does not matter.
func RetracementLevel(w types.BarWindow, levelPercent float64) (float64, error) {
	if len(w) == 0 {
		return 0, fmt.Errorf("retracement over empty window: %w", types.ErrInsufficientData)
	}
	high, low := w.Highest(), w.Lowest()
	return high - (high-low)*levelPercent/100, nil
}
