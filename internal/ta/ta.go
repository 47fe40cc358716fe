package ta

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// The functions below take oldest-first series and return the value for the
// newest element, or NaN when the series is too short.

func EMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	return last(talib.Ema(closes, n))
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	return last(talib.Rsi(closes, period))
}

func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	return last(talib.Atr(highs, lows, closes, period))
}

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return xs[len(xs)-1]
}
