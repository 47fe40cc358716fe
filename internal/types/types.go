package types

import (
	"fmt"
	"strings"
	"time"
)

// Bar is one OHLCV candle. Bars are values and are never mutated after the
// data source produces them.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// BarWindow holds the most recent bars of one symbol/timeframe, newest first:
// index 0 is the latest bar.
type BarWindow []Bar

// Validate checks that bar times strictly decrease with the index.
func (w BarWindow) Validate() error {
	for i := 1; i < len(w); i++ {
		if !w[i].Time.Before(w[i-1].Time) {
			return fmt.Errorf("bar %d at %s is not older than bar %d at %s",
				i, w[i].Time.Format(time.RFC3339), i-1, w[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Highest returns the highest high of the window.
func (w BarWindow) Highest() float64 {
	hi := w[0].High
	for _, b := range w[1:] {
		if b.High > hi {
			hi = b.High
		}
	}
	return hi
}

// Lowest returns the lowest low of the window.
func (w BarWindow) Lowest() float64 {
	lo := w[0].Low
	for _, b := range w[1:] {
		if b.Low < lo {
			lo = b.Low
		}
	}
	return lo
}

// Chronological returns a copy of the window ordered oldest first.
func (w BarWindow) Chronological() []Bar {
	out := make([]Bar, len(w))
	for i, b := range w {
		out[len(w)-1-i] = b
	}
	return out
}

// Timeframe is a bar period.
type Timeframe string

const (
	M1  Timeframe = "M1"
	M5  Timeframe = "M5"
	M15 Timeframe = "M15"
	M30 Timeframe = "M30"
	H1  Timeframe = "H1"
	H4  Timeframe = "H4"
	D1  Timeframe = "D1"
)

var timeframeDurations = map[Timeframe]time.Duration{
	M1:  time.Minute,
	M5:  5 * time.Minute,
	M15: 15 * time.Minute,
	M30: 30 * time.Minute,
	H1:  time.Hour,
	H4:  4 * time.Hour,
	D1:  24 * time.Hour,
}

// ParseTimeframe accepts the names above in any case.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := timeframeDurations[tf]; !ok {
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
	return tf, nil
}

// Duration returns the bar period, or zero for an unknown timeframe.
func (tf Timeframe) Duration() time.Duration {
	return timeframeDurations[tf]
}

// OrderBlock classifies the latest bar of a window.
type OrderBlock int

const (
	OrderBlockNone OrderBlock = iota
	OrderBlockBullish
	OrderBlockBearish
)

func (ob OrderBlock) String() string {
	switch ob {
	case OrderBlockBullish:
		return "BullishOB"
	case OrderBlockBearish:
		return "BearishOB"
	default:
		return "None"
	}
}

// Direction is the side of a trade.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionLong
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "Long"
	case DirectionShort:
		return "Short"
	default:
		return "None"
	}
}

// Side returns the order side written to logs and sent to brokers.
func (d Direction) Side() string {
	switch d {
	case DirectionLong:
		return "BUY"
	case DirectionShort:
		return "SELL"
	default:
		return ""
	}
}

// Trend is the combined reading of both trend timeframes.
type Trend int

const (
	TrendMixed Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "Up"
	case TrendDown:
		return "Down"
	default:
		return "Mixed"
	}
}

// EntryDecision is the outcome of the entry filter for one requested side.
type EntryDecision struct {
	Direction  Direction `json:"direction"`
	Oscillator float64   `json:"oscillator"`
	Momentum   bool      `json:"momentum"`
	Gap        bool      `json:"gap"`
	Shift      bool      `json:"shift"`
}

// RiskProfile is the share of equity put at risk on one trade, in percent.
type RiskProfile struct {
	RiskPercent float64 `json:"risk_percent"`
}

// SymbolInfo describes the trading properties of an instrument.
type SymbolInfo struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	MinIncrement float64 `json:"min_increment" yaml:"min_increment"`
	TickValue    float64 `json:"tick_value" yaml:"tick_value"`
	MinVolume    float64 `json:"min_volume" yaml:"min_volume"`
	MaxVolume    float64 `json:"max_volume" yaml:"max_volume"`
	VolumeStep   float64 `json:"volume_step" yaml:"volume_step"`
}

// IndicatorKind names the indicators the core consumes.
type IndicatorKind string

const (
	IndicatorEMA IndicatorKind = "EMA"
	IndicatorRSI IndicatorKind = "RSI"
	IndicatorATR IndicatorKind = "ATR"
)

// AppliedPrice selects which bar field an indicator is computed on.
type AppliedPrice int

const (
	PriceClose AppliedPrice = iota
	PriceOpen
	PriceHigh
	PriceLow
)

// Of extracts the applied price from a bar.
func (p AppliedPrice) Of(b Bar) float64 {
	switch p {
	case PriceOpen:
		return b.Open
	case PriceHigh:
		return b.High
	case PriceLow:
		return b.Low
	default:
		return b.Close
	}
}

// TradeIntent is handed to the order executor. It is built once per
// qualifying signal and never modified afterwards.
type TradeIntent struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Direction  Direction  `json:"direction"`
	OrderBlock OrderBlock `json:"order_block"`
	EntryPrice float64    `json:"entry_price"`
	StopLoss   float64    `json:"stop_loss"`
	LotSize    float64    `json:"lot_size"`
	Equity     float64    `json:"equity"`
	Magic      int        `json:"magic"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Stage is the orchestrator state a symbol evaluation ended in.
type Stage string

const (
	StageIdle       Stage = "IDLE"
	StageEvaluating Stage = "EVALUATING"
	StageSubmitting Stage = "SUBMITTING"
)

// StepResult reports what one decision cycle did for one symbol.
type StepResult struct {
	Symbol     string         `json:"symbol"`
	Stage      Stage          `json:"stage"`
	OrderBlock string         `json:"order_block"`
	Trend      string         `json:"trend"`
	Entry      *EntryDecision `json:"entry,omitempty"`
	Intent     *TradeIntent   `json:"intent,omitempty"`
	Time       int64          `json:"time"`
	Reason     string         `json:"reason"`
}

// TradeRecord is one executed trade as written to the trade log and journal.
type TradeRecord struct {
	Time       time.Time `json:"time"`
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	OrderBlock string    `json:"order_block"`
	LotSize    float64   `json:"lot_size"`
	StopLoss   float64   `json:"stop_loss"`
	Equity     float64   `json:"equity"`
}
