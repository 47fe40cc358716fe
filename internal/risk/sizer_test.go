package risk

import (
	"errors"
	"math"
	"testing"

	"smartob-trader/internal/types"
)

func TestRiskPercent(t *testing.T) {
	tests := []struct {
		equity  float64
		dynamic bool
		want    float64
	}{
		{5, true, 20.0},
		{10, true, 20.0},
		{10.01, true, 2.0},
		{150, true, 2.0},
		{200, true, 2.0},
		{1000, true, 1.0},
		{5, false, 2.0},
		{1000, false, 2.0},
		{1e9, false, 2.0},
	}
	for _, tt := range tests {
		if got := RiskPercent(tt.equity, tt.dynamic); got != tt.want {
			t.Errorf("RiskPercent(%v, %v) = %v, want %v", tt.equity, tt.dynamic, got, tt.want)
		}
	}
	if p := Profile(150, true); p.RiskPercent != 2.0 {
		t.Errorf("Profile(150).RiskPercent = %v, want 2", p.RiskPercent)
	}
}

var eurusd = types.SymbolInfo{
	Symbol:       "EURUSD",
	MinIncrement: 0.00001,
	TickValue:    1.0,
	MinVolume:    0.01,
	MaxVolume:    50,
	VolumeStep:   0.01,
}

func TestLotSize(t *testing.T) {
	// 1% of 10000 = 100 at risk over 200 points of 1.0 each = 0.5 lots.
	got, err := LotSize(eurusd, 1.0, 1.10000, 1.09800, 10000)
	if err != nil {
		t.Fatalf("LotSize: %v", err)
	}
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("LotSize = %v, want 0.5", got)
	}

	// Direction of the stop does not matter.
	short, _ := LotSize(eurusd, 1.0, 1.09800, 1.10000, 10000)
	if short != got {
		t.Errorf("short LotSize = %v, want %v", short, got)
	}
}

func TestLotSizeRoundsToVolumeStep(t *testing.T) {
	// 100 / 300 points = 0.333.. -> 0.33; 100 / 150 points = 0.666.. -> 0.67
	got, _ := LotSize(eurusd, 1.0, 1.10000, 1.09700, 10000)
	if math.Abs(got-0.33) > 1e-9 {
		t.Errorf("LotSize = %v, want 0.33", got)
	}
	got, _ = LotSize(eurusd, 1.0, 1.10000, 1.09850, 10000)
	if math.Abs(got-0.67) > 1e-9 {
		t.Errorf("LotSize = %v, want 0.67", got)
	}
}

func TestLotSizeClampsToMaxVolume(t *testing.T) {
	got, err := LotSize(eurusd, 20.0, 1.10000, 1.09999, 1e6)
	if err != nil {
		t.Fatalf("LotSize: %v", err)
	}
	if got != eurusd.MaxVolume {
		t.Errorf("LotSize = %v, want clamp to %v", got, eurusd.MaxVolume)
	}
}

func TestLotSizeDivisionByZero(t *testing.T) {
	if _, err := LotSize(eurusd, 1.0, 1.1, 1.1, 10000); !errors.Is(err, types.ErrDivisionByZero) {
		t.Errorf("zero distance err = %v, want ErrDivisionByZero", err)
	}
	noTick := eurusd
	noTick.TickValue = 0
	if _, err := LotSize(noTick, 1.0, 1.1, 1.09, 10000); !errors.Is(err, types.ErrDivisionByZero) {
		t.Errorf("zero tick value err = %v, want ErrDivisionByZero", err)
	}
	noInc := eurusd
	noInc.MinIncrement = 0
	if _, err := LotSize(noInc, 1.0, 1.1, 1.09, 10000); !errors.Is(err, types.ErrDivisionByZero) {
		t.Errorf("zero increment err = %v, want ErrDivisionByZero", err)
	}
}

func TestLotSizeTooSmall(t *testing.T) {
	// 1% of 10 = 0.1 over 2000 points -> 0.00005 lots rounds to zero.
	_, err := LotSize(eurusd, 1.0, 1.10000, 1.08000, 10)
	if !errors.Is(err, types.ErrInvalidSize) {
		t.Errorf("err = %v, want ErrInvalidSize", err)
	}
}

func TestLotSizeNeverNegativeNorAboveMax(t *testing.T) {
	for _, equity := range []float64{50, 500, 5000, 50000, 5e6} {
		for _, dist := range []float64{0.0001, 0.001, 0.01} {
			lots, err := LotSize(eurusd, RiskPercent(equity, true), 1.1, 1.1-dist, equity)
			if err != nil {
				continue
			}
			if lots < 0 || lots > eurusd.MaxVolume {
				t.Errorf("equity %v dist %v: lots %v out of [0, %v]", equity, dist, lots, eurusd.MaxVolume)
			}
		}
	}
}
