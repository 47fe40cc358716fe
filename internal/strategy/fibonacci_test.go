package strategy

import (
	"errors"
	"math"
	"testing"
	"time"

	"smartob-trader/internal/types"
)

func TestRetracementLevel(t *testing.T) {
	w := types.BarWindow{
		{High: 1.1050, Low: 1.1000},
		{High: 1.1100, Low: 1.0950},
		{High: 1.1080, Low: 1.0900},
	}
	got, err := RetracementLevel(w, 61.8)
	if err != nil {
		t.Fatalf("RetracementLevel: %v", err)
	}
	want := 1.1100 - (1.1100-1.0900)*0.618
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("RetracementLevel = %v, want %v", got, want)
	}

	// Order of bars must not matter.
	rev := types.BarWindow{w[2], w[0], w[1]}
	got2, _ := RetracementLevel(rev, 61.8)
	if got2 != got {
		t.Errorf("permuted window gave %v, want %v", got2, got)
	}
}

func TestRetracementLevelBounds(t *testing.T) {
	w := types.BarWindow{{High: 20, Low: 10}, {High: 15, Low: 12}}
	if got, _ := RetracementLevel(w, 0); got != 20 {
		t.Errorf("0%% level = %v, want high", got)
	}
	if got, _ := RetracementLevel(w, 100); got != 10 {
		t.Errorf("100%% level = %v, want low", got)
	}
	flat := types.BarWindow{{Time: time.Now(), High: 5, Low: 5}}
	if got, _ := RetracementLevel(flat, 61.8); got != 5 {
		t.Errorf("flat window level = %v, want 5", got)
	}
}

func TestRetracementLevelEmpty(t *testing.T) {
	if _, err := RetracementLevel(nil, 50); !errors.Is(err, types.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}
