package risk

import "testing"

func TestRoundToStep(t *testing.T) {
	tests := []struct {
		x, step float64
		want    string
	}{
		{0.125, 0.01, "0.13"},
		{0.124, 0.01, "0.12"},
		{7.5, 1, "8"},
		{2.49, 0.5, "2.5"},
	}
	for _, tt := range tests {
		if got := roundToStep(tt.x, tt.step).String(); got != tt.want {
			t.Errorf("roundToStep(%v, %v) = %s, want %s", tt.x, tt.step, got, tt.want)
		}
	}
}
