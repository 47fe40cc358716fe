package engine

import (
	"math"
	"testing"
	"time"

	"smartob-trader/internal/types"
)

func TestSessionAdvanceBar(t *testing.T) {
	s := newSessionState("2024-03-04")
	t0 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	if !s.advanceBar("EURUSD", t0) {
		t.Error("first bar should be new")
	}
	if s.advanceBar("EURUSD", t0) {
		t.Error("same bar reported as new")
	}
	if s.advanceBar("EURUSD", t0.Add(-time.Minute)) {
		t.Error("older bar reported as new")
	}
	if !s.advanceBar("GBPUSD", t0) {
		t.Error("watermarks must be per symbol")
	}
	if !s.advanceBar("EURUSD", t0.Add(5*time.Minute)) {
		t.Error("later bar should be new")
	}
}

func TestSessionGate(t *testing.T) {
	s := newSessionState("2024-03-04")
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	cooldown := 2880 * time.Second

	if r := s.gate(now, cooldown, 2); r != "" {
		t.Errorf("fresh session gate = %q, want open", r)
	}
	s.recordTrade(now)
	if r := s.gate(now.Add(47*time.Minute), cooldown, 2); r != "COOLDOWN" {
		t.Errorf("gate = %q, want COOLDOWN", r)
	}
	if r := s.gate(now.Add(48*time.Minute), cooldown, 2); r != "" {
		t.Errorf("gate at exactly the cool-down = %q, want open", r)
	}
	s.recordTrade(now.Add(48 * time.Minute))
	if r := s.gate(now.Add(3*time.Hour), cooldown, 2); r != "DAILY_CAP" {
		t.Errorf("gate = %q, want DAILY_CAP", r)
	}
	if !s.capReached(2) {
		t.Error("capReached = false at the cap")
	}
}

func TestSessionResetIfNewDay(t *testing.T) {
	s := newSessionState("2024-03-04")
	s.recordTrade(time.Now())

	if s.resetIfNewDay("2024-03-04") {
		t.Error("same day reset the counter")
	}
	if n, _, _ := s.snapshot(); n != 1 {
		t.Errorf("trades = %d, want 1", n)
	}
	if !s.resetIfNewDay("2024-03-05") {
		t.Error("new day did not reset")
	}
	if n, last, day := s.snapshot(); n != 0 || last.IsZero() || day != "2024-03-05" {
		t.Errorf("after reset = %d trades, last %v, day %s", n, last, day)
	}
}

func TestStopManager(t *testing.T) {
	sm := newStopManager(2.0)
	if got := sm.calculateStopPrice(types.DirectionLong, 100.0, 1.5, 0.05); math.Abs(got-97) > 1e-9 {
		t.Errorf("long stop = %v, want 97", got)
	}
	if got := sm.calculateStopPrice(types.DirectionShort, 100.0, 1.5, 0.05); math.Abs(got-103) > 1e-9 {
		t.Errorf("short stop = %v, want 103", got)
	}
	// 100 - 2*1.23 = 97.54 rounds to the nearest 0.05.
	if got := sm.calculateStopPrice(types.DirectionLong, 100.0, 1.23, 0.05); math.Abs(got-97.55) > 1e-9 {
		t.Errorf("rounded stop = %v, want 97.55", got)
	}
}
