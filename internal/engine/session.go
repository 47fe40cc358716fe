package engine

import (
	"sync"
	"time"
)

// sessionState holds the cross-cycle counters. Step and OnTimer may run on
// different goroutines, so every access goes through mu.
type sessionState struct {
	mu sync.Mutex

	lastTradeAt time.Time
	tradesToday int
	dayKey      string
	lastBar     map[string]time.Time
}

func newSessionState(dayKey string) *sessionState {
	return &sessionState{dayKey: dayKey, lastBar: map[string]time.Time{}}
}

// advanceBar records barTime as symbol's watermark and reports whether it is
// newer than the previous one.
func (s *sessionState) advanceBar(symbol string, barTime time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.lastBar[symbol]; ok && !barTime.After(prev) {
		return false
	}
	s.lastBar[symbol] = barTime
	return true
}

// gate returns the reason trading is closed, or "" when it is open.
func (s *sessionState) gate(now time.Time, cooldown time.Duration, maxTrades int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastTradeAt.IsZero() && now.Sub(s.lastTradeAt) < cooldown {
		return "COOLDOWN"
	}
	if s.tradesToday >= maxTrades {
		return "DAILY_CAP"
	}
	return ""
}

// capReached reports the daily cap only; used between symbols of one cycle.
func (s *sessionState) capReached(maxTrades int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tradesToday >= maxTrades
}

func (s *sessionState) recordTrade(at time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTradeAt = at
	s.tradesToday++
	return s.tradesToday
}

// resetIfNewDay zeroes the daily counter when dayKey differs from the stored
// one. It returns true when a reset happened.
func (s *sessionState) resetIfNewDay(dayKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dayKey == s.dayKey {
		return false
	}
	s.dayKey = dayKey
	s.tradesToday = 0
	return true
}

// restore seeds the counters from a persisted journal.
func (s *sessionState) restore(tradesToday int, lastTradeAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tradesToday = tradesToday
	if lastTradeAt.After(s.lastTradeAt) {
		s.lastTradeAt = lastTradeAt
	}
}

func (s *sessionState) snapshot() (tradesToday int, lastTradeAt time.Time, dayKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tradesToday, s.lastTradeAt, s.dayKey
}
