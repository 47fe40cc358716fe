package zerodha

import (
	"sync"
	"time"
)

// quote is the top of book last seen on the ticker.
type quote struct {
	Bid float64
	Ask float64
	At  time.Time
}

// quoteCache holds the latest streamed quote per symbol.
type quoteCache struct {
	quotes map[string]quote
	maxAge time.Duration
	mu     sync.RWMutex
}

func newQuoteCache(maxAge time.Duration) *quoteCache {
	return &quoteCache{
		quotes: make(map[string]quote),
		maxAge: maxAge,
	}
}

func (qc *quoteCache) put(symbol string, q quote) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	qc.quotes[symbol] = q
}

// fresh returns the cached quote when both sides are set and it is younger
// than maxAge at now.
func (qc *quoteCache) fresh(symbol string, now time.Time) (quote, bool) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	q, ok := qc.quotes[symbol]
	if !ok || q.Bid <= 0 || q.Ask <= 0 {
		return quote{}, false
	}
	if now.Sub(q.At) > qc.maxAge {
		return quote{}, false
	}
	return q, true
}
