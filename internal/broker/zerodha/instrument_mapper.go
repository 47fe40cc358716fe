package zerodha

import (
	"sync"
)

// instrument is the subset of the Kite instrument dump the broker needs.
type instrument struct {
	Token    uint32
	TickSize float64
	LotSize  float64
}

// instrumentMapper manages bidirectional mapping between symbols and tokens
type instrumentMapper struct {
	bySymbol map[string]instrument
	byToken  map[uint32]string
	mu       sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		bySymbol: make(map[string]instrument),
		byToken:  make(map[uint32]string),
	}
}

func (im *instrumentMapper) add(symbol string, inst instrument) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.bySymbol[symbol] = inst
	im.byToken[inst.Token] = symbol
}

func (im *instrumentMapper) get(symbol string) (instrument, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	inst, exists := im.bySymbol[symbol]
	return inst, exists
}

func (im *instrumentMapper) getSymbol(token uint32) string {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.byToken[token]
}

func (im *instrumentMapper) getAllTokens() []uint32 {
	im.mu.RLock()
	defer im.mu.RUnlock()

	tokens := make([]uint32, 0, len(im.byToken))
	for token := range im.byToken {
		tokens = append(tokens, token)
	}
	return tokens
}
