package zerodha

import (
	"smartob-trader/internal/interfaces"
)

func New(p Params) interfaces.Broker {
	return NewZerodha(p)
}
