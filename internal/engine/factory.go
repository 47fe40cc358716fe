package engine

import (
	"context"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/store"
)

// New builds the engine and, when d.History is set, resumes today's trade
// count and cool-down from it.
func New(ctx context.Context, cfg *store.Config, d Deps) (interfaces.Engine, error) {
	e, err := newEngine(cfg, d)
	if err != nil {
		return nil, err
	}
	if d.History != nil {
		if err := e.restore(ctx, d.History); err != nil {
			return nil, err
		}
	}
	return e, nil
}
