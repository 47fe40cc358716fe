package engineobs

import (
	"context"
	"time"

	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/logger"
	"smartob-trader/internal/trace"
	"smartob-trader/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Step(ctx context.Context) ([]*types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	results, err := oe.engine.Step(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trading cycle failed", err,
			"kind", types.ErrorKind(err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	if results == nil {
		return nil, nil
	}

	opened := 0
	for _, r := range results {
		if r.Intent != nil && r.Reason == "OPENED" {
			opened++
		}
	}
	logger.InfoSkip(ctx, 1, "Trading cycle completed",
		"symbols", len(results),
		"opened", opened,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return results, nil
}

func (oe *observableEngine) OnTimer(ctx context.Context, now time.Time) {
	ctx, span := trace.StartSpan(ctx, "engine.OnTimer")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Timer tick", "now", now.Format(time.RFC3339))
	oe.engine.OnTimer(ctx, now)
}
