package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartob-trader/internal/logger"
	"smartob-trader/internal/schedule"
	"smartob-trader/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	a, err := bootstrap(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to start", err)
		os.Exit(1)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()
	timer := time.NewTicker(time.Duration(cfg.TimerSeconds) * time.Second)
	defer timer.Stop()

	logger.Info(ctx, "Bot started",
		"mode", cfg.Mode,
		"data_source", cfg.DataSource,
		"symbols", cfg.Symbols,
		"magic", cfg.MagicNumber,
	)

	for {
		select {
		case <-tick.C:
			results, err := a.engine.Step(ctx)
			if err != nil {
				continue
			}
			for _, r := range results {
				b, err := json.Marshal(r)
				if err != nil {
					logger.ErrorWithErr(ctx, "Failed to encode step result", err, "symbol", r.Symbol)
					continue
				}
				fmt.Println(string(b))
			}
		case now := <-timer.C:
			a.engine.OnTimer(ctx, now)
			summarizePreviousDay(ctx, a, now)
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			day := a.clock.DayKey(time.Now())
			if p, err := a.eod.SummarizeDay(day); err == nil && p != "" {
				logger.Info(ctx, "EOD CSV written", "path", p)
			}
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			a.shutdown(shutdownCtx)
			_ = trace.Shutdown(shutdownCtx)
			_ = logger.Shutdown(shutdownCtx)
			done()
			return
		case <-ctx.Done():
			return
		}
	}
}

// summarizePreviousDay writes yesterday's report once the day has rolled.
func summarizePreviousDay(ctx context.Context, a *app, now time.Time) {
	prev := schedule.PreviousDay(a.clock.DayKey(now))
	if prev == "" {
		return
	}
	if ok, _ := a.eod.ShouldRun(prev); !ok {
		return
	}
	if p, err := a.eod.SummarizeDay(prev); err == nil && p != "" {
		logger.Info(ctx, "EOD CSV written", "path", p, "day", prev)
	}
}
