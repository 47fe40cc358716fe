package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"smartob-trader/internal/broker/brokerobs"
	"smartob-trader/internal/broker/paper"
	"smartob-trader/internal/broker/zerodha"
	"smartob-trader/internal/engine"
	"smartob-trader/internal/engine/engineobs"
	"smartob-trader/internal/eod"
	"smartob-trader/internal/eod/eodobs"
	"smartob-trader/internal/interfaces"
	"smartob-trader/internal/journal"
	"smartob-trader/internal/logger"
	"smartob-trader/internal/metrics"
	"smartob-trader/internal/schedule"
	"smartob-trader/internal/store"
	"smartob-trader/internal/ta"
	"smartob-trader/internal/trace"
	"smartob-trader/internal/tradelog"
)

// app holds everything main drives and must release on shutdown.
type app struct {
	cfg      *store.Config
	clock    *schedule.DayClock
	broker   interfaces.Broker
	engine   interfaces.Engine
	eod      interfaces.EodSummarizer
	tradeLog *tradelog.Log
	journal  *journal.Journal
	metrics  *http.Server
}

// initializeSystem initializes logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("SMARTOB_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeBroker selects the paper or Kite venue and wraps it with observability
func initializeBroker(ctx context.Context, cfg *store.Config) interfaces.Broker {
	var brk interfaces.Broker
	switch cfg.DataSource {
	case "KITE":
		brk = zerodha.New(zerodha.Params{
			Mode:        cfg.Mode,
			APIKey:      os.Getenv("KITE_API_KEY"),
			AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
			Exchange:    cfg.Kite.Exchange,
			Product:     cfg.Kite.Product,
			MaxVolume:   cfg.Kite.MaxVolume,
			Magic:       cfg.MagicNumber,
		})
		logger.Info(ctx, "Using Zerodha Kite for market data", "exchange", cfg.Kite.Exchange)
	default:
		brk = paper.New(paper.Params{
			Equity:       cfg.Paper.Equity,
			DataDir:      cfg.Paper.DataDir,
			SpreadPoints: cfg.Paper.SpreadPoints,
			Instruments:  cfg.Paper.Instruments,
		})
		logger.Info(ctx, "Using paper broker", "data_dir", cfg.Paper.DataDir, "equity", cfg.Paper.Equity)
	}

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	return brokerobs.Wrap(brk)
}

// initializeRecorders opens the trade log and, when enabled, the journal
func initializeRecorders(ctx context.Context, cfg *store.Config, clock *schedule.DayClock) (*tradelog.Log, *journal.Journal, error) {
	tl, err := tradelog.Open(cfg.TradeLog.Path, clock.Location())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trade log: %w", err)
	}
	if !cfg.Journal.Enabled {
		return tl, nil, nil
	}
	j, err := journal.Open(cfg.Journal.Path, clock.Location())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	logger.Info(ctx, "Trade journal enabled", "path", cfg.Journal.Path)
	return tl, j, nil
}

// bootstrap wires the application from cfg
func bootstrap(ctx context.Context, cfg *store.Config) (*app, error) {
	a := &app{cfg: cfg, clock: schedule.NewDayClock(cfg.Calendar.MIC)}
	if cfg.Calendar.MIC != "" && !a.clock.HasCalendar() {
		logger.Warn(ctx, "Unknown exchange calendar, using UTC days", "mic", cfg.Calendar.MIC)
	}

	if cfg.Metrics.Addr != "" {
		a.metrics = metrics.Serve(cfg.Metrics.Addr)
		logger.Info(ctx, "Metrics endpoint listening", "addr", cfg.Metrics.Addr)
	}

	a.broker = initializeBroker(ctx, cfg)
	if err := a.broker.Start(ctx, cfg.Symbols); err != nil {
		return nil, err
	}

	var err error
	if a.tradeLog, a.journal, err = initializeRecorders(ctx, cfg, a.clock); err != nil {
		return nil, err
	}
	a.eod = eodobs.Wrap(eod.NewSummarizer(cfg.TradeLog.Path, cfg.TradeLog.EODDir, a.clock.Location()))

	deps := engine.Deps{
		Data:       a.broker,
		Indicators: ta.NewProvider(a.broker),
		Account:    a.broker,
		Executor:   a.broker,
		Recorders:  []interfaces.TradeRecorder{a.tradeLog},
		Calendar:   a.clock,
	}
	if a.journal != nil {
		deps.Recorders = append(deps.Recorders, a.journal)
		deps.History = a.journal
	}
	eng, err := engine.New(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}
	a.engine = engineobs.Wrap(eng)
	return a, nil
}

// shutdown releases resources in reverse order of bootstrap
func (a *app) shutdown(ctx context.Context) {
	a.broker.Stop(ctx)

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			logger.Warn(ctx, "Failed to close journal", "error", err)
		}
	}
	if a.cfg.TradeLog.DeleteOnShutdown {
		if err := a.tradeLog.Remove(); err != nil {
			logger.Warn(ctx, "Failed to delete trade log", "error", err)
		} else {
			logger.Info(ctx, "Trade log deleted", "path", a.tradeLog.Path())
		}
	}
	if a.metrics != nil {
		_ = a.metrics.Shutdown(ctx)
	}
}
