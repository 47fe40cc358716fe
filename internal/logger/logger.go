// Package logger is a slog facade that stamps records with the current
// trace and span ids. Records go to stderr; stdout carries status lines.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"smartob-trader/internal/trace"
)

var (
	// Falls back to a text handler until Init runs
	globalLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	// Whether Debug records and source locations are emitted
	detailedLogging bool
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or text
	DetailedLogging bool
	Output          io.Writer
}

// Init configures the global logger from the environment.
func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

// LoadConfigFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_DETAILED.
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:          getEnvOrDefault("LOG_FORMAT", "json"),
		DetailedLogging: getEnvOrDefault("LOG_DETAILED", "false") == "true",
	}
}

// InitWithConfig replaces the global logger. DEBUG level implies detailed logging.
func InitWithConfig(config LogConfig) error {
	level := parseLogLevel(config.Level)
	detailedLogging = config.DetailedLogging || level == slog.LevelDebug

	w := config.Output
	if w == nil {
		w = os.Stderr
	}
	// Source is added by logWithTrace so that it names the real caller
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	globalLogger = slog.New(handler).With("service", "smartob-trader")
	slog.SetDefault(globalLogger)
	return nil
}

// Shutdown flushes nothing today; kept so main can tear logging down
// symmetrically with tracing.
func Shutdown(context.Context) error {
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func Debug(ctx context.Context, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, slog.LevelDebug, msg, 2, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, 2, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelError, msg, 2, args...)
}

// ErrorWithErr logs err and marks the active span as failed.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	trace.RecordError(ctx, err)
	logWithTrace(ctx, slog.LevelError, msg, 2, append([]any{"error", err}, args...)...)
}

// DebugSkip logs a debug message attributed to a caller skip frames further up.
// Middleware wrappers use it so the source points at the wrapped call site.
func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if !detailedLogging {
		return
	}
	logWithTrace(ctx, slog.LevelDebug, msg, 2+skip, args...)
}

func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2+skip, args...)
}

func WarnSkip(ctx context.Context, skip int, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, 2+skip, args...)
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	trace.RecordError(ctx, err)
	logWithTrace(ctx, slog.LevelError, msg, 2+skip, append([]any{"error", err}, args...)...)
}

// logWithTrace prepends trace ids and, when detailed, the caller found
// skip frames up (runtime.Caller -> logWithTrace -> wrapper -> caller).
func logWithTrace(ctx context.Context, level slog.Level, msg string, skip int, args ...any) {
	if traceID, spanID, ok := trace.SpanFields(ctx); ok {
		args = append([]any{"trace_id", traceID, "span_id", spanID}, args...)
	}
	if detailedLogging {
		if pc, file, line, ok := runtime.Caller(skip); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				args = append(args, "source", slog.GroupValue(
					slog.String("function", fn.Name()),
					slog.String("file", file),
					slog.Int("line", line),
				))
			}
		}
	}
	globalLogger.Log(ctx, level, msg, args...)
}

// Signal records the outcome of an order-block, trend and entry evaluation.
func Signal(ctx context.Context, symbol, orderBlock, trend string, qualified bool, fields ...any) {
	trace.AddEvent(ctx, "signal_evaluated", oteltrace.WithAttributes(
		attribute.String("symbol", symbol),
		attribute.String("order_block", orderBlock),
		attribute.String("trend", trend),
		attribute.Bool("qualified", qualified),
	))
	allFields := append([]any{
		"type", "SIGNAL",
		"symbol", symbol,
		"order_block", orderBlock,
		"trend", trend,
		"qualified", qualified,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Signal evaluated", 2, allFields...)
}

// Trade records an accepted order. Always logged at INFO.
func Trade(ctx context.Context, symbol, side string, lots, price, stop float64, intentID string, fields ...any) {
	trace.AddEvent(ctx, "trade_executed", oteltrace.WithAttributes(
		attribute.String("symbol", symbol),
		attribute.String("side", side),
		attribute.Float64("lots", lots),
		attribute.Float64("price", price),
		attribute.Float64("stop_loss", stop),
		attribute.String("intent_id", intentID),
	))
	allFields := append([]any{
		"type", "TRADE",
		"symbol", symbol,
		"side", side,
		"lots", lots,
		"price", price,
		"stop_loss", stop,
		"intent_id", intentID,
	}, fields...)
	logWithTrace(ctx, slog.LevelInfo, "Trade executed", 2, allFields...)
}

// Risk records a sizing or limit event at WARN.
func Risk(ctx context.Context, symbol, eventType string, fields ...any) {
	trace.AddEvent(ctx, "risk_event", oteltrace.WithAttributes(
		attribute.String("symbol", symbol),
		attribute.String("event_type", eventType),
	))
	allFields := append([]any{
		"type", "RISK",
		"symbol", symbol,
		"event_type", eventType,
	}, fields...)
	logWithTrace(ctx, slog.LevelWarn, "Risk event", 2, allFields...)
}

func IsDebugEnabled() bool {
	return detailedLogging
}
