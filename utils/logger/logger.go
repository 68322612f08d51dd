package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// Init installs the mail-hub JSON logger on stdout, fanned out to the OTel
// log bridge when enableOTel is set. Context values reach both outputs.
func Init(enableOTel bool) *slog.Logger {
	return initWith(os.Stdout, parseLevel(os.Getenv("LOG_LEVEL")), enableOTel)
}

func initWith(w io.Writer, level slog.Level, enableOTel bool) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	if enableOTel {
		handler = NewMultiHandler(handler, NewOTelHandler(level))
	}

	logger := slog.New(NewContextHandler(handler))
	slog.SetDefault(logger)

	GlobalContext = NewContextLogger(logger)

	return logger
}

// NewCLI returns a text logger for command line tools. Only warnings and
// errors are shown unless verbose is set.
func NewCLI(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OTelHandler exports records through the global OTel logger provider.
// Attributes bound with WithAttrs are converted once, under the group prefix
// in effect at that point.
type OTelHandler struct {
	logger log.Logger
	level  slog.Level
	prefix string
	bound  []log.KeyValue
}

func NewOTelHandler(level slog.Level) *OTelHandler {
	return &OTelHandler{
		logger: global.GetLoggerProvider().Logger("mail-hub"),
		level:  level,
	}
}

func (h *OTelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *OTelHandler) Handle(ctx context.Context, r slog.Record) error {
	var rec log.Record
	rec.SetTimestamp(r.Time)
	rec.SetObservedTimestamp(time.Now())
	rec.SetBody(log.StringValue(r.Message))
	rec.SetSeverity(slogLevelToOTel(r.Level))
	rec.SetSeverityText(r.Level.String())
	rec.AddAttributes(h.bound...)
	r.Attrs(func(a slog.Attr) bool {
		rec.AddAttributes(slogAttrToOTel(h.prefix, a))
		return true
	})
	h.logger.Emit(ctx, rec)
	return nil
}

func (h *OTelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.bound = make([]log.KeyValue, 0, len(h.bound)+len(attrs))
	next.bound = append(next.bound, h.bound...)
	for _, a := range attrs {
		next.bound = append(next.bound, slogAttrToOTel(h.prefix, a))
	}
	return &next
}

func (h *OTelHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func slogLevelToOTel(level slog.Level) log.Severity {
	switch {
	case level >= slog.LevelError:
		return log.SeverityError
	case level >= slog.LevelWarn:
		return log.SeverityWarn
	case level >= slog.LevelInfo:
		return log.SeverityInfo
	default:
		return log.SeverityDebug
	}
}

func slogAttrToOTel(prefix string, a slog.Attr) log.KeyValue {
	key := prefix + a.Key
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindString:
		return log.String(key, a.Value.String())
	case slog.KindInt64:
		return log.Int64(key, a.Value.Int64())
	case slog.KindFloat64:
		return log.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return log.Bool(key, a.Value.Bool())
	case slog.KindUint64:
		return log.Int64(key, int64(a.Value.Uint64()))
	case slog.KindDuration:
		return log.Int64(key, a.Value.Duration().Milliseconds())
	case slog.KindTime:
		return log.String(key, a.Value.Time().UTC().Format(time.RFC3339Nano))
	case slog.KindGroup:
		attrs := a.Value.Group()
		kvs := make([]log.KeyValue, 0, len(attrs))
		for _, ga := range attrs {
			kvs = append(kvs, slogAttrToOTel("", ga))
		}
		return log.Map(key, kvs...)
	default:
		return log.String(key, a.Value.String())
	}
}

// MultiHandler sends each record to every enabled handler and reports
// their failures together.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(h.handlers, func(inner slog.Handler) bool {
		return inner.Enabled(ctx, level)
	})
}

func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, inner := range h.handlers {
		if !inner.Enabled(ctx, r.Level) {
			continue
		}
		if err := inner.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.each(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
}

func (h *MultiHandler) each(f func(slog.Handler) slog.Handler) *MultiHandler {
	next := make([]slog.Handler, len(h.handlers))
	for i, inner := range h.handlers {
		next[i] = f(inner)
	}
	return &MultiHandler{handlers: next}
}
