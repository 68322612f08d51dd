package logger

import (
	"context"
	"log/slog"
	"time"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserIDKey    ContextKey = "user_id"
	OperationKey ContextKey = "operation"
	MailboxKey   ContextKey = "mailhub.mailbox"
	EmailIDKey   ContextKey = "mailhub.email.id"
)

var contextKeys = []ContextKey{RequestIDKey, UserIDKey, MailboxKey, EmailIDKey, OperationKey}

// GlobalContext is the process-wide ContextLogger set by Init.
var GlobalContext = NewContextLogger(slog.Default())

// ContextAttrs returns the non-empty request and mailbox values on ctx.
func ContextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}

// ContextLogger logs operation outcomes. Its logger is expected to sit on a
// ContextHandler, which adds the context values.
type ContextLogger struct {
	logger *slog.Logger
}

func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// Logger returns the underlying logger.
func (cl *ContextLogger) Logger() *slog.Logger {
	return cl.logger
}

// LogDuration records how long an operation took. The operation name
// replaces any set on ctx.
func (cl *ContextLogger) LogDuration(ctx context.Context, operation string, duration time.Duration) {
	cl.logger.InfoContext(WithOperation(ctx, operation), "operation completed",
		"duration_ms", duration.Milliseconds(),
	)
}

func (cl *ContextLogger) LogError(ctx context.Context, operation string, err error) {
	cl.logger.ErrorContext(WithOperation(ctx, operation), "operation failed",
		"error", err,
	)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// WithMailbox tags the context with the mailbox label a request acts on.
func WithMailbox(ctx context.Context, mailbox string) context.Context {
	return context.WithValue(ctx, MailboxKey, mailbox)
}

func WithEmailID(ctx context.Context, emailID string) context.Context {
	return context.WithValue(ctx, EmailIDKey, emailID)
}
