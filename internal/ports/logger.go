package ports

import (
	"context"
)

// Logger is the leveled, structured logging abstraction the rest of the
// application depends on. Concrete implementations live under
// internal/adapters; injecting the interface keeps the simulation core free
// of any logging dependency.
type Logger interface {
	// Debug logs fine-grained diagnostic detail, such as per-week engine state.
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	// Info logs normal operational events.
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	// Warn logs recoverable anomalies.
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error logs a failure together with its underlying error.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
