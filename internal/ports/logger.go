package ports

import "context"

// Logger is the leveled logging interface injected into adapters and the
// optimizer. Fields are optional key-value maps appended to the message.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]interface{})
	Info(ctx context.Context, msg string, fields ...map[string]interface{})
	Warn(ctx context.Context, msg string, fields ...map[string]interface{})
	// Error additionally records the causing error.
	Error(ctx context.Context, err error, msg string, fields ...map[string]interface{})
}
