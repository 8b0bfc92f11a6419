package log

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
)

type ctxKey struct{}

// IntoContext returns a copy of ctx carrying l. The logr view of l is stored
// as well, so code that only knows logr can pick it up with logr.FromContext.
func IntoContext(ctx context.Context, l Logger) context.Context {
	ctx = logr.NewContext(ctx, l.Logr())
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return Std()
	}
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	if lr, err := logr.FromContext(ctx); err == nil {
		if zl, ok := lr.GetSink().(zapr.Underlier); ok {
			return FromZap(zl.GetUnderlying())
		}
	}
	return Std()
}
