package preview

import (
	"context"
	"log/slog"
)

// Outcome is the result of a best-effort step.
type Outcome struct {
	Applied bool
	Reason  error
}

func applied() Outcome { return Outcome{Applied: true} }

func degraded(reason error) Outcome { return Outcome{Reason: reason} }

// Observer is told about best-effort steps that did not apply.
type Observer interface {
	Degraded(ctx context.Context, op string, reason error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, op string, reason error)

func (f ObserverFunc) Degraded(ctx context.Context, op string, reason error) {
	f(ctx, op, reason)
}

// LogObserver logs degradations at warn level.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) Degraded(ctx context.Context, op string, reason error) {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}
	l.WarnContext(ctx, "best-effort step degraded", "op", op, "reason", reason)
}

// MultiObserver fans a degradation out to several observers.
type MultiObserver []Observer

func (m MultiObserver) Degraded(ctx context.Context, op string, reason error) {
	for _, o := range m {
		if o != nil {
			o.Degraded(ctx, op, reason)
		}
	}
}

func (a *Adapter) report(ctx context.Context, op string, out Outcome) Outcome {
	if !out.Applied && out.Reason != nil {
		a.observer.Degraded(ctx, op, out.Reason)
	}
	return out
}
