// log прокладывает request-scoped логгер через context.Context.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into возвращает контекст с логгером l.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From — логгер запроса; вне запроса slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, _ := ctx.Value(ctxKey{}).(*slog.Logger); l != nil {
		return l
	}

	return slog.Default()
}

// Op — логгер запроса с атрибутом op.
func Op(ctx context.Context, op string) *slog.Logger {
	return From(ctx).With(slog.String("op", op))
}
