package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/career-bff/internal/downstream/transport"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
)

// Logging кладёт в контекст логгер с request_id и пишет одну запись
// http_request на запрос. 5xx пишутся уровнем Error.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lg := l
			if rid, _ := r.Context().Value(transport.CtxRequestID).(string); rid != "" {
				lg = lg.With(slog.String("request_id", rid))
			}
			r = r.WithContext(log.Into(r.Context(), lg))

			rec := record(w, nil)
			start := time.Now()
			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("dur", time.Since(start)),
				slog.Int("bytes", rec.bytes),
			}

			// Шаблон маршрута известен только после роутинга chi.
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					attrs = append(attrs, slog.String("route", pattern))
				}
			}

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			lg.LogAttrs(r.Context(), level, "http_request", attrs...)
		})
	}
}
