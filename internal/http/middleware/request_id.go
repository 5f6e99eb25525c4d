package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/career-bff/internal/downstream/transport"
)

const (
	headerRequestID = "X-Request-Id"
	maxRequestIDLen = 64
)

// RequestID обеспечивает X-Request-Id: входящий id принимается, если он
// короткий и состоит из [A-Za-z0-9._-], иначе генерируется новый (32 hex).
// id попадает в заголовки запроса и ответа и в контекст по ключу
// transport.CtxRequestID, откуда его берёт исходящий транспорт.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if !validRequestID(id) {
				id = strings.ReplaceAll(uuid.NewString(), "-", "")
				r.Header.Set(headerRequestID, id)
			}
			w.Header().Set(headerRequestID, id)

			ctx := context.WithValue(r.Context(), transport.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}

	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}

	return true
}
