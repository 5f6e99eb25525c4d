package transport

import (
	"net/http"
)

type CtxKey string

const (
	CtxRequestID CtxKey = "request_id"
	CtxAuthToken CtxKey = "auth_token"
)

// WithMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте);
//   - Authorization: Bearer <token> (если есть в контексте и не задан вызывающим);
//   - User-Agent (если передан параметром).
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			ctx := r.Context()
			r = r.Clone(ctx)

			if rid, _ := ctx.Value(CtxRequestID).(string); rid != "" {
				r.Header.Set("X-Request-Id", rid)
			}

			if tok, _ := ctx.Value(CtxAuthToken).(string); tok != "" && r.Header.Get("Authorization") == "" {
				r.Header.Set("Authorization", "Bearer "+tok)
			}

			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}
