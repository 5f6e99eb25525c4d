package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/career-bff/internal/downstream/transport"
	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
	"github.com/pribylovaa/career-bff/internal/token"
)

type claimsKey struct{}

// AuthBearer извлекает Bearer-токен из Authorization и кладёт "сырой" токен
// в контекст по ключу transport.CtxAuthToken.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if auth != "" {
				const prefix = "Bearer "
				if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
					tok := strings.TrimSpace(auth[len(prefix):])

					if tok != "" {
						ctx := context.WithValue(r.Context(), transport.CtxAuthToken, tok)
						r = r.WithContext(ctx)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenVerifier — проверка access-токена для субъекта (реализует token.Issuer).
type TokenVerifier interface {
	VerifyAccessToken(tok, subjectID string) (*token.Claims, error)
}

// RequireSubject пропускает запрос, только если Bearer-токен подписан ключом
// субъекта из URL-параметра param и выписан на него же. Иначе 401 с msg.
// Ставится после AuthBearer.
func RequireSubject(v TokenVerifier, param, msg string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.RequireSubject"

			subject := chi.URLParam(r, param)
			tok, _ := r.Context().Value(transport.CtxAuthToken).(string)

			if subject == "" || tok == "" {
				e := apierrors.Unauthorized("Authorization failed")
				e.Err = fmt.Errorf("%s: missing subject or bearer token", op)
				apierrors.WriteError(w, r, e)
				return
			}

			claims, err := v.VerifyAccessToken(tok, subject)
			if err != nil {
				log.From(r.Context()).Warn("access_denied",
					slog.String("op", op),
					slog.String("subject", subject),
					slog.String("err", err.Error()),
				)

				e := apierrors.Unauthorized(msg)
				e.Err = fmt.Errorf("%s: %w", op, err)
				apierrors.WriteError(w, r, e)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom — проверенные claims из контекста (после RequireSubject).
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return c, ok && c != nil
}
