package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/career-bff/internal/http/handlers"
	"github.com/pribylovaa/career-bff/internal/http/middleware"
	"github.com/pribylovaa/career-bff/internal/region"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// Deps — зависимости ручек.
type Deps struct {
	Auth   handlers.AuthService
	Hosts  *region.Hosts
	Tokens middleware.TokenVerifier
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(deps Deps, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.AuthBearer(),         // вынимаем Bearer токен в контекст
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(deps.Auth, deps.Hosts)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, deps.Tokens)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, deps.Tokens)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, tokens middleware.TokenVerifier) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/email/resend", h.SignupEmailResend)
		r.Post("/signup/confirm", h.ConfirmSignup)
		r.Post("/login", h.Login)
		r.Post("/token", h.RefreshToken)
		r.Post("/logout", h.Logout)

		r.Get("/password/reset/email", h.SendResetConfirmEmail)
		r.Put("/password/reset", h.ResetPassword)

		// защищённые: токен должен принадлежать {user_id}
		r.With(
			middleware.ResponseTime(),
			middleware.RequireSubject(tokens, "user_id", "access denied"),
		).Put("/password/{user_id}/update", h.UpdatePassword)
	})
}
