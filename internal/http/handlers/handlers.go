package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/models"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
	"github.com/pribylovaa/career-bff/internal/region"
)

// AuthService — операции auth-флоу, нужные ручкам (реализует service.Service).
type AuthService interface {
	Signup(ctx context.Context, host, email, password string) (*models.SignupResult, error)
	SignupEmailResend(ctx context.Context, host, email string) (*models.SignupResult, error)
	ConfirmSignup(ctx context.Context, host, region, tok string) (models.Session, error)
	Login(ctx context.Context, authHost, userHost, email, password string) (*models.LoginResult, error)
	GetNewTokenPair(ctx context.Context, userID, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID string) (string, error)
	SendResetConfirmEmail(ctx context.Context, authHost, email string) (*models.ResetEmailResult, error)
	ResetPassword(ctx context.Context, authHost, verifyToken string, req models.ResetPasswordRequest) error
	UpdatePassword(ctx context.Context, authHost, userID string, req models.UpdatePasswordRequest) error
	RegistrationRegion(ctx context.Context, email string) string
}

// Handlers агрегирует зависимости ручек.
type Handlers struct {
	Auth  AuthService
	Hosts *region.Hosts
}

func New(auth AuthService, hosts *region.Hosts) *Handlers {
	return &Handlers{Auth: auth, Hosts: hosts}
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// validator — DTO с проверкой полей.
type validator interface {
	Validate() error
}

// bind декодирует и валидирует тело. Ошибка уже записана в ответ, если вернулось false.
func bind(w http.ResponseWriter, r *http.Request, in validator) bool {
	if err := decodeStrict(r, in); err != nil {
		e := apierrors.Client("invalid request body")
		e.Err = fmt.Errorf("handlers.bind: %w", err)
		fail(w, r, e)
		return false
	}

	if err := in.Validate(); err != nil {
		fail(w, r, err)
		return false
	}

	return true
}

// fail логирует внутреннюю причину серверных ошибок и пишет конверт.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if apierrors.KindOf(err) == apierrors.KindServer {
		log.From(r.Context()).Error("request_failed",
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
	}

	apierrors.WriteError(w, r, err)
}

// authHost — auth-апстрим региона шлюза.
func (h *Handlers) authHost() (string, error) {
	return h.Hosts.Auth(h.Hosts.Current())
}
