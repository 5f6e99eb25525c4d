package service

import (
	"context"
	"log/slog"
	"net/url"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/models"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
	"github.com/pribylovaa/career-bff/internal/pkg/redact"
)

// SendResetConfirmEmail просит апстрим отправить письмо сброса пароля.
// Не чаще раза в RequestIntervalTTL на email. Отказ апстрима не раскрывается
// клиенту: ответ тот же, но токен подменяется на "<email>:not_exist" и не кэшируется.
func (s *Service) SendResetConfirmEmail(ctx context.Context, authHost, email string) (*models.ResetEmailResult, error) {
	const op = "service.auth.SendResetConfirmEmail"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("email", redact.Email(email)))
	guard := resetGuardPrefix + email

	item, err := s.live(ctx, guard)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if item != nil {
		lg.Warn("reset_email_throttled")
		return nil, apierrors.TooManyRequests(msgFrequentRequests)
	}

	rawURL := authHost + "/password/reset/email"
	tok := email + notExistSuffix
	known := false

	data, err := s.ds.Get(ctx, rawURL, url.Values{"email": {email}})
	if err == nil {
		var ptr signupPointer
		err = decodeData(op, rawURL, data, &ptr)
		if err == nil && ptr.Token != "" {
			tok, known = ptr.Token, true
		}
	}

	if err != nil {
		lg.Warn("reset_email_upstream_failed", slog.String("err", err.Error()))
	}

	if err := s.set(ctx, op, guard, "1", s.cfg.RequestIntervalTTL); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if known {
		if err := s.set(ctx, op, tok, email, s.cfg.ShortTermTTL); err != nil {
			return nil, apierrors.Wrap(op, err)
		}
	}

	lg.Info("reset_email_sent", slog.Bool("known", known))

	return &models.ResetEmailResult{TTLSecs: s.intervalSecs(), Token: s.echo(tok)}, nil
}

// ResetPassword меняет пароль по токену из письма. Токен должен указывать
// на тот же email, что и в запросе.
func (s *Service) ResetPassword(ctx context.Context, authHost, verifyToken string, req models.ResetPasswordRequest) error {
	const op = "service.auth.ResetPassword"

	item, err := s.live(ctx, verifyToken)
	if err != nil {
		return apierrors.Wrap(op, err)
	}

	if item == nil || item.IsJSON || item.String() == "" {
		return apierrors.Unauthorized(msgInvalidToken)
	}

	email := item.String()
	if email != req.RegisterEmail {
		log.From(ctx).Warn("reset_password_email_mismatch",
			slog.String("op", op),
			slog.String("email", redact.Email(req.RegisterEmail)),
		)
		return apierrors.Unauthorized(msgInvalidUser)
	}

	if _, err := s.ds.Put(ctx, authHost+"/password/update", req); err != nil {
		return apierrors.Wrap(op, err)
	}

	if err := s.cache.Delete(ctx, resetGuardPrefix+email); err != nil {
		return apierrors.Wrap(op, err)
	}

	if err := s.cache.Delete(ctx, verifyToken); err != nil {
		return apierrors.Wrap(op, err)
	}

	return nil
}

// UpdatePassword меняет пароль залогиненного пользователя: email в запросе
// должен совпадать с email его сессии.
func (s *Service) UpdatePassword(ctx context.Context, authHost, userID string, req models.UpdatePasswordRequest) error {
	const op = "service.auth.UpdatePassword"

	sess, err := s.session(ctx, op, userID)
	if err != nil {
		return apierrors.Wrap(op, err)
	}

	if sess == nil || sess.Email() == "" || sess.Email() != req.RegisterEmail {
		return apierrors.Unauthorized(msgInvalidEmail)
	}

	if _, err := s.ds.Put(ctx, authHost+"/password/update", req); err != nil {
		return apierrors.Wrap(op, err)
	}

	return nil
}
