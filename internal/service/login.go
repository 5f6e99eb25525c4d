package service

import (
	"context"
	"fmt"
	"log/slog"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/models"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
	"github.com/pribylovaa/career-bff/internal/pkg/redact"
)

// Login проверяет пару email/пароль в auth-апстриме и открывает сессию.
// userHost зарезервирован под предзагрузку профиля; сейчас профиль не запрашивается.
func (s *Service) Login(ctx context.Context, authHost, userHost, email, password string) (*models.LoginResult, error) {
	const op = "service.auth.Login"

	rawURL := authHost + "/login"
	data, err := s.ds.Post(ctx, rawURL, map[string]string{"email": email, "password": password})
	if err != nil {
		log.From(ctx).Warn("login_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(email)),
			slog.String("err", err.Error()),
		)
		return nil, apierrors.Wrap(op, err)
	}

	sess, err := models.DecodeSession(data)
	if err != nil {
		return nil, apierrors.Server(msgBadUpstream, fmt.Errorf("%s: %s: %w", op, rawURL, err))
	}

	if !sess.Has(models.FieldRegion) {
		sess[models.FieldRegion] = s.region
	}

	out, err := s.openSession(ctx, op, sess)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	log.From(ctx).Info("login_succeeded",
		slog.String("op", op),
		slog.String("user_id", sess.UserID()),
	)

	return &models.LoginResult{Auth: out}, nil
}

// GetNewTokenPair выдаёт новую пару токенов по refresh-токену сессии.
// Refresh-токен ротируется при каждом успешном вызове.
func (s *Service) GetNewTokenPair(ctx context.Context, userID, refreshToken string) (*models.TokenPair, error) {
	const op = "service.auth.GetNewTokenPair"

	sess, err := s.session(ctx, op, userID)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if sess == nil {
		return nil, apierrors.Unauthorized(msgInvalidUser)
	}

	if sess.RefreshToken() == "" || sess.RefreshToken() != refreshToken || !s.issuer.VerifyRefreshToken(refreshToken) {
		log.From(ctx).Warn("refresh_token_rejected",
			slog.String("op", op),
			slog.String("user_id", userID),
			slog.String("token", redact.Token(refreshToken)),
		)
		return nil, apierrors.Unauthorized(msgInvalidRefresh)
	}

	refresh := s.issuer.IssueRefreshToken()
	sess[models.FieldRefreshToken] = refresh

	if err := s.set(ctx, op, userID, sess, s.cfg.LongTermTTL); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	access, err := s.issuer.IssueAccessToken(ctx, sess, tokenFields)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	return &models.TokenPair{Token: access, RefreshToken: refresh}, nil
}

// Logout помечает сессию как offline. Запись остаётся на LongTermTTL,
// чтобы параллельные уведомления видели переход пользователя в offline.
func (s *Service) Logout(ctx context.Context, userID string) (string, error) {
	const op = "service.auth.Logout"

	sess, err := s.session(ctx, op, userID)
	if err != nil {
		return "", apierrors.Wrap(op, err)
	}

	if sess == nil || !sess.Online() {
		return "", apierrors.Client(msgLoggedOut)
	}

	if err := s.set(ctx, op, userID, sess.Offline(), s.cfg.LongTermTTL); err != nil {
		return "", apierrors.Wrap(op, err)
	}

	log.From(ctx).Info("logout_succeeded", slog.String("op", op), slog.String("user_id", userID))

	return msgLogoutOK, nil
}

// openSession сохраняет сессию (online, новый refresh-токен, LongTermTTL)
// и возвращает её копию для клиента: без полей ResponseFilter, с access-токеном.
func (s *Service) openSession(ctx context.Context, op string, sess models.Session) (models.Session, error) {
	uid := sess.UserID()
	if uid == "" {
		return nil, apierrors.Server(msgBadUpstream, fmt.Errorf("%s: user_id is missing in auth record", op))
	}

	sess[models.FieldOnline] = true
	sess[models.FieldRefreshToken] = s.issuer.IssueRefreshToken()

	if err := s.set(ctx, op, uid, sess, s.cfg.LongTermTTL); err != nil {
		return nil, err
	}

	access, err := s.issuer.IssueAccessToken(ctx, sess, tokenFields)
	if err != nil {
		return nil, err
	}

	out := sess.Without(s.cfg.ResponseFilter)
	out[models.FieldToken] = access

	return out, nil
}
