package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/career-bff/internal/cache"
	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/models"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
	"github.com/pribylovaa/career-bff/internal/pkg/redact"
)

// pendingSignup — данные регистрации под ключом токена подтверждения.
type pendingSignup struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// decodePending разбирает данные регистрации. Токены, email и user_id живут
// в одном пространстве ключей, поэтому принимается только объект ровно из
// двух непустых строк email и password: сессия или указатель под тем же
// ключом данными регистрации не считаются.
func decodePending(item *cache.Item) (pendingSignup, bool) {
	var fields map[string]any
	if item == nil || !item.IsJSON || item.Decode(&fields) != nil || len(fields) != 2 {
		return pendingSignup{}, false
	}

	email, _ := fields["email"].(string)
	password, _ := fields["password"].(string)
	if email == "" || password == "" {
		return pendingSignup{}, false
	}

	return pendingSignup{Email: email, Password: password}, true
}

// signupPointer — указатель email -> токен подтверждения.
type signupPointer struct {
	Token string `json:"token"`
}

// Signup начинает регистрацию: апстрим отправляет письмо и возвращает токен
// подтверждения, шлюз кэширует данные регистрации под токеном и указатель под email.
// Пока указатель жив — TooManyRequests без обращения к апстриму.
func (s *Service) Signup(ctx context.Context, host, email, password string) (*models.SignupResult, error) {
	const op = "service.auth.Signup"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("email", redact.Email(email)))

	item, err := s.cache.Get(ctx, email)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if item != nil {
		if !item.Expired(s.now()) {
			lg.Warn("signup_throttled")
			return nil, apierrors.TooManyRequests(msgFrequentRequests)
		}

		// Просроченная, но ещё не вытесненная запись.
		if err := s.dropPending(ctx, email, item.Decode); err != nil {
			return nil, apierrors.Wrap(op, err)
		}
	}

	tok, err := s.requestSignupToken(ctx, op, host, email)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if err := s.set(ctx, op, tok, pendingSignup{Email: email, Password: password}, s.cfg.ShortTermTTL); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if err := s.set(ctx, op, email, signupPointer{Token: tok}, s.cfg.ShortTermTTL); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	lg.Info("signup_email_sent", slog.String("token", redact.Token(tok)))

	return &models.SignupResult{TTLSecs: s.intervalSecs(), Token: s.echo(tok)}, nil
}

// SignupEmailResend запрашивает новое письмо: данные регистрации переезжают
// со старого токена на новый, старый токен удаляется.
func (s *Service) SignupEmailResend(ctx context.Context, host, email string) (*models.SignupResult, error) {
	const op = "service.auth.SignupEmailResend"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("email", redact.Email(email)))

	item, err := s.live(ctx, email)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	var ptr signupPointer
	if item == nil || item.Decode(&ptr) != nil || ptr.Token == "" {
		return nil, apierrors.NotFound(msgNoSignupData)
	}

	// Указатель пишется с ShortTermTTL, значит записан в ExpiresAt - ShortTermTTL.
	if item.ExpiresAt != 0 {
		written := time.Unix(item.ExpiresAt, 0).Add(-s.cfg.ShortTermTTL)
		if s.now().Before(written.Add(s.cfg.RequestIntervalTTL)) {
			lg.Warn("signup_resend_throttled")
			return nil, apierrors.TooManyRequests(msgFrequentRequests)
		}
	}

	pending, err := s.live(ctx, ptr.Token)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if pending == nil {
		return nil, apierrors.NotFound(msgNoSignupData)
	}

	if pending.IsEmptyObject() {
		return nil, apierrors.DuplicateUser(msgRegistering)
	}

	payload, ok := decodePending(pending)
	if !ok || payload.Email != email {
		return nil, apierrors.NotFound(msgNoSignupData)
	}

	tok, err := s.requestSignupToken(ctx, op, host, email)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if err := s.set(ctx, op, tok, payload, s.cfg.ShortTermTTL); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if tok != ptr.Token {
		if err := s.cache.Delete(ctx, ptr.Token); err != nil {
			return nil, apierrors.Wrap(op, err)
		}
	}

	if err := s.set(ctx, op, email, signupPointer{Token: tok}, s.cfg.ShortTermTTL); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	lg.Info("signup_email_resent", slog.String("token", redact.Token(tok)))

	return &models.SignupResult{TTLSecs: s.intervalSecs(), Token: s.echo(tok)}, nil
}

// ConfirmSignup завершает регистрацию по токену из письма.
// Пока апстрим создаёт аккаунт, под токеном лежит {} (SentinelTTL): повторное
// подтверждение в это окно получает DuplicateUser, а не NotFound.
func (s *Service) ConfirmSignup(ctx context.Context, host, region, tok string) (models.Session, error) {
	const op = "service.auth.ConfirmSignup"

	lg := log.From(ctx).With(slog.String("op", op), slog.String("token", redact.Token(tok)))

	item, err := s.live(ctx, tok)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if item == nil {
		return nil, apierrors.NotFound(msgNoSignupData)
	}

	if item.IsEmptyObject() {
		lg.Warn("signup_confirm_in_progress")
		return nil, apierrors.DuplicateUser(msgRegistering)
	}

	payload, ok := decodePending(item)
	if !ok {
		lg.Warn("signup_confirm_rejected")
		return nil, apierrors.NotFound(msgNoSignupData)
	}

	if region == "" {
		region = s.region
	}

	if err := s.set(ctx, op, tok, map[string]any{}, s.cfg.SentinelTTL); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if err := s.cache.Delete(ctx, payload.Email); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	rawURL := host + "/signup"
	data, err := s.ds.Post(ctx, rawURL, map[string]string{
		"region":   region,
		"email":    payload.Email,
		"password": payload.Password,
	})
	if err != nil {
		// Сентинел остаётся до истечения SentinelTTL.
		return nil, apierrors.Wrap(op, err)
	}

	sess, err := models.DecodeSession(data)
	if err != nil {
		return nil, apierrors.Server(msgBadUpstream, fmt.Errorf("%s: %s: %w", op, rawURL, err))
	}

	if !sess.Has(models.FieldRegion) {
		sess[models.FieldRegion] = region
	}

	if sess.Email() == "" {
		sess[models.FieldEmail] = payload.Email
	}

	out, err := s.openSession(ctx, op, sess)
	if err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	if err := s.cache.Delete(ctx, tok); err != nil {
		return nil, apierrors.Wrap(op, err)
	}

	s.recordRegion(ctx, payload.Email, region)

	lg.Info("signup_confirmed", slog.String("user_id", sess.UserID()))

	return out, nil
}

// requestSignupToken просит апстрим отправить письмо подтверждения.
func (s *Service) requestSignupToken(ctx context.Context, op, host, email string) (string, error) {
	rawURL := host + "/signup/email"

	data, err := s.ds.Post(ctx, rawURL, map[string]string{"email": email})
	if err != nil {
		return "", err
	}

	var ptr signupPointer
	if err := decodeData(op, rawURL, data, &ptr); err != nil {
		return "", err
	}

	if ptr.Token == "" {
		return "", apierrors.Server(msgBadUpstream, fmt.Errorf("%s: %s: empty token", op, rawURL))
	}

	return ptr.Token, nil
}

// dropPending удаляет указатель email и связанный с ним токен.
func (s *Service) dropPending(ctx context.Context, email string, decode func(any) error) error {
	var ptr signupPointer
	if decode(&ptr) == nil && ptr.Token != "" {
		if err := s.cache.Delete(ctx, ptr.Token); err != nil {
			return err
		}
	}

	return s.cache.Delete(ctx, email)
}
