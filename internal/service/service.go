// service — оркестратор auth-флоу шлюза: регистрация с подтверждением
// по email, логин/логаут, обновление пары токенов и сброс пароля.
//
// Состояние флоу живёт только в кэше (cache.Cache) с TTL:
//   - email -> {token}: указатель на ожидающую регистрацию;
//   - token -> {email,password}: данные регистрации, {} — "подтверждение в процессе";
//   - user_id -> сессия (models.Session);
//   - reset_pw:{email} -> "1": защита от частых писем сброса;
//   - verify_token -> email: токен сброса пароля.
//
// Service не хранит состояние запроса и безопасен для конкурентного
// использования, если безопасны кэш и Downstream. Блокировок нет:
// две одновременные регистрации одного email могут гоняться (last-writer-wins).
//
// Типизированные ошибки кэша и апстрима пробрасываются без смены вида,
// прочие оборачиваются в Server с именем операции.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/pribylovaa/career-bff/internal/cache"
	"github.com/pribylovaa/career-bff/internal/config"
	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/models"
	"github.com/pribylovaa/career-bff/internal/storage"
	"github.com/pribylovaa/career-bff/internal/token"
)

const (
	msgFrequentRequests = "frequent_requests"
	msgNoSignupData     = "no signup data"
	msgRegistering      = "registering"
	msgLoggedOut        = "logged out"
	msgLogoutOK         = "successfully logged out"
	msgInvalidToken     = "invalid token"
	msgInvalidUser      = "invalid user"
	msgInvalidEmail     = "invalid email"
	msgInvalidRefresh   = "invalid refresh token"
	msgServerError      = "server_error"
	msgBadUpstream      = "invalid downstream response"

	resetGuardPrefix = "reset_pw:"
	notExistSuffix   = ":not_exist"
)

// tokenFields — поля сессии, попадающие в access-токен.
var tokenFields = []string{models.FieldRegion, models.FieldUserID}

// Downstream — вызовы апстримов, нужные сервису (реализует downstream.Client).
type Downstream interface {
	Get(ctx context.Context, rawURL string, params url.Values) (json.RawMessage, error)
	Post(ctx context.Context, rawURL string, body any) (json.RawMessage, error)
	Put(ctx context.Context, rawURL string, body any) (json.RawMessage, error)
}

// Service описывает бизнес-логику auth-флоу.
type Service struct {
	ds      Downstream
	cache   cache.Cache
	issuer  *token.Issuer
	cfg     config.AuthConfig
	regions storage.RegionStorage // может быть nil, если хранилище не сконфигурировано

	region    string
	echoToken bool
	now       func() time.Time
}

// Option — функциональная опция Service.
type Option func(*Service)

// WithTokenEcho включает возврат токенов подтверждения в ответе (не prod).
func WithTokenEcho(on bool) Option {
	return func(s *Service) { s.echoToken = on }
}

// WithRegion задаёт регион шлюза; он же подставляется в сессию без region.
func WithRegion(region string) Option {
	return func(s *Service) { s.region = region }
}

// WithRegionStorage подключает хранилище регионов регистрации.
func WithRegionStorage(rs storage.RegionStorage) Option {
	return func(s *Service) { s.regions = rs }
}

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New создаёт новый экземпляр Service.
func New(ds Downstream, c cache.Cache, issuer *token.Issuer, cfg config.AuthConfig, opts ...Option) *Service {
	s := &Service{
		ds:     ds,
		cache:  c,
		issuer: issuer,
		cfg:    cfg,
		region: "default",
		now:    time.Now,
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *Service) intervalSecs() int { return int(s.cfg.RequestIntervalTTL / time.Second) }

func (s *Service) echo(tok string) string {
	if s.echoToken {
		return tok
	}

	return ""
}

// live возвращает запись, если она есть и её срок не истёк.
func (s *Service) live(ctx context.Context, key string) (*cache.Item, error) {
	item, err := s.cache.Get(ctx, key)
	if err != nil || item == nil {
		return nil, err
	}

	if item.Expired(s.now()) {
		return nil, nil
	}

	return item, nil
}

// session читает сессию пользователя; nil, nil — сессии нет.
func (s *Service) session(ctx context.Context, op, userID string) (models.Session, error) {
	item, err := s.live(ctx, userID)
	if err != nil || item == nil {
		return nil, err
	}

	if !item.IsJSON {
		return nil, apierrors.Server(msgServerError, fmt.Errorf("%s: session %s is not json", op, userID))
	}

	sess, err := models.DecodeSession(item.Raw)
	if err != nil {
		return nil, apierrors.Server(msgServerError, fmt.Errorf("%s: session %s: %w", op, userID, err))
	}

	return sess, nil
}

// set пишет запись и превращает отказ хранилища без ошибки в Server.
func (s *Service) set(ctx context.Context, op, key string, value any, ttl time.Duration) error {
	ok, err := s.cache.Set(ctx, key, value, ttl)
	if err != nil {
		return err
	}

	if !ok {
		return apierrors.Server(msgServerError, fmt.Errorf("%s: cache set %q refused", op, key))
	}

	return nil
}

// decodeData разбирает data апстрима в dst.
func decodeData(op, rawURL string, data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return apierrors.Server(msgBadUpstream, fmt.Errorf("%s: %s: empty data", op, rawURL))
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return apierrors.Server(msgBadUpstream, fmt.Errorf("%s: %s: %w", op, rawURL, err))
	}

	return nil
}

// IsLogin сообщает, отмечен ли пользователь в сети.
// Пустой userID (аноним) и отсутствующая сессия — false.
func IsLogin(ctx context.Context, c cache.Cache, userID string) (bool, error) {
	const op = "service.IsLogin"

	if userID == "" {
		return false, nil
	}

	item, err := c.Get(ctx, userID)
	if err != nil {
		return false, apierrors.Wrap(op, err)
	}

	if item == nil || !item.IsJSON {
		return false, nil
	}

	sess, err := models.DecodeSession(item.Raw)
	if err != nil {
		return false, nil
	}

	return sess.Online(), nil
}
