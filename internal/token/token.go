// token выпускает и проверяет токены шлюза:
//   - access — JWT (HMAC) с белым списком полей сессии и exp,
//     ключ подписи выводится из user_id через SecretDeriver;
//   - refresh — непрозрачная строка "<20 символов><exp в unix-секундах>", без подписи.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
)

const (
	// ClaimUserID — обязательное поле payload.
	ClaimUserID = "user_id"
	ClaimRegion = "region"

	refreshPrefixLen = 20
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported jwt algorithm")
	ErrMissingUserID        = errors.New("user_id is required")
	ErrMissingField         = errors.New("claim field is missing")
)

// Config — параметры выпуска токенов.
type Config struct {
	// Algorithm — HS256/HS384/HS512.
	Algorithm       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// ShortTermTTL задаёт допуск проверки refresh-токена: ±ShortTermTTL/2.
	ShortTermTTL time.Duration
}

// Claims — проверенные поля access-токена.
type Claims struct {
	UserID    string
	Region    string
	ExpiresAt time.Time
	Fields    map[string]string
}

// Issuer выпускает и проверяет токены. Безопасен для конкурентного использования.
type Issuer struct {
	cfg     Config
	method  *jwt.SigningMethodHMAC
	deriver SecretDeriver
	now     func() time.Time
}

// Option — функциональная опция Issuer.
type Option func(*Issuer)

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// New создаёт Issuer. Допускаются только HMAC-алгоритмы; пустой — HS256.
func New(cfg Config, deriver SecretDeriver, opts ...Option) (*Issuer, error) {
	const op = "token.New"

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}

	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedAlgorithm, alg)
	}

	if deriver == nil {
		deriver = ReversedIDDeriver{Prefix: "secret"}
	}

	i := &Issuer{cfg: cfg, method: method, deriver: deriver, now: time.Now}
	for _, o := range opts {
		o(i)
	}

	return i, nil
}

// IssueAccessToken подписывает fields из payload (значения приводятся к строкам) и exp.
func (i *Issuer) IssueAccessToken(ctx context.Context, payload map[string]any, fields []string) (string, error) {
	const op = "token.IssueAccessToken"

	lg := log.From(ctx)

	uid, ok := payload[ClaimUserID]
	if !ok || uid == nil {
		lg.Error("access_token_issue_failed",
			slog.String("op", op),
			slog.String("err", ErrMissingUserID.Error()),
		)
		return "", apierrors.Server("internal server error", fmt.Errorf("%s: %w", op, ErrMissingUserID))
	}

	claims := jwt.MapClaims{}
	for _, f := range fields {
		v, ok := payload[f]
		if !ok {
			return "", apierrors.Server("internal server error", fmt.Errorf("%s: %w: %q", op, ErrMissingField, f))
		}
		claims[f] = Stringify(v)
	}
	claims["exp"] = i.now().Add(i.cfg.AccessTokenTTL).Unix()

	secret, err := i.deriver.Derive(canonicalSubject(Stringify(uid)))
	if err != nil {
		return "", apierrors.Server("internal server error", fmt.Errorf("%s: %w", op, err))
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(secret)
	if err != nil {
		lg.Error("access_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", apierrors.Server("internal server error", fmt.Errorf("%s: %w", op, err))
	}

	return signed, nil
}

// VerifyAccessToken проверяет подпись ключом субъекта subjectID, алгоритм,
// совпадение user_id и срок действия. Любой отказ — Unauthorized.
func (i *Issuer) VerifyAccessToken(tokenStr, subjectID string) (*Claims, error) {
	const op = "token.VerifyAccessToken"

	unauthorized := func(msg string, cause error) error {
		e := apierrors.Unauthorized(msg)
		e.Err = fmt.Errorf("%s: %w", op, cause)
		return e
	}

	secret, err := i.deriver.Derive(canonicalSubject(subjectID))
	if err != nil {
		return nil, unauthorized("invalid token", err)
	}

	tok, err := jwt.Parse(tokenStr,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, unauthorized("token expired", err)
		}

		return nil, unauthorized("invalid token", err)
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return nil, unauthorized("invalid token", errors.New("unexpected claims"))
	}

	uid, _ := mc[ClaimUserID].(string)
	if !sameSubject(uid, subjectID) {
		return nil, unauthorized("invalid user", fmt.Errorf("subject mismatch: %q != %q", uid, subjectID))
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil || !exp.Time.After(i.now()) {
		return nil, unauthorized("token expired", errors.New("exp elapsed"))
	}

	out := &Claims{
		UserID:    uid,
		ExpiresAt: exp.Time,
		Fields:    make(map[string]string, len(mc)),
	}
	for k, v := range mc {
		if s, ok := v.(string); ok {
			out.Fields[k] = s
		}
	}
	out.Region = out.Fields[ClaimRegion]

	return out, nil
}

// IssueRefreshToken возвращает "<20 случайных hex-символов><exp>".
func (i *Issuer) IssueRefreshToken() string {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:refreshPrefixLen]
	exp := i.now().Add(i.cfg.RefreshTokenTTL).Unix()

	return prefix + strconv.FormatInt(exp, 10)
}

// VerifyRefreshToken принимает токен, если его exp лежит в окне
// [now - S/2, now + RefreshTokenTTL + S/2], где S = ShortTermTTL.
// Нижняя граница даёт допуск на расхождение часов после номинального истечения.
func (i *Issuer) VerifyRefreshToken(tok string) bool {
	if len(tok) <= refreshPrefixLen {
		return false
	}

	digits := tok[refreshPrefixLen:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}

	exp, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return false
	}

	now := i.now().Unix()
	half := int64(i.cfg.ShortTermTTL/time.Second) / 2
	upper := now + int64(i.cfg.RefreshTokenTTL/time.Second) + half

	return exp >= now-half && exp <= upper
}

// Stringify приводит значение payload к строке так, как оно попадёт в claim.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// canonicalSubject приводит числовой id к десятичной записи без ведущих нулей,
// чтобы "007" и "7" давали один ключ подписи.
func canonicalSubject(id string) string {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}

	return id
}

// sameSubject сравнивает идентификаторы как целые числа, если оба числовые,
// иначе — как строки.
func sameSubject(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return ai == bi
	}

	return a == b
}
