package models

import "encoding/json"

// SignupResult — ответ на регистрацию и повторную отправку письма.
// Token заполняется только вне prod (автотесты).
type SignupResult struct {
	TTLSecs int    `json:"ttl_secs"`
	Token   string `json:"token,omitempty"`
}

// AuthResult — ответ на подтверждение регистрации.
type AuthResult struct {
	Auth Session `json:"auth"`
}

// LoginResult — ответ на логин. User — предзагрузка профиля, сейчас всегда пуст.
type LoginResult struct {
	Auth Session         `json:"auth"`
	User json.RawMessage `json:"user"`
}

type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// ResetEmailResult — ответ на запрос письма сброса пароля.
type ResetEmailResult struct {
	TTLSecs int    `json:"ttl_secs"`
	Token   string `json:"token,omitempty"`
}

// RegionRecord — запись о регионе регистрации в объектном хранилище.
type RegionRecord struct {
	Email   string `json:"email"`
	Region  string `json:"region"`
	Version int    `json:"version"`
}
