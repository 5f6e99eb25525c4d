// config - источник загрузки конфигурации BFF-шлюза.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvTest  = "test"
	EnvStage = "stage"
	EnvProd  = "prod"
)

type Config struct {
	Env       string        `yaml:"env" env:"ENV" env-default:"local"`
	UserAgent string        `yaml:"user_agent" env:"USER_AGENT" env-default:"career-bff"`
	HTTP      HTTPConfig    `yaml:"http"`
	Timeouts  TimeoutConfig `yaml:"timeouts"`
	Auth      AuthConfig    `yaml:"auth"`
	Redis     RedisConfig   `yaml:"redis"`
	S3        S3Config      `yaml:"s3"`
	Regions   RegionsConfig `yaml:"regions"`
}

// EchoesToken — можно ли возвращать токен подтверждения в ответе (автотесты).
// В prod и неизвестных окружениях — никогда.
func (c Config) EchoesToken() bool {
	switch c.Env {
	case EnvLocal, EnvDev, EnvTest, EnvStage:
		return true
	default:
		return false
	}
}

// TimeoutConfig — таймауты входящего запроса и исходящих вызовов.
type TimeoutConfig struct {
	Service    time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
	Downstream time.Duration `yaml:"downstream" env:"DOWNSTREAM_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — публичный REST-сервер шлюза.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// AuthConfig — токены и TTL записей auth-флоу.
type AuthConfig struct {
	JWTAlgorithm    string        `yaml:"jwt_algorithm" env:"JWT_ALGORITHM" env-default:"HS256"`
	JWTSecretPrefix string        `yaml:"jwt_secret_prefix" env:"JWT_SECRET_PREFIX" env-default:"secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"TOKEN_EXPIRE_TIME" env-default:"168h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	// ShortTermTTL — ожидающая регистрация, токен сброса пароля.
	ShortTermTTL time.Duration `yaml:"short_term_ttl" env:"SHORT_TERM_TTL" env-default:"10m"`
	// LongTermTTL — сессия пользователя.
	LongTermTTL time.Duration `yaml:"long_term_ttl" env:"LONG_TERM_TTL" env-default:"720h"`
	// RequestIntervalTTL — минимальный интервал повторной отправки письма.
	RequestIntervalTTL time.Duration `yaml:"request_interval_ttl" env:"REQUEST_INTERVAL_TTL" env-default:"60s"`
	// SentinelTTL — жизнь записи {} "подтверждение в процессе".
	SentinelTTL time.Duration `yaml:"sentinel_ttl" env:"SENTINEL_TTL" env-default:"30s"`
	// ResponseFilter — поля сессии, которые не отдаются клиенту.
	ResponseFilter []string `yaml:"response_filter" env:"RESPONSE_FILTER" env-separator:"," env-default:"password,refresh_token_hash"`
}

// RedisConfig — хранилище кэша.
type RedisConfig struct {
	URL    string `yaml:"url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"bff:"`
}

// S3Config — объектное хранилище записей о регионе пользователя.
// Пустой Endpoint отключает определение региона (используется Regions.Current).
type S3Config struct {
	Endpoint     string `yaml:"endpoint" env:"S3_ENDPOINT"`
	RootUser     string `yaml:"root_user" env:"S3_ROOT_USER"`
	RootPassword string `yaml:"root_password" env:"S3_ROOT_PASSWORD"`
	Bucket       string `yaml:"bucket" env:"XC_BUCKET" env-default:"x-career"`
}

// RegionsConfig — базовые URL апстримов по регионам; ключ "default" обязателен.
type RegionsConfig struct {
	Current string            `yaml:"current" env:"REGION" env-default:"default"`
	Auth    map[string]string `yaml:"auth" env:"REGION_HOSTS_AUTH" env-default:"default:http://localhost:8007/auth/api/v1"`
	User    map[string]string `yaml:"user" env:"REGION_HOSTS_USER" env-default:"default:http://localhost:8008/user/api/v1"`
	Search  map[string]string `yaml:"search" env:"REGION_HOSTS_SEARCH" env-default:"default:http://localhost:8009/search/api/v1"`
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	read := func(p string) (*Config, error) {
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", p, err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return validate(&cfg)
	}

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		return read(p)
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return read("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return validate(&cfg)
}

func validate(cfg *Config) (*Config, error) {
	for name, hosts := range map[string]map[string]string{
		"auth":   cfg.Regions.Auth,
		"user":   cfg.Regions.User,
		"search": cfg.Regions.Search,
	} {
		if hosts["default"] == "" {
			return nil, fmt.Errorf("regions.%s: default host is required", name)
		}
	}

	if cfg.Auth.ShortTermTTL <= 0 || cfg.Auth.LongTermTTL <= 0 {
		return nil, fmt.Errorf("auth: short_term_ttl and long_term_ttl must be positive")
	}

	return cfg, nil
}
