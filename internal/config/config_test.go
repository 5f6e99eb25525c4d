package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FromFile_WithEnvOverlay(t *testing.T) {
	p := writeYAML(t, `
env: stage
http:
  port: "9090"
auth:
  short_term_ttl: 5m
  response_filter: [password]
regions:
  current: jp
  auth:
    default: http://auth.default
    jp: http://auth.jp
  user:
    default: http://user.default
  search:
    default: http://search.default
`)
	t.Setenv("REQUEST_INTERVAL_TTL", "90s")

	cfg, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, EnvStage, cfg.Env)
	require.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	require.Equal(t, 5*time.Minute, cfg.Auth.ShortTermTTL)
	require.Equal(t, 90*time.Second, cfg.Auth.RequestIntervalTTL)
	require.Equal(t, 720*time.Hour, cfg.Auth.LongTermTTL)
	require.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	require.Equal(t, []string{"password"}, cfg.Auth.ResponseFilter)
	require.Equal(t, "jp", cfg.Regions.Current)
	require.Equal(t, "http://auth.jp", cfg.Regions.Auth["jp"])
	require.True(t, cfg.EchoesToken())
}

func TestLoad_EnvOnly_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ENV", "prod")
	t.Setenv("REGION_HOSTS_AUTH", "default:http://a.default,us:http://a.us")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, EnvProd, cfg.Env)
	require.False(t, cfg.EchoesToken())
	require.Equal(t, 168*time.Hour, cfg.Auth.AccessTokenTTL)
	require.Equal(t, 30*time.Second, cfg.Auth.SentinelTTL)
	require.Equal(t, []string{"password", "refresh_token_hash"}, cfg.Auth.ResponseFilter)
	require.Equal(t, map[string]string{"default": "http://a.default", "us": "http://a.us"}, cfg.Regions.Auth)
	require.Equal(t, "http://localhost:8008/user/api/v1", cfg.Regions.User["default"])
	require.Equal(t, "x-career", cfg.S3.Bucket)
	require.Empty(t, cfg.S3.Endpoint)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	p := writeYAML(t, "env: dev\n")
	t.Setenv("CONFIG_PATH", p)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_RequiresDefaultRegionHost(t *testing.T) {
	p := writeYAML(t, `
regions:
  auth:
    jp: http://auth.jp
`)

	_, err := Load(p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "regions.auth")
}

func TestMustLoad_Panics(t *testing.T) {
	require.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "nope.yaml")) })
}

func TestEchoesToken(t *testing.T) {
	for env, want := range map[string]bool{
		EnvLocal: true, EnvDev: true, EnvTest: true, EnvStage: true,
		EnvProd: false, "production": false, "": false,
	} {
		require.Equal(t, want, Config{Env: env}.EchoesToken(), env)
	}
}
