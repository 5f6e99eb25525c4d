// gateway — BFF-шлюз auth-флоу: REST для клиентов, Redis для состояния
// флоу, auth/user-апстримы по регионам.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	rediscache "github.com/pribylovaa/career-bff/internal/cache/redis"
	"github.com/pribylovaa/career-bff/internal/config"
	"github.com/pribylovaa/career-bff/internal/downstream"
	"github.com/pribylovaa/career-bff/internal/downstream/transport"
	gwhttp "github.com/pribylovaa/career-bff/internal/http"
	"github.com/pribylovaa/career-bff/internal/region"
	"github.com/pribylovaa/career-bff/internal/service"
	"github.com/pribylovaa/career-bff/internal/storage/minio"
	"github.com/pribylovaa/career-bff/internal/token"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("gateway_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting career-bff",
		slog.String("env", cfg.Env),
		slog.String("region", cfg.Regions.Current),
		slog.Bool("token_echo", cfg.EchoesToken()),
	)

	cache, err := rediscache.New(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	defer func() {
		if cerr := cache.Close(); cerr != nil {
			log.Warn("cache_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	issuer, err := token.New(token.Config{
		Algorithm:       cfg.Auth.JWTAlgorithm,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		ShortTermTTL:    cfg.Auth.ShortTermTTL,
	}, token.ReversedIDDeriver{Prefix: cfg.Auth.JWTSecretPrefix})
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	hosts := region.New(cfg.Regions)

	svcOpts, err := serviceOptions(ctx, cfg, hosts, log)
	if err != nil {
		return err
	}

	ds := downstream.New(downstream.Options{
		Timeout:   cfg.Timeouts.Downstream,
		UserAgent: cfg.UserAgent,
		Logger:    log,
		Metrics:   transport.NewMetrics(nil),
	})

	svc := service.New(ds, cache, issuer, cfg.Auth, svcOpts...)

	api := gwhttp.NewRouter(
		gwhttp.Deps{Auth: svc, Hosts: hosts, Tokens: issuer},
		gwhttp.Options{Logger: log, Timeout: cfg.Timeouts.Service},
	)

	return serve(ctx, cfg.HTTP.Addr(), api, log)
}

// serviceOptions подключает объектное хранилище регионов, если задан endpoint.
func serviceOptions(ctx context.Context, cfg *config.Config, hosts *region.Hosts, log *slog.Logger) ([]service.Option, error) {
	opts := []service.Option{
		service.WithTokenEcho(cfg.EchoesToken()),
		service.WithRegion(hosts.Current()),
	}

	if cfg.S3.Endpoint == "" {
		log.Info("object_storage_disabled")
		return opts, nil
	}

	regions, err := minio.New(ctx, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	log.Info("object_storage_initialized", slog.String("bucket", cfg.S3.Bucket))

	return append(opts, service.WithRegionStorage(regions)), nil
}

// serve отдаёт api и служебные ручки (/livez, /healthz, /metrics) до отмены ctx,
// затем корректно останавливает сервер.
func serve(ctx context.Context, addr string, api http.Handler, log *slog.Logger) error {
	var ready atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ready.Store(true)
	log.Info("gateway_ready", slog.String("addr", addr))

	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	}

	log.Info("gateway_stopped")
	return nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvDev, config.EnvStage:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
