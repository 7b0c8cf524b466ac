package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voxgate/recordings-gateway/auth"
	"github.com/voxgate/recordings-gateway/catalog"
	"github.com/voxgate/recordings-gateway/gateway"
	"github.com/voxgate/recordings-gateway/guard"
	"github.com/voxgate/recordings-gateway/internal/config"
	s3store "github.com/voxgate/recordings-gateway/objectstore/s3"
	"github.com/voxgate/recordings-gateway/server"
	"github.com/voxgate/recordings-gateway/tenants/configrepo"
	"github.com/voxgate/recordings-gateway/token"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.New()
	logger := newLogger(cfg)
	displayAppName(cfg.GetAppName())

	secret := cfg.GetTokenSecret()
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.GetStoreBucket() == "" {
		return errors.New("S3_BUCKET_NAME is required")
	}

	tenantRepo, err := configrepo.Load(cfg.GetTenantsFile())
	if err != nil {
		return err
	}
	logger.Info().Int("tenants", len(tenantRepo.List())).Str("file", cfg.GetTenantsFile()).Msg("loaded tenant set")

	ctx := context.Background()
	store, err := s3store.New(ctx, s3store.Config{
		Region:          cfg.GetStoreRegion(),
		Bucket:          cfg.GetStoreBucket(),
		Endpoint:        cfg.GetStoreEndpoint(),
		AccessKeyID:     cfg.GetStoreAccessKeyID(),
		SecretAccessKey: cfg.GetStoreSecretAccessKey(),
	})
	if err != nil {
		return err
	}

	// Connectivity probe. Startup continues either way; /healthz keeps
	// reporting the live state.
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := store.HealthCheck(probeCtx); err != nil {
		logger.Warn().Err(err).Msg("object store unreachable at startup")
	} else {
		logger.Info().Str("bucket", cfg.GetStoreBucket()).Msg("object store connected")
	}
	cancel()

	signer := token.NewHMACSigner(secret)
	revocations := token.NewInMemoryRevokedTokenCache()
	issuer := token.NewIssuer(signer, cfg.GetTokenIssuer(), token.WithTTL(cfg.GetTokenTTL()))
	inspector := token.NewInspector(signer, revocations)

	authService, err := auth.NewService(tenantRepo, issuer, inspector, revocations, logger)
	if err != nil {
		return err
	}

	accessGuard := guard.New(logger)

	catalogService, err := catalog.NewService(store, accessGuard, logger,
		catalog.WithPageLimits(cfg.GetMaxListPages(), cfg.GetPageTimeout()))
	if err != nil {
		return err
	}

	gatewayService, err := gateway.NewService(store, accessGuard, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.Services{
		Auth:    authService,
		Catalog: catalogService,
		Gateway: gatewayService,
		Store:   store,
	}, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: srv}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.GetEnv() == "DEV" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func listenAndServe(httpServer *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("listen and serve")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func displayAppName(appName string) {
	figure.NewFigure(appName, "", true).Print()
}
