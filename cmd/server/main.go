package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/youruser/backdrop/internal/api"
	"github.com/youruser/backdrop/internal/catalog"
	"github.com/youruser/backdrop/internal/config"
	"github.com/youruser/backdrop/internal/export"
	imagepkg "github.com/youruser/backdrop/internal/image"
	"github.com/youruser/backdrop/internal/logging"
	"github.com/youruser/backdrop/internal/session"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("logger config failed, fallback to zap production logger", zap.Error(err))
	}
	defer logger.Sync()

	defaults := catalog.BuiltinDefaults()
	defaults.Badge.TextWidth = cfg.Badge.TextWidth
	defaults.Badge.LineHeight = cfg.Badge.LineHeight
	cat, fromFile, err := catalog.Load(cfg.Catalog, defaults)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.String("path", cfg.Catalog), zap.Error(err))
	}
	logger.Info("catalog loaded", zap.Int("backgrounds", cat.Len()), zap.Bool("from_file", fromFile))

	fonts, err := imagepkg.NewFonts()
	if err != nil {
		logger.Fatal("failed to load fallback font", zap.Error(err))
	}
	for family, path := range cfg.Fonts {
		if err := fonts.RegisterFile(family, path); err != nil {
			logger.Fatal("failed to register font", zap.String("family", family), zap.Error(err))
		}
	}

	client := &http.Client{Timeout: cfg.Assets.FetchTimeout}
	loader := imagepkg.NewCache(imagepkg.NewSourceLoader(cfg.Assets.Root, client), logger.Named("assets"))

	store, closeStore, err := newExportStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open export store", zap.String("kind", cfg.Exports.Kind), zap.Error(err))
	}
	defer closeStore()

	sessions := session.NewStore(session.Options{
		Loader:        loader,
		BadgeSource:   cfg.Assets.BadgeImage,
		Logger:        logger.Named("session"),
		IdleTTL:       cfg.Sessions.IdleTTL,
		FrameInterval: cfg.Layout.FrameInterval,
		MaxWidth:      cfg.Sessions.MaxWidth,
		MaxHeight:     cfg.Sessions.MaxHeight,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx)

	server := api.NewServer(api.Deps{
		Catalog:       cat,
		Sessions:      sessions,
		Exports:       export.NewEngine(loader, fonts, cfg.Assets.BadgeImage, logger.Named("export")),
		Store:         store,
		Loader:        loader,
		Fonts:         fonts,
		Logger:        logger,
		PublicURL:     cfg.Exports.PublicURL,
		DefaultWidth:  cfg.Sessions.DefaultWidth,
		DefaultHeight: cfg.Sessions.DefaultHeight,
		MaxWidth:      cfg.Sessions.MaxWidth,
		MaxHeight:     cfg.Sessions.MaxHeight,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: api.NewRouter(server, cfg.IsDev(), cfg.AllowedOrigins),
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	cancel()
	logger.Info("server exited")
}

// newExportStore opens the configured export backend. A nil store disables
// stored exports.
func newExportStore(cfg *config.AppConfig, logger *zap.Logger) (export.Store, func(), error) {
	noop := func() {}
	switch cfg.Exports.Kind {
	case config.ExportsLocal:
		s, err := export.NewLocalStore(cfg.Exports.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case config.ExportsRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s, err := export.NewRedisStore(ctx, cfg.Exports.RedisURL, cfg.Exports.TTL)
		if err != nil {
			return nil, noop, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warn("redis close failed", zap.Error(err))
			}
		}, nil
	case config.ExportsS3:
		s3cfg := cfg.Exports.S3
		s, err := export.NewS3Store(export.S3Options{
			Bucket:          s3cfg.Bucket,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
			PathStyle:       s3cfg.PathStyle,
			Prefix:          s3cfg.Prefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	}
	logger.Info("export storage disabled")
	return nil, noop, nil
}
