package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/emberduel/ember-server-go/internal/config"
	"github.com/emberduel/ember-server-go/internal/content"
	"github.com/emberduel/ember-server-go/internal/repository"
	"github.com/emberduel/ember-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting ember server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	db, err := repository.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	counterRepo := repository.NewCounterRepository(db, logger)
	deckRepo := repository.NewDeckRepository(db, logger)

	loader := content.NewLoader(logger)
	catalog, err := loader.LoadDir(cfg.Content.CardsDir)
	if err != nil {
		logger.Fatal("failed to load card content", zap.Error(err))
	}

	arena := server.NewArena(catalog, counterRepo, deckRepo, logger)

	syncSrv := server.NewSyncServer(cfg.Server.SyncAddress, logger)
	arena.SetSync(syncSrv)
	go func() {
		if serveErr := syncSrv.Run(ctx); serveErr != nil {
			logger.Error("sync server error", zap.Error(serveErr))
		}
	}()

	logger.Info("ember server initialized",
		zap.String("sync_address", cfg.Server.SyncAddress),
		zap.Int("cards", catalog.Size()),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := syncSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("sync server shutdown", zap.Error(err))
	}

	logger.Info("ember server stopped")
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
