package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ultma/ultma-server-go/internal/config"
	"github.com/ultma/ultma-server-go/internal/game"
	"github.com/ultma/ultma-server-go/internal/random"
	"github.com/ultma/ultma-server-go/internal/server"
	"github.com/ultma/ultma-server-go/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
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

	logger.Info("starting ultma server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rng, seed, err := random.NewRand(cfg.Game.Seed)
	if err != nil {
		logger.Fatal("failed to seed random source", zap.Error(err))
	}
	logger.Info("random source ready", zap.Int64("seed", seed))

	matchStore, err := store.Open(ctx, store.Options{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		DSN:    cfg.Store.DSN,
	}, logger)
	if err != nil {
		logger.Fatal("failed to open match store", zap.Error(err))
	}
	defer matchStore.Close()

	svc := game.NewMatchService(matchStore, rng, logger, game.Options{
		DiscoveryPotionReward: cfg.Game.DiscoveryPotionReward,
		AutoStartArena:        cfg.Game.AutoStartArena,
		RequireGlyphsForArena: cfg.Game.RequireGlyphsForArena,
		JournalSize:           cfg.Game.JournalSize,
	})

	hub := server.NewHub(svc, logger)
	go hub.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTP.Address,
		Handler: server.NewRouter(svc, hub, logger),
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.HTTP.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	grpcServer := server.NewGRPCServer(svc, logger, cfg.Server.GRPC.MaxConcurrentStreams)
	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}
	go func() {
		logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
		if serveErr := grpcServer.Serve(lis); serveErr != nil {
			logger.Error("gRPC server error", zap.Error(serveErr))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	cancel()
	grpcServer.GracefulStop()

	logger.Info("ultma server stopped")
}

// initLogger initializes the zap logger based on configuration
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
