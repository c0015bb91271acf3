package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	_ "github.com/noah-isme/sma-substitution-api/api/swagger"
	"github.com/noah-isme/sma-substitution-api/internal/app"
	"github.com/noah-isme/sma-substitution-api/pkg/config"
	"github.com/noah-isme/sma-substitution-api/pkg/logger"
)

// @title SMA Substitution API
// @version 1.0.0
// @description Plans substitute teachers for absent staff against the weekly timetable.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to start", "error", err)
	}
	if err := server.Run(ctx); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
