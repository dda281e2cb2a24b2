package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Evgen-Mutagen/paymentref/internal/app"
	"github.com/Evgen-Mutagen/paymentref/internal/service"
	"github.com/Evgen-Mutagen/paymentref/internal/util/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := app.NewConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.IssueTokenFor != "" {
		issueToken(cfg)
		return
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger.Log)
	if err != nil {
		logger.Log.Fatal("Application initialization failed", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		logger.Log.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Log.Info("Server stopped")
}

func issueToken(cfg *app.Config) {
	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT secret is required to issue a token (use -jwt-secret or JWT_SECRET_KEY)")
	}

	token, err := service.IssueToken(cfg.JWTSecretKey, cfg.IssueTokenFor, 30*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
