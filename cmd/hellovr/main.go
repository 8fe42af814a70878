// Package main is the entry point for the hellovr render model demo.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/hellovr/internal/app"
	"github.com/Faultbox/hellovr/internal/config"
	"github.com/Faultbox/hellovr/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.Console); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("=== hellovr ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to initialize", zap.Error(err))
		return 1
	}

	runErr := a.Run()
	if err := a.Close(); err != nil {
		logger.Warn("shutdown reported errors", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("main loop error", zap.Error(runErr))
		return 1
	}

	logger.Info("exited normally")
	return 0
}
