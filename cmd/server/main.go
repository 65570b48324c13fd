package main

import (
	"fmt"
	"log"

	"fleetcar/internal/config"
	"fleetcar/internal/database"
	"fleetcar/internal/logger"
	"fleetcar/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zlog.Sync()

	if err := database.Init(cfg.DBDriver, cfg.DBDSN); err != nil {
		zlog.Fatal("database init failed", zap.Error(err))
	}
	database.SeedAdmin(cfg.AdminUsername, cfg.AdminPassword)

	r, err := server.NewRouter(cfg, zlog)
	if err != nil {
		zlog.Fatal("router init failed", zap.Error(err))
	}

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	zlog.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
