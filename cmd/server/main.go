package main

import (
	"franchise-backend/internal/app"
	"franchise-backend/internal/config"
	"franchise-backend/internal/database"
	"franchise-backend/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.Init(cfg)
	defer log.Sync()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	srv := app.New(cfg, db, log)

	log.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := srv.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
