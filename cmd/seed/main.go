package main

import (
	"context"
	"fmt"
	"time"

	"book-inventory/internal/config"
	"book-inventory/internal/database"
	"book-inventory/internal/logger"
	"book-inventory/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, err := database.OpenBookRepository(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("Failed to open book store", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			log.Error("Failed to close book store", zap.Error(err))
		}
	}()

	inserted, err := seed(ctx, service.NewBookService(repo), catalogue())
	if err != nil {
		log.Error("Error seeding database", zap.Int("inserted", inserted), zap.Error(err))
		return
	}

	log.Info("Database seeded successfully", zap.Int("inserted", inserted))
}
