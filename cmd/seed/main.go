package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/AshhadS/gymapp/internal/config"
	"github.com/AshhadS/gymapp/internal/database"
	"github.com/AshhadS/gymapp/internal/models"
	"github.com/AshhadS/gymapp/internal/repository"
	"github.com/AshhadS/gymapp/pkg/utils"
)

// Seeds the default accounts named in the environment. Safe to re-run:
// accounts that already exist are left alone.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)

	seedAccount(ctx, userRepo, cfg.DefaultClientUsername, cfg.DefaultClientPassword, models.RoleClient)
	seedAccount(ctx, userRepo, cfg.DefaultTrainerUsername, cfg.DefaultTrainerPassword, models.RoleTrainer)
}

func seedAccount(ctx context.Context, repo *repository.UserRepository, username, password, role string) {
	if username == "" || password == "" {
		return
	}

	_, err := repo.GetByUsername(ctx, username)
	if err == nil {
		log.Printf("%s account %q already exists", role, username)
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Fatalf("Failed to look up %q: %v", username, err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password for %q: %v", username, err)
	}
	user := &models.User{Username: username, PasswordHash: hash, Role: role}
	if err := repo.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create %q: %v", username, err)
	}
	log.Printf("created %s account %q", role, username)
}
