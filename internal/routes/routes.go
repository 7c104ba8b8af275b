package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/AshhadS/gymapp/internal/config"
	"github.com/AshhadS/gymapp/internal/handlers"
	"github.com/AshhadS/gymapp/internal/middleware"
	"github.com/AshhadS/gymapp/internal/models"
	"github.com/AshhadS/gymapp/internal/repository"
	"github.com/AshhadS/gymapp/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, log *logrus.Logger) {
	userRepo := repository.NewUserRepository(db)
	clientProfileRepo := repository.NewClientProfileRepository(db)
	trainerProfileRepo := repository.NewTrainerProfileRepository(db)

	var storageService services.StorageService
	if cfg.StorageURL != "" && cfg.StorageBucket != "" && cfg.StorageServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.StorageURL, cfg.StorageBucket, cfg.StorageServiceKey)
	}

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)
	profileHandler := handlers.NewProfileHandler(userRepo, clientProfileRepo, trainerProfileRepo, storageService, log)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// Verification always runs before the role gate; the gate before any
	// profile write.
	profiles := api.Group("/profiles", middleware.AuthRequired(cfg.JWTSecret))
	profiles.Post("/client", middleware.RequireRole(models.RoleClient), profileHandler.UpsertClientProfile)
	profiles.Post("/trainer", middleware.RequireRole(models.RoleTrainer), profileHandler.UpsertTrainerProfile)
	profiles.Post("/trainer/picture", middleware.RequireRole(models.RoleTrainer), profileHandler.UploadTrainerPicture)
	profiles.Get("/me", profileHandler.MyProfile)

	if cfg.DocsEnabled() {
		registerDocs(app)
	}
}
