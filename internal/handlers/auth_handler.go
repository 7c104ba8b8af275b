package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/AshhadS/gymapp/internal/models"
	"github.com/AshhadS/gymapp/pkg/utils"
)

type userStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type AuthHandler struct {
	userRepo  userStore
	jwtSecret string
	tokenTTL  time.Duration
	log       *logrus.Logger
}

func NewAuthHandler(userRepo userStore, jwtSecret string, tokenTTL time.Duration, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=client trainer"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErrors(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		return respondErrors(c, fiber.StatusBadRequest, validationMessages(err)...)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return respondErrors(c, fiber.StatusInternalServerError, "Server Error")
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	// The role stored here is the only role the credential will ever
	// carry; later requests cannot upgrade it.
	user := &models.User{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	if err := h.userRepo.CreateUser(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return respondErrors(c, fiber.StatusBadRequest, "User already exists")
		}
		return respondStorageFailure(c, h.log, "auth.register", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, h.jwtSecret, h.tokenTTL)
	if err != nil {
		return respondErrors(c, fiber.StatusInternalServerError, "Server Error")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.Public(),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErrors(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		return respondErrors(c, fiber.StatusBadRequest, validationMessages(err)...)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	// Unknown user and wrong password answer identically so usernames
	// cannot be enumerated through the login form.
	user, err := h.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondErrors(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return respondStorageFailure(c, h.log, "auth.login", err)
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return respondErrors(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, h.jwtSecret, h.tokenTTL)
	if err != nil {
		return respondErrors(c, fiber.StatusInternalServerError, "Server Error")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user.Public(),
	})
}

// Me re-fetches the user behind a valid credential, so deleted accounts
// fall off even before their tokens expire.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return respondErrors(c, fiber.StatusUnauthorized, "Token is not valid")
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondErrors(c, fiber.StatusUnauthorized, "Token is not valid")
		}
		return respondStorageFailure(c, h.log, "auth.me", err)
	}

	return c.JSON(user.Public())
}
