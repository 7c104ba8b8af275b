package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/AshhadS/gymapp/internal/models"
	"github.com/AshhadS/gymapp/internal/repository"
	"github.com/AshhadS/gymapp/internal/services"
)

const maxPictureSizeBytes = 5 * 1024 * 1024

type clientProfileStore interface {
	Upsert(ctx context.Context, userID string, in repository.ClientProfileInput) (*models.ClientProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.ClientProfile, error)
}

type trainerProfileStore interface {
	Upsert(ctx context.Context, userID string, in repository.TrainerProfileInput) (*models.TrainerProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.TrainerProfile, error)
	UpdatePictureURL(ctx context.Context, userID, pictureURL string) (*models.TrainerProfile, error)
}

type ProfileHandler struct {
	userRepo           userStore
	clientProfileRepo  clientProfileStore
	trainerProfileRepo trainerProfileStore
	storageService     services.StorageService
	log                *logrus.Logger
}

func NewProfileHandler(
	userRepo userStore,
	clientProfileRepo clientProfileStore,
	trainerProfileRepo trainerProfileStore,
	storageService services.StorageService,
	log *logrus.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		userRepo:           userRepo,
		clientProfileRepo:  clientProfileRepo,
		trainerProfileRepo: trainerProfileRepo,
		storageService:     storageService,
		log:                log,
	}
}

type clientProfileRequest struct {
	FullName string  `json:"fullName" validate:"required"`
	Age      int     `json:"age" validate:"required,gt=0"`
	Gender   string  `json:"gender" validate:"required"`
	Weight   float64 `json:"weight" validate:"required,gt=0"`
	Height   float64 `json:"height" validate:"required,gt=0"`
}

type trainerProfileRequest struct {
	Bio               string   `json:"bio" validate:"required"`
	Specializations   []string `json:"specializations" validate:"required,min=1,dive,required"`
	Certifications    []string `json:"certifications" validate:"omitempty,dive,required"`
	Methodology       *string  `json:"methodology"`
	Availability      *string  `json:"availability"`
	ProfilePictureURL *string  `json:"profilePictureUrl"`
}

// Shapes for GET /profiles/me. The outer User field takes precedence over
// the promoted "user" id tag, turning the stored foreign key into the
// embedded owner object.
type clientProfileWithUser struct {
	models.ClientProfile
	User models.PublicUser `json:"user"`
}

type trainerProfileWithUser struct {
	models.TrainerProfile
	User models.PublicUser `json:"user"`
}

func (h *ProfileHandler) UpsertClientProfile(c *fiber.Ctx) error {
	if !h.kindMatches(c, models.RoleClient) {
		return respondErrors(c, fiber.StatusForbidden, "Access denied. Only clients can create client profiles.")
	}
	userID, _ := c.Locals("user_id").(string)

	var req clientProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErrors(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondErrors(c, fiber.StatusBadRequest, validationMessages(err)...)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	profile, err := h.clientProfileRepo.Upsert(ctx, userID, repository.ClientProfileInput{
		FullName: req.FullName,
		Age:      req.Age,
		Gender:   req.Gender,
		Weight:   req.Weight,
		Height:   req.Height,
	})
	if err != nil {
		return respondStorageFailure(c, h.log, "profiles.client.upsert", err)
	}

	return c.JSON(profile)
}

func (h *ProfileHandler) UpsertTrainerProfile(c *fiber.Ctx) error {
	if !h.kindMatches(c, models.RoleTrainer) {
		return respondErrors(c, fiber.StatusForbidden, "Access denied. Only trainers can create trainer profiles.")
	}
	userID, _ := c.Locals("user_id").(string)

	var req trainerProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErrors(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return respondErrors(c, fiber.StatusBadRequest, validationMessages(err)...)
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	profile, err := h.trainerProfileRepo.Upsert(ctx, userID, repository.TrainerProfileInput{
		Bio:               req.Bio,
		Specializations:   req.Specializations,
		Certifications:    req.Certifications,
		Methodology:       req.Methodology,
		Availability:      req.Availability,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		return respondStorageFailure(c, h.log, "profiles.trainer.upsert", err)
	}

	return c.JSON(profile)
}

func (h *ProfileHandler) MyProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	role, roleOK := c.Locals("role").(string)
	if !ok || !roleOK || userID == "" {
		return respondErrors(c, fiber.StatusUnauthorized, "Token is not valid")
	}

	ctx, cancel := context.WithTimeout(c.Context(), dbTimeout)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondErrors(c, fiber.StatusUnauthorized, "Token is not valid")
		}
		return respondStorageFailure(c, h.log, "profiles.me.user", err)
	}

	switch role {
	case models.RoleClient:
		profile, err := h.clientProfileRepo.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return respondErrors(c, fiber.StatusNotFound, "Profile not found for this user")
			}
			return respondStorageFailure(c, h.log, "profiles.me.client", err)
		}
		return c.JSON(clientProfileWithUser{ClientProfile: *profile, User: user.Public()})
	case models.RoleTrainer:
		profile, err := h.trainerProfileRepo.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return respondErrors(c, fiber.StatusNotFound, "Profile not found for this user")
			}
			return respondStorageFailure(c, h.log, "profiles.me.trainer", err)
		}
		return c.JSON(trainerProfileWithUser{TrainerProfile: *profile, User: user.Public()})
	default:
		return respondErrors(c, fiber.StatusBadRequest, "Invalid user role")
	}
}

func (h *ProfileHandler) UploadTrainerPicture(c *fiber.Ctx) error {
	if !h.kindMatches(c, models.RoleTrainer) {
		return respondErrors(c, fiber.StatusForbidden, "Access denied. Only trainers can update trainer pictures.")
	}
	userID, _ := c.Locals("user_id").(string)

	if h.storageService == nil {
		return respondErrors(c, fiber.StatusServiceUnavailable, "Storage service is not configured")
	}

	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return respondErrors(c, fiber.StatusBadRequest, "picture file is required")
	}
	if fileHeader.Size <= 0 {
		return respondErrors(c, fiber.StatusBadRequest, "picture file is empty")
	}
	if fileHeader.Size > maxPictureSizeBytes {
		return respondErrors(c, fiber.StatusBadRequest, "picture file exceeds 5MB limit")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return respondErrors(c, fiber.StatusBadRequest, "picture must be a jpg, jpeg, png, or webp file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondErrors(c, fiber.StatusInternalServerError, "Server Error")
	}
	defer file.Close()

	lookupCtx, cancelLookup := context.WithTimeout(c.Context(), dbTimeout)
	current, err := h.trainerProfileRepo.GetByUserID(lookupCtx, userID)
	cancelLookup()
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return respondErrors(c, fiber.StatusNotFound, "Profile not found for this user")
		}
		return respondStorageFailure(c, h.log, "profiles.picture.lookup", err)
	}

	filename := fmt.Sprintf("%s-%d%s", userID, time.Now().UnixNano(), ext)
	pictureURL, err := h.storageService.UploadFile(c.Context(), file, filename, "trainers/pictures")
	if err != nil {
		return respondStorageFailure(c, h.log, "profiles.picture.upload", err)
	}

	// The upload can outlive a deadline taken before it; the row write
	// gets its own.
	writeCtx, cancelWrite := context.WithTimeout(c.Context(), dbTimeout)
	defer cancelWrite()
	profile, err := h.trainerProfileRepo.UpdatePictureURL(writeCtx, userID, pictureURL)
	if err != nil {
		return respondStorageFailure(c, h.log, "profiles.picture.update", err)
	}

	// Remove the previous object only once the row points at the new one,
	// so a failed write never leaves the stored URL dangling.
	if current.ProfilePictureURL != nil && *current.ProfilePictureURL != "" && *current.ProfilePictureURL != pictureURL {
		_ = h.storageService.DeleteFile(c.Context(), *current.ProfilePictureURL)
	}

	return c.JSON(fiber.Map{
		"profilePictureUrl": pictureURL,
		"profile":           profile,
	})
}

// kindMatches is a defensive re-check of what the route-level role gate
// already enforced; seeing it fail means the middleware chain is broken.
func (h *ProfileHandler) kindMatches(c *fiber.Ctx, kind string) bool {
	role, ok := c.Locals("role").(string)
	if ok && role == kind {
		return true
	}
	if h.log != nil {
		h.log.WithFields(logrus.Fields{"role": role, "kind": kind, "path": c.Path()}).
			Error("role/profile-kind mismatch reached handler")
	}
	return false
}
