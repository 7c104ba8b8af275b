package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/AshhadS/gymapp/internal/models"
)

type TrainerProfileRepository struct {
	db DBTX
}

func NewTrainerProfileRepository(db DBTX) *TrainerProfileRepository {
	return &TrainerProfileRepository{db: db}
}

type TrainerProfileInput struct {
	Bio               string
	Specializations   []string
	Certifications    []string
	Methodology       *string
	Availability      *string
	ProfilePictureURL *string
}

// Upsert writes the trainer profile for userID atomically. Required fields
// always overwrite; optional fields left nil preserve whatever is stored,
// matching partial-update semantics for repeated submissions.
func (r *TrainerProfileRepository) Upsert(ctx context.Context, userID string, in TrainerProfileInput) (*models.TrainerProfile, error) {
	if in.Certifications == nil {
		in.Certifications = []string{}
	}
	query := `
		INSERT INTO trainer_profiles
			(id, user_id, bio, specializations, certifications, methodology, availability, profile_picture_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE
		SET bio = EXCLUDED.bio,
			specializations = EXCLUDED.specializations,
			certifications = EXCLUDED.certifications,
			methodology = COALESCE(EXCLUDED.methodology, trainer_profiles.methodology),
			availability = COALESCE(EXCLUDED.availability, trainer_profiles.availability),
			profile_picture_url = COALESCE(EXCLUDED.profile_picture_url, trainer_profiles.profile_picture_url),
			updated_at = NOW()
		RETURNING id, user_id, bio, specializations, certifications, methodology,
				  availability, profile_picture_url, created_at, updated_at
	`
	var profile models.TrainerProfile
	err := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		userID,
		in.Bio,
		in.Specializations,
		in.Certifications,
		in.Methodology,
		in.Availability,
		in.ProfilePictureURL,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Bio,
		&profile.Specializations,
		&profile.Certifications,
		&profile.Methodology,
		&profile.Availability,
		&profile.ProfilePictureURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdatePictureURL stores the uploaded picture URL. It never creates a
// profile; pgx.ErrNoRows signals that none exists yet.
func (r *TrainerProfileRepository) UpdatePictureURL(ctx context.Context, userID, pictureURL string) (*models.TrainerProfile, error) {
	query := `
		UPDATE trainer_profiles
		SET profile_picture_url = $1,
			updated_at = NOW()
		WHERE user_id = $2
		RETURNING id, user_id, bio, specializations, certifications, methodology,
				  availability, profile_picture_url, created_at, updated_at
	`
	var profile models.TrainerProfile
	err := r.db.QueryRow(ctx, query, pictureURL, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Bio,
		&profile.Specializations,
		&profile.Certifications,
		&profile.Methodology,
		&profile.Availability,
		&profile.ProfilePictureURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *TrainerProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.TrainerProfile, error) {
	query := `
		SELECT id, user_id, bio, specializations, certifications, methodology,
			   availability, profile_picture_url, created_at, updated_at
		FROM trainer_profiles
		WHERE user_id = $1
	`
	var profile models.TrainerProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Bio,
		&profile.Specializations,
		&profile.Certifications,
		&profile.Methodology,
		&profile.Availability,
		&profile.ProfilePictureURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
