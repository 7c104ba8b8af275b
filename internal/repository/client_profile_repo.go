package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/AshhadS/gymapp/internal/models"
)

type ClientProfileRepository struct {
	db DBTX
}

func NewClientProfileRepository(db DBTX) *ClientProfileRepository {
	return &ClientProfileRepository{db: db}
}

type ClientProfileInput struct {
	FullName string
	Age      int
	Gender   string
	Weight   float64
	Height   float64
}

// Upsert writes the profile for userID in a single statement. The unique
// index on user_id makes concurrent first-time writes converge on one row:
// the row identity and created_at come from whichever insert landed first,
// the field values from whichever write landed last.
func (r *ClientProfileRepository) Upsert(ctx context.Context, userID string, in ClientProfileInput) (*models.ClientProfile, error) {
	query := `
		INSERT INTO client_profiles (id, user_id, full_name, age, gender, weight, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			weight = EXCLUDED.weight,
			height = EXCLUDED.height,
			updated_at = NOW()
		RETURNING id, user_id, full_name, age, gender, weight, height, created_at, updated_at
	`
	var profile models.ClientProfile
	err := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		userID,
		in.FullName,
		in.Age,
		in.Gender,
		in.Weight,
		in.Height,
	).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Age,
		&profile.Gender,
		&profile.Weight,
		&profile.Height,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ClientProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.ClientProfile, error) {
	query := `
		SELECT id, user_id, full_name, age, gender, weight, height, created_at, updated_at
		FROM client_profiles
		WHERE user_id = $1
	`
	var profile models.ClientProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Age,
		&profile.Gender,
		&profile.Weight,
		&profile.Height,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
