package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/AshhadS/gymapp/internal/models"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testDBOnce.Do(func() {
		_ = godotenv.Load()
		dbURL := os.Getenv("TEST_DB_URL")
		if dbURL == "" {
			return
		}
		testDBPool, testDBErr = pgxpool.New(context.Background(), dbURL)
	})
	if testDBErr != nil {
		t.Fatalf("connect to TEST_DB_URL: %v", testDBErr)
	}
	if testDBPool == nil {
		t.Skip("TEST_DB_URL not set; skipping database integration test")
	}
	return testDBPool
}

func createTestUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, role string) string {
	t.Helper()
	user := &models.User{
		Username:     fmt.Sprintf("it-%s", uuid.NewString()),
		PasswordHash: "test-hash",
		Role:         role,
	}
	if err := NewUserRepository(pool).CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user.ID
}

// N racing first-time upserts must leave exactly one row, and its field
// values must all come from a single writer.
func TestClientProfileConcurrentFirstUpsert(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := NewClientProfileRepository(pool)
	userID := createTestUser(t, ctx, pool, models.RoleClient)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Upsert(ctx, userID, ClientProfileInput{
				FullName: fmt.Sprintf("writer-%d", i),
				Age:      20 + i,
				Gender:   "f",
				Weight:   50 + float64(i),
				Height:   160,
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d: %v", i, err)
		}
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM client_profiles WHERE user_id = $1`, userID).Scan(&count); err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 profile row, got %d", count)
	}

	profile, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	// The surviving name and age must belong to the same writer — no
	// interleaved merge of two calls.
	var matched bool
	for i := 0; i < writers; i++ {
		if profile.FullName == fmt.Sprintf("writer-%d", i) && profile.Age == 20+i {
			matched = true
			break
		}
	}
	if !matched {
		t.Fatalf("stored fields do not match any single writer: name=%q age=%d", profile.FullName, profile.Age)
	}
}

func TestClientProfileUpsertKeepsRecordIdentity(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := NewClientProfileRepository(pool)
	userID := createTestUser(t, ctx, pool, models.RoleClient)

	first, err := repo.Upsert(ctx, userID, ClientProfileInput{FullName: "A", Age: 30, Gender: "f", Weight: 60, Height: 165})
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	second, err := repo.Upsert(ctx, userID, ClientProfileInput{FullName: "A", Age: 30, Gender: "f", Weight: 60, Height: 165})
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same record identity, got %q vs %q", first.ID, second.ID)
	}
	if !first.CreatedAt.Equal(second.CreatedAt) {
		t.Fatalf("expected created_at preserved, got %v vs %v", first.CreatedAt, second.CreatedAt)
	}
	if second.FullName != "A" || second.Age != 30 {
		t.Fatalf("unexpected stored fields: %+v", second)
	}
}

func TestTrainerProfileUpsertCoalescesOptionalFields(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	repo := NewTrainerProfileRepository(pool)
	userID := createTestUser(t, ctx, pool, models.RoleTrainer)

	methodology := "progressive overload"
	first, err := repo.Upsert(ctx, userID, TrainerProfileInput{
		Bio:             "ten years of coaching",
		Specializations: []string{"strength"},
		Methodology:     &methodology,
	})
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if first.Methodology == nil || *first.Methodology != methodology {
		t.Fatalf("expected methodology stored, got %+v", first.Methodology)
	}

	second, err := repo.Upsert(ctx, userID, TrainerProfileInput{
		Bio:             "updated bio",
		Specializations: []string{"mobility", "rehab"},
	})
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if second.Bio != "updated bio" {
		t.Fatalf("expected bio replaced, got %q", second.Bio)
	}
	if second.Methodology == nil || *second.Methodology != methodology {
		t.Fatalf("expected methodology preserved, got %+v", second.Methodology)
	}
	if len(second.Specializations) != 2 {
		t.Fatalf("expected specializations replaced, got %v", second.Specializations)
	}
}
