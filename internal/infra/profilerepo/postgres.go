package profilerepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evelynko/skinsight/internal/domain/scan"
	"github.com/evelynko/skinsight/internal/domain/skin"
)

// PostgresRepository persists one profile row per user, with metrics and
// preferences stored as JSONB so the schema tracks the domain types.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get loads the profile for a user.
func (r *PostgresRepository) Get(ctx context.Context, userID int64) (skin.UserProfile, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, name, age, metrics, preferences, scanned_at, updated_at
		FROM skin_profiles
		WHERE user_id = $1
		LIMIT 1
	`, userID)
	if err != nil {
		return skin.UserProfile{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return skin.UserProfile{}, false, rows.Err()
	}

	var profile skin.UserProfile
	var metricsRaw, prefsRaw []byte
	var scanned, updated time.Time
	if err := rows.Scan(&profile.UserID, &profile.Name, &profile.Age, &metricsRaw, &prefsRaw, &scanned, &updated); err != nil {
		return skin.UserProfile{}, false, err
	}
	if err := json.Unmarshal(metricsRaw, &profile.Metrics); err != nil {
		return skin.UserProfile{}, false, fmt.Errorf("decode metrics: %w", err)
	}
	if err := json.Unmarshal(prefsRaw, &profile.Preferences); err != nil {
		return skin.UserProfile{}, false, fmt.Errorf("decode preferences: %w", err)
	}
	profile.ScannedAt = scanned.UTC()
	profile.UpdatedAt = updated.UTC()
	return profile, true, rows.Err()
}

// Save upserts the whole profile record.
func (r *PostgresRepository) Save(ctx context.Context, profile skin.UserProfile) error {
	metricsRaw, err := json.Marshal(profile.Metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	prefsRaw, err := json.Marshal(profile.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO skin_profiles (user_id, name, age, metrics, preferences, scanned_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			metrics = EXCLUDED.metrics,
			preferences = EXCLUDED.preferences,
			scanned_at = EXCLUDED.scanned_at,
			updated_at = EXCLUDED.updated_at
	`, profile.UserID, profile.Name, profile.Age, metricsRaw, prefsRaw, profile.ScannedAt, profile.UpdatedAt)
	return err
}

var _ scan.ProfileRepository = (*PostgresRepository)(nil)
