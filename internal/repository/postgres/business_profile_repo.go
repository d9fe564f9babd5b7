package postgres

import (
	"context"
	"fmt"
	"jetsuite-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type businessProfileRepo struct {
	db *pgxpool.Pool
}

// NewBusinessProfileRepository creates a new business profile repository
func NewBusinessProfileRepository(db *pgxpool.Pool) domain.BusinessProfileRepository {
	return &businessProfileRepo{db: db}
}

// CountCompletedProfiles counts the business profiles a user has finished onboarding
func (r *businessProfileRepo) CountCompletedProfiles(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM business_profiles
		WHERE user_id = $1 AND is_complete = TRUE`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed profiles: %w", err)
	}
	return count, nil
}

// ListByUserID returns every business profile owned by a user, newest first
func (r *businessProfileRepo) ListByUserID(ctx context.Context, userID string) ([]domain.BusinessProfile, error) {
	query := `
		SELECT id, user_id, business_name, industry, location, website,
		       is_complete, completed_at, created_at, updated_at
		FROM business_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list business profiles: %w", err)
	}
	defer rows.Close()

	profiles := []domain.BusinessProfile{}
	for rows.Next() {
		var p domain.BusinessProfile
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.BusinessName, &p.Industry, &p.Location, &p.Website,
			&p.IsComplete, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan business profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating business profile rows: %w", err)
	}
	return profiles, nil
}
