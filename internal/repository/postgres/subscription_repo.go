package postgres

import (
	"context"
	"errors"
	"fmt"
	"jetsuite-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type subscriptionRepo struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a repository over the subscriptions table
// kept in sync by the payment provider webhooks.
func NewSubscriptionRepository(db *pgxpool.Pool) domain.SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

// GetLatestByUserID retrieves the most recently updated subscription for a user
func (r *subscriptionRepo) GetLatestByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, provider_customer_id, provider_subscription_id,
		       status, plan_code, current_period_end, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`

	var s domain.Subscription
	var status string
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.ProviderCustomerID, &s.ProviderSubscription,
		&status, &s.PlanCode, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	s.Status = domain.SubscriptionStatus(status)
	return &s, nil
}

// HasStatus reports whether any of the user's subscriptions is in one of the statuses
func (r *subscriptionRepo) HasStatus(ctx context.Context, userID string, statuses []domain.SubscriptionStatus) (bool, error) {
	if len(statuses) == 0 {
		return false, nil
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND status = ANY($2)
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, pq.Array(values)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subscription status: %w", err)
	}
	return exists, nil
}
