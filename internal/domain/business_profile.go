package domain

import (
	"context"
	"time"
)

// BusinessProfile is a local business a JetSuite customer markets through the app.
type BusinessProfile struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	BusinessName string     `json:"business_name"`
	Industry     *string    `json:"industry"`
	Location     *string    `json:"location"`
	Website      *string    `json:"website"`
	IsComplete   bool       `json:"is_complete"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProfileStatus is the onboarding summary for one identity.
type ProfileStatus struct {
	CompletedCount int  `json:"completed_count"`
	HasAny         bool `json:"has_any"`
}

// ProfileStore answers "how many completed business profiles does this identity own".
type ProfileStore interface {
	CountCompletedProfiles(ctx context.Context, userID string) (int, error)
}

type BusinessProfileRepository interface {
	ProfileStore
	ListByUserID(ctx context.Context, userID string) ([]BusinessProfile, error)
}

type ProfileUsecase interface {
	GetProfileStatus(ctx context.Context, userID string) (*ProfileStatus, error)
	ListProfiles(ctx context.Context, userID string) ([]BusinessProfile, error)
}
