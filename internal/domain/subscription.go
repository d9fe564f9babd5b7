package domain

import (
	"context"
	"time"
)

// SubscriptionStatus mirrors the payment provider's subscription lifecycle.
type SubscriptionStatus string

const (
	StatusActive            SubscriptionStatus = "active"
	StatusTrialing          SubscriptionStatus = "trialing"
	StatusPastDue           SubscriptionStatus = "past_due"
	StatusCanceled          SubscriptionStatus = "canceled"
	StatusUnpaid            SubscriptionStatus = "unpaid"
	StatusIncomplete        SubscriptionStatus = "incomplete"
	StatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	StatusPaused            SubscriptionStatus = "paused"
	StatusNone              SubscriptionStatus = "none"
)

// ValidSubscriptionStatuses returns all known statuses
func ValidSubscriptionStatuses() []SubscriptionStatus {
	return []SubscriptionStatus{
		StatusActive, StatusTrialing, StatusPastDue, StatusCanceled, StatusUnpaid,
		StatusIncomplete, StatusIncompleteExpired, StatusPaused, StatusNone,
	}
}

// IsValid checks if the status is a known lifecycle state
func (s SubscriptionStatus) IsValid() bool {
	for _, valid := range ValidSubscriptionStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// GrantsAccess reports whether the status entitles the holder to the app.
func (s SubscriptionStatus) GrantsAccess() bool {
	return s == StatusActive || s == StatusTrialing
}

// IsPaymentFailure reports whether the subscription exists but payment is failing.
func (s SubscriptionStatus) IsPaymentFailure() bool {
	switch s {
	case StatusPastDue, StatusUnpaid, StatusIncomplete:
		return true
	}
	return false
}

// Subscription is the billing record synced from the payment provider.
type Subscription struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"user_id"`
	ProviderCustomerID   *string            `json:"provider_customer_id,omitempty"`
	ProviderSubscription *string            `json:"provider_subscription_id,omitempty"`
	Status               SubscriptionStatus `json:"status"`
	PlanCode             *string            `json:"plan_code,omitempty"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// AccessResult is the entitlement verdict for one identity.
type AccessResult struct {
	HasAccess  bool               `json:"has_access"`
	Status     SubscriptionStatus `json:"status"`
	RedirectTo string             `json:"redirect_to,omitempty"`
}

// ============================================================================
// Repository Interface
// ============================================================================

type SubscriptionRepository interface {
	// GetLatestByUserID returns the most recently updated subscription, or ErrNotFound.
	GetLatestByUserID(ctx context.Context, userID string) (*Subscription, error)
	// HasStatus reports whether the user holds any subscription in one of the given statuses.
	HasStatus(ctx context.Context, userID string, statuses []SubscriptionStatus) (bool, error)
}

// ============================================================================
// Service Interface
// ============================================================================

// EntitlementService answers "does this identity have paid access".
type EntitlementService interface {
	CheckAccess(ctx context.Context, userID string) (*AccessResult, error)
}
