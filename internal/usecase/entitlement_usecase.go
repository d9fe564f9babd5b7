package usecase

import (
	"context"
	"errors"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/apperror"
	"jetsuite-backend/pkg/logger"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// entitlementLookupTimeout bounds a shared lookup once it no longer follows
// the cancellation of the caller that started it.
const entitlementLookupTimeout = 10 * time.Second

// EntitlementCache is the optional read-through cache for access verdicts.
type EntitlementCache interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}

// EntitlementRedirects configures where denied users are sent.
type EntitlementRedirects struct {
	Denied        string // no or lapsed subscription
	PaymentFailed string // subscription exists but payment is failing
}

type entitlementUsecase struct {
	repo      domain.SubscriptionRepository
	cache     EntitlementCache
	redirects EntitlementRedirects
	group     singleflight.Group
}

// NewEntitlementUsecase builds the entitlement service. cache may be nil.
func NewEntitlementUsecase(repo domain.SubscriptionRepository, cache EntitlementCache, redirects EntitlementRedirects) domain.EntitlementService {
	if redirects.Denied == "" {
		redirects.Denied = domain.PathPricing
	}
	if redirects.PaymentFailed == "" {
		redirects.PaymentFailed = domain.PathAccount
	}
	return &entitlementUsecase{repo: repo, cache: cache, redirects: redirects}
}

// CheckAccess returns the entitlement verdict for userID. Concurrent checks
// for the same user share one lookup. Only granted verdicts are cached.
func (u *entitlementUsecase) CheckAccess(ctx context.Context, userID string) (*domain.AccessResult, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}

	if u.cache != nil {
		var cached domain.AccessResult
		if err := u.cache.Get(ctx, userID, &cached); err == nil {
			return &cached, nil
		}
	}

	// The shared lookup must outlive any single caller: one caller giving up
	// must not fail the others waiting on the same user.
	ch := u.group.DoChan(userID, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), entitlementLookupTimeout)
		defer cancel()

		result, err := u.resolve(lookupCtx, userID)
		if err != nil {
			return nil, err
		}
		// Denials are never cached.
		if u.cache != nil && result.HasAccess {
			if err := u.cache.Set(lookupCtx, userID, *result); err != nil {
				logger.Log.Warn("Failed to cache entitlement", "user_id", userID, "error", err)
			}
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := *res.Val.(*domain.AccessResult)
		return &result, nil
	}
}

func (u *entitlementUsecase) resolve(ctx context.Context, userID string) (*domain.AccessResult, error) {
	sub, err := u.repo.GetLatestByUserID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to load subscription: "+err.Error(), err)
	}

	status := domain.StatusNone
	if sub != nil && sub.Status.IsValid() {
		status = sub.Status
	}
	if status.GrantsAccess() {
		return &domain.AccessResult{HasAccess: true, Status: status}, nil
	}

	// An older row can still be active while the latest one is e.g. an abandoned upgrade.
	if sub != nil {
		active, err := u.repo.HasStatus(ctx, userID, []domain.SubscriptionStatus{domain.StatusActive, domain.StatusTrialing})
		if err != nil {
			return nil, apperror.New(http.StatusInternalServerError, "Failed to check subscription: "+err.Error(), err)
		}
		if active {
			return &domain.AccessResult{HasAccess: true, Status: domain.StatusActive}, nil
		}
	}

	redirect := u.redirects.Denied
	if status.IsPaymentFailure() {
		redirect = u.redirects.PaymentFailed
	}
	return &domain.AccessResult{HasAccess: false, Status: status, RedirectTo: redirect}, nil
}
