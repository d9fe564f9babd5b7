package usecase

import (
	"context"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/security"
	"log/slog"
	"time"
)

// GateHooks lets the caller observe and steer the gate.
type GateHooks struct {
	// OnState is called on every state change, including each countdown tick.
	OnState func(state domain.GateState, secondsLeft int)
	// OnDenied performs the navigation once the countdown finishes.
	// When nil the gate hard-navigates through its fallback navigator.
	OnDenied func(redirectTo string)
}

// EntitlementGate is the view-level check wrapping the authenticated app.
// It runs independently of the route guard and also covers an /app reached
// before the route guard had its facts.
type EntitlementGate struct {
	entitlements domain.EntitlementService
	fallback     domain.Navigator
	countdown    time.Duration
	lockedPath   string
	log          *slog.Logger
	audit        security.Recorder
}

func NewEntitlementGate(entitlements domain.EntitlementService, fallback domain.Navigator, countdown time.Duration, log *slog.Logger, audit security.Recorder) *EntitlementGate {
	if countdown < 0 {
		countdown = 0
	}
	if log == nil {
		log = slog.Default()
	}
	if audit == nil {
		audit = security.NopRecorder{}
	}
	return &EntitlementGate{
		entitlements: entitlements,
		fallback:     fallback,
		countdown:    countdown,
		lockedPath:   domain.PathBillingLocked,
		log:          log,
		audit:        audit,
	}
}

// Check runs the entitlement probe for userID without any countdown.
// Failures are reported as denial.
func (g *EntitlementGate) Check(ctx context.Context, userID string) domain.GateResult {
	// Partial seconds round up so a short countdown is still shown.
	seconds := int((g.countdown + time.Second - 1) / time.Second)

	if userID == "" {
		return domain.GateResult{State: domain.GateDenied, Status: domain.StatusNone, RedirectTo: g.lockedPath, Countdown: seconds}
	}

	result, err := g.entitlements.CheckAccess(ctx, userID)
	if err != nil {
		g.log.Error("Gate entitlement check failed", "user_id", userID, "error", err)
		return domain.GateResult{State: domain.GateDenied, Status: domain.StatusNone, RedirectTo: g.lockedPath, Countdown: seconds}
	}
	if result == nil || !result.HasAccess {
		status := domain.StatusNone
		if result != nil {
			status = result.Status
		}
		return domain.GateResult{State: domain.GateDenied, Status: status, RedirectTo: g.lockedPath, Countdown: seconds}
	}
	return domain.GateResult{State: domain.GateAllowed, Status: result.Status}
}

// Guard checks access and, on denial, counts down before redirecting.
// It returns once the user is allowed, redirected, or ctx is done.
func (g *EntitlementGate) Guard(ctx context.Context, userID string, hooks GateHooks) domain.GateResult {
	notify := func(state domain.GateState, left int) {
		if hooks.OnState != nil {
			hooks.OnState(state, left)
		}
	}

	notify(domain.GatePending, 0)
	res := g.Check(ctx, userID)
	if res.State == domain.GateAllowed {
		notify(domain.GateAllowed, 0)
		return res
	}

	g.audit.Log(ctx, security.SecurityEvent{
		Event:        security.EventGateDenied,
		SubjectType:  "user_id",
		SubjectValue: userID,
		Path:         domain.PathApp,
		Details:      map[string]interface{}{"status": string(res.Status)},
	})

	left := res.Countdown
	notify(domain.GateDenied, left)
	if left > 0 {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for left > 0 {
			select {
			case <-ctx.Done():
				return res
			case <-ticker.C:
				left--
				notify(domain.GateDenied, left)
			}
		}
	}

	if hooks.OnDenied != nil {
		hooks.OnDenied(res.RedirectTo)
		return res
	}
	if g.fallback == nil {
		g.log.Error("Gate denied with no navigator", "user_id", userID)
		return res
	}
	if err := g.fallback.Navigate(res.RedirectTo); err != nil {
		g.log.Error("Gate hard navigation failed", "to", res.RedirectTo, "error", err)
	}
	return res
}
