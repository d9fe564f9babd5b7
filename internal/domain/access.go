package domain

import (
	"context"
	"strings"
)

// ============================================================================
// Path Taxonomy
// ============================================================================

const (
	PathHome           = "/"
	PathApp            = "/app"
	PathOnboarding     = "/onboarding"
	PathAdmin          = "/admin"
	PathPricing        = "/pricing"
	PathAccount        = "/account"
	PathContact        = "/contact"
	PathSavings        = "/savings"
	PathPrivacy        = "/privacy"
	PathPrivacyPolicy  = "/privacy-policy"
	PathTerms          = "/terms"
	PathTermsOfService = "/terms-of-service"
	PathDemo           = "/demo"
	PathGetStarted     = "/get-started"
	PathFeatures       = "/features"
	PathHowItWorks     = "/how-it-works"
	PathFAQ            = "/faq"
	PathLogin          = "/login"
	PathBilling        = "/billing"
	PathBillingSuccess = "/billing/success"
	PathBillingLocked  = "/billing/locked"
	PathScheduleDemo   = "/schedule-demo"
	PathReviewPrefix   = "/r/"
)

// IsAppPath reports whether path belongs to the authenticated application area.
func IsAppPath(path string) bool {
	return strings.HasPrefix(path, PathApp)
}

// NormalizePath strips query and fragment so only the logical location remains.
func NormalizePath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return PathHome
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw
}

// ============================================================================
// Access Facts
// ============================================================================

// AccessFacts is the ephemeral fact set the access guard reasons over.
// It is owned by exactly one reconciler and never persisted.
type AccessFacts struct {
	SessionChecked bool `json:"session_checked"`
	IsLoggedIn     bool `json:"is_logged_in"`

	CurrentUserID    *string `json:"current_user_id,omitempty"`
	CurrentUserEmail *string `json:"current_user_email,omitempty"`

	IsAccessTierResolved bool    `json:"is_access_tier_resolved"`
	SubscriptionRedirect *string `json:"subscription_redirect,omitempty"`

	IsOnboardingResolved  bool `json:"is_onboarding_resolved"`
	HasAnyBusinessProfile bool `json:"has_any_business_profile"`

	CurrentPath string `json:"current_path"`
}

// AwaitingResolution reports whether the guard must hold off on any decision.
func (f AccessFacts) AwaitingResolution() bool {
	if !f.SessionChecked {
		return true
	}
	return f.IsLoggedIn && (!f.IsAccessTierResolved || !f.IsOnboardingResolved)
}

// Watched returns the subset of facts whose change triggers a guard evaluation.
func (f AccessFacts) Watched() WatchedFacts {
	w := WatchedFacts{
		IsLoggedIn:            f.IsLoggedIn,
		CurrentPath:           f.CurrentPath,
		SessionChecked:        f.SessionChecked,
		IsAccessTierResolved:  f.IsAccessTierResolved,
		IsOnboardingResolved:  f.IsOnboardingResolved,
		HasAnyBusinessProfile: f.HasAnyBusinessProfile,
	}
	if f.SubscriptionRedirect != nil {
		w.SubscriptionRedirect = *f.SubscriptionRedirect
		w.HasSubscriptionRedirect = true
	}
	return w
}

// WatchedFacts is a comparable snapshot of the watch-list.
type WatchedFacts struct {
	IsLoggedIn              bool
	CurrentPath             string
	SessionChecked          bool
	IsAccessTierResolved    bool
	IsOnboardingResolved    bool
	HasSubscriptionRedirect bool
	SubscriptionRedirect    string
	HasAnyBusinessProfile   bool
}

// NavigationDecision is the output of one guard evaluation.
type NavigationDecision struct {
	Navigate bool   `json:"navigate"`
	Target   string `json:"target,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Decision reasons
const (
	ReasonAwaiting          = "awaiting_resolution"
	ReasonEntitlementDenied = "entitlement_denied"
	ReasonOnboarding        = "onboarding_incomplete"
	ReasonAuthenticatedHome = "authenticated_home"
	ReasonLoggedOut         = "logged_out_containment"
	ReasonAllowed           = "allowed"
)

// ============================================================================
// Views
// ============================================================================

// View is the top-level surface the shell renders.
type View string

const (
	ViewLoading       View = "loading"
	ViewAdmin         View = "admin"
	ViewOnboarding    View = "onboarding"
	ViewApp           View = "app"
	ViewMarketing     View = "marketing"
	ViewNotFound      View = "not_found"
	ViewPrivacyPolicy View = "privacy_policy"
	ViewTerms         View = "terms"
	ViewContact       View = "contact"
	ViewPublicReview  View = "public_review"
)

// RenderedView is a view bound to the path (or review slug) it renders.
type RenderedView struct {
	View View   `json:"view"`
	Path string `json:"path"`
	Slug string `json:"slug,omitempty"`
}

// ============================================================================
// Entitlement Gate
// ============================================================================

// GateState is what the gated application view shows.
type GateState string

const (
	GatePending GateState = "pending"
	GateAllowed GateState = "allowed"
	GateDenied  GateState = "denied"
)

// GateResult is the outcome of a single gate check.
type GateResult struct {
	State      GateState          `json:"state"`
	Status     SubscriptionStatus `json:"status,omitempty"`
	RedirectTo string             `json:"redirect_to,omitempty"`
	Countdown  int                `json:"countdown_seconds,omitempty"`
}

// ============================================================================
// Resolution
// ============================================================================

// AccessResolveRequest asks what a tab opened at Path would end up showing.
type AccessResolveRequest struct {
	Path string `json:"path" validate:"required,max=2048,app_path"`
}

// AccessResolution is the settled outcome of a first paint.
type AccessResolution struct {
	RequestedPath string       `json:"requested_path"`
	View          RenderedView `json:"view"`
	Redirects     []string     `json:"redirects"`
	Facts         AccessFacts  `json:"facts"`
	Gate          *GateResult  `json:"gate,omitempty"`
}

type AccessUsecase interface {
	// Resolve runs a fresh reconciler for token and path until it settles.
	Resolve(ctx context.Context, token string, req *AccessResolveRequest) (*AccessResolution, error)
}
