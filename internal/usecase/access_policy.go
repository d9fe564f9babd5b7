package usecase

import (
	"jetsuite-backend/internal/domain"
	"strings"
)

// ============================================================================
// Allow-lists
// ============================================================================

// pathRule matches a path either exactly or by prefix.
type pathRule struct {
	path   string
	prefix bool
}

func exact(p string) pathRule  { return pathRule{path: p} }
func prefix(p string) pathRule { return pathRule{path: p, prefix: true} }

type allowList []pathRule

func (l allowList) allows(path string) bool {
	for _, r := range l {
		if r.prefix && strings.HasPrefix(path, r.path) {
			return true
		}
		if !r.prefix && path == r.path {
			return true
		}
	}
	return false
}

// Reachable while the subscription is denied.
var deniedAllowList = allowList{
	exact(domain.PathPricing),
	exact(domain.PathAccount),
	exact(domain.PathContact),
	exact(domain.PathSavings),
	exact(domain.PathAdmin),
	prefix(domain.PathBilling + "/"),
}

// Reachable while no business profile exists.
var onboardingAllowList = allowList{
	exact(domain.PathOnboarding),
	prefix(domain.PathPrivacyPolicy),
	prefix(domain.PathPrivacy),
	prefix(domain.PathTerms),
	prefix(domain.PathContact),
	exact(domain.PathAdmin),
}

// Marketing and account pages an entitled, onboarded user may browse.
var entitledAllowList = allowList{
	prefix(domain.PathBilling),
	prefix(domain.PathPricing),
	prefix(domain.PathAccount),
	prefix(domain.PathDemo),
	prefix(domain.PathGetStarted),
	prefix(domain.PathPrivacyPolicy),
	prefix(domain.PathPrivacy),
	prefix(domain.PathTerms),
	prefix(domain.PathSavings),
	prefix(domain.PathFeatures),
	prefix(domain.PathHowItWorks),
	prefix(domain.PathFAQ),
	prefix(domain.PathContact),
	exact(domain.PathAdmin),
}

// Public marketing routes rendered for anonymous visitors.
var publicMarketingRoutes = map[string]bool{
	domain.PathHome:           true,
	domain.PathFeatures:       true,
	domain.PathHowItWorks:     true,
	domain.PathPricing:        true,
	domain.PathFAQ:            true,
	domain.PathGetStarted:     true,
	domain.PathDemo:           true,
	"/demo/schedule":          true,
	domain.PathSavings:        true,
	domain.PathLogin:          true,
	domain.PathBillingSuccess: true,
	domain.PathBillingLocked:  true,
	domain.PathContact:        true,
	domain.PathPrivacy:        true,
	domain.PathPrivacyPolicy:  true,
	domain.PathTerms:          true,
	domain.PathTermsOfService: true,
	domain.PathScheduleDemo:   true,
}

// ============================================================================
// Redirect Policy
// ============================================================================

// EvaluateAccess decides whether the current location must be forcibly changed.
// It is pure: the same facts always yield the same decision.
func EvaluateAccess(f domain.AccessFacts) domain.NavigationDecision {
	if f.AwaitingResolution() {
		return domain.NavigationDecision{Reason: domain.ReasonAwaiting}
	}

	path := f.CurrentPath
	if !f.IsLoggedIn {
		if domain.IsAppPath(path) || path == domain.PathOnboarding || path == domain.PathAdmin {
			return navigateTo(path, domain.PathHome, domain.ReasonLoggedOut)
		}
		return domain.NavigationDecision{Reason: domain.ReasonAllowed}
	}

	if f.SubscriptionRedirect != nil {
		if deniedAllowList.allows(path) {
			return domain.NavigationDecision{Reason: domain.ReasonEntitlementDenied}
		}
		return navigateTo(path, *f.SubscriptionRedirect, domain.ReasonEntitlementDenied)
	}

	if !f.HasAnyBusinessProfile {
		if onboardingAllowList.allows(path) {
			return domain.NavigationDecision{Reason: domain.ReasonOnboarding}
		}
		return navigateTo(path, domain.PathOnboarding, domain.ReasonOnboarding)
	}

	if !domain.IsAppPath(path) && !entitledAllowList.allows(path) && path != domain.PathOnboarding {
		return navigateTo(path, domain.PathApp, domain.ReasonAuthenticatedHome)
	}
	return domain.NavigationDecision{Reason: domain.ReasonAllowed}
}

// navigateTo never asks to navigate to the location already shown.
func navigateTo(current, target, reason string) domain.NavigationDecision {
	if current == target {
		return domain.NavigationDecision{Reason: reason}
	}
	return domain.NavigationDecision{Navigate: true, Target: target, Reason: reason}
}

// ============================================================================
// View Selection
// ============================================================================

// SelectView picks the top-level view for the facts, independent of any
// navigation the guard may have issued for them.
func SelectView(f domain.AccessFacts) domain.View {
	path := f.CurrentPath

	if path == domain.PathAdmin && f.IsLoggedIn && f.CurrentUserID != nil {
		return domain.ViewAdmin
	}
	if !f.SessionChecked {
		return domain.ViewLoading
	}

	if f.IsLoggedIn {
		if path == domain.PathOnboarding {
			if !f.IsOnboardingResolved {
				return domain.ViewLoading
			}
			if !f.HasAnyBusinessProfile {
				return domain.ViewOnboarding
			}
		}
		if domain.IsAppPath(path) {
			if !f.IsAccessTierResolved || !f.IsOnboardingResolved {
				return domain.ViewLoading
			}
			return domain.ViewApp
		}
		return domain.ViewMarketing
	}

	if publicMarketingRoutes[path] || strings.HasPrefix(path, domain.PathBilling+"/") {
		return domain.ViewMarketing
	}
	return domain.ViewNotFound
}

// StaticView short-circuits pages that must render even when identity or
// entitlement resolution is failing. It is consulted once, from the raw
// startup location, and returns false for every other path.
func StaticView(rawLocation string) (domain.RenderedView, bool) {
	path := domain.NormalizePath(rawLocation)

	switch path {
	case domain.PathPrivacyPolicy, domain.PathPrivacy:
		return domain.RenderedView{View: domain.ViewPrivacyPolicy, Path: path}, true
	case domain.PathTerms, domain.PathTermsOfService:
		return domain.RenderedView{View: domain.ViewTerms, Path: path}, true
	case domain.PathContact:
		return domain.RenderedView{View: domain.ViewContact, Path: path}, true
	}

	if slug, ok := strings.CutPrefix(path, domain.PathReviewPrefix); ok {
		slug = strings.TrimSuffix(slug, "/")
		if slug != "" && !strings.Contains(slug, "/") {
			return domain.RenderedView{View: domain.ViewPublicReview, Path: path, Slug: slug}, true
		}
	}
	return domain.RenderedView{}, false
}
