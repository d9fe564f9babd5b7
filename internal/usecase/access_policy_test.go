package usecase_test

import (
	"testing"

	"jetsuite-backend/internal/domain"
	"jetsuite-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func resolvedFacts(path string) domain.AccessFacts {
	return domain.AccessFacts{
		SessionChecked:        true,
		IsLoggedIn:            true,
		CurrentUserID:         strPtr("user-1"),
		CurrentUserEmail:      strPtr("owner@example.com"),
		IsAccessTierResolved:  true,
		IsOnboardingResolved:  true,
		HasAnyBusinessProfile: true,
		CurrentPath:           path,
	}
}

func loggedOutFacts(path string) domain.AccessFacts {
	return domain.AccessFacts{SessionChecked: true, CurrentPath: path}
}

func TestEvaluateAccessScenarios(t *testing.T) {
	t.Run("Should send a denied user on /app to the subscription redirect", func(t *testing.T) {
		f := resolvedFacts("/app/dashboard")
		f.SubscriptionRedirect = strPtr("/billing/locked")

		d := usecase.EvaluateAccess(f)
		assert.True(t, d.Navigate)
		assert.Equal(t, "/billing/locked", d.Target)
		assert.Equal(t, domain.ReasonEntitlementDenied, d.Reason)
	})

	t.Run("Should leave a denied user on /pricing", func(t *testing.T) {
		f := resolvedFacts("/pricing")
		f.SubscriptionRedirect = strPtr("/billing/locked")

		assert.False(t, usecase.EvaluateAccess(f).Navigate)
	})

	t.Run("Should allow legal pages without a business profile", func(t *testing.T) {
		f := resolvedFacts("/terms")
		f.HasAnyBusinessProfile = false

		assert.False(t, usecase.EvaluateAccess(f).Navigate)
	})

	t.Run("Should send a user without a business profile to onboarding", func(t *testing.T) {
		f := resolvedFacts("/app/tools")
		f.HasAnyBusinessProfile = false

		d := usecase.EvaluateAccess(f)
		assert.True(t, d.Navigate)
		assert.Equal(t, domain.PathOnboarding, d.Target)
	})

	t.Run("Should let an entitled user browse marketing pages", func(t *testing.T) {
		assert.False(t, usecase.EvaluateAccess(resolvedFacts("/faq")).Navigate)
	})

	t.Run("Should send an entitled user on an unknown page to /app", func(t *testing.T) {
		d := usecase.EvaluateAccess(resolvedFacts("/random-unknown"))
		assert.True(t, d.Navigate)
		assert.Equal(t, domain.PathApp, d.Target)
		assert.Equal(t, domain.ReasonAuthenticatedHome, d.Reason)
	})

	t.Run("Should send an entitled user on the home page to /app", func(t *testing.T) {
		d := usecase.EvaluateAccess(resolvedFacts("/"))
		assert.True(t, d.Navigate)
		assert.Equal(t, domain.PathApp, d.Target)
	})
}

func TestEvaluateAccessNoPrematureRedirect(t *testing.T) {
	paths := []string{"/", "/app", "/app/tools", "/onboarding", "/admin", "/pricing", "/random-unknown"}

	cases := map[string]func(path string) domain.AccessFacts{
		"session unchecked": func(path string) domain.AccessFacts {
			return domain.AccessFacts{CurrentPath: path}
		},
		"tier unresolved": func(path string) domain.AccessFacts {
			f := resolvedFacts(path)
			f.IsAccessTierResolved = false
			f.SubscriptionRedirect = strPtr("/pricing")
			return f
		},
		"onboarding unresolved": func(path string) domain.AccessFacts {
			f := resolvedFacts(path)
			f.IsOnboardingResolved = false
			f.HasAnyBusinessProfile = false
			return f
		},
	}

	for name, build := range cases {
		for _, path := range paths {
			d := usecase.EvaluateAccess(build(path))
			assert.False(t, d.Navigate, "%s at %s", name, path)
			assert.Equal(t, domain.ReasonAwaiting, d.Reason, "%s at %s", name, path)
		}
	}
}

func TestEvaluateAccessPrecedence(t *testing.T) {
	t.Run("Should prefer the subscription redirect over onboarding", func(t *testing.T) {
		f := resolvedFacts("/app/tools")
		f.SubscriptionRedirect = strPtr("/pricing")
		f.HasAnyBusinessProfile = false

		d := usecase.EvaluateAccess(f)
		assert.True(t, d.Navigate)
		assert.Equal(t, "/pricing", d.Target)
	})

	t.Run("Should keep a denied user on /onboarding away from onboarding", func(t *testing.T) {
		f := resolvedFacts("/onboarding")
		f.SubscriptionRedirect = strPtr("/pricing")
		f.HasAnyBusinessProfile = false

		d := usecase.EvaluateAccess(f)
		assert.True(t, d.Navigate)
		assert.Equal(t, "/pricing", d.Target)
	})

	t.Run("Should let /admin through entitlement and onboarding checks", func(t *testing.T) {
		f := resolvedFacts("/admin")
		f.SubscriptionRedirect = strPtr("/pricing")
		assert.False(t, usecase.EvaluateAccess(f).Navigate)

		f.SubscriptionRedirect = nil
		f.HasAnyBusinessProfile = false
		assert.False(t, usecase.EvaluateAccess(f).Navigate)
	})

	t.Run("Should allow billing sub-pages while denied", func(t *testing.T) {
		f := resolvedFacts("/billing/locked")
		f.SubscriptionRedirect = strPtr("/pricing")
		assert.False(t, usecase.EvaluateAccess(f).Navigate)
	})
}

func TestEvaluateAccessLoggedOutContainment(t *testing.T) {
	for _, path := range []string{"/app", "/app/tools", "/onboarding", "/admin"} {
		d := usecase.EvaluateAccess(loggedOutFacts(path))
		assert.True(t, d.Navigate, path)
		assert.Equal(t, domain.PathHome, d.Target, path)
		assert.Equal(t, domain.ReasonLoggedOut, d.Reason, path)
	}

	for _, path := range []string{"/", "/pricing", "/faq", "/random-unknown"} {
		assert.False(t, usecase.EvaluateAccess(loggedOutFacts(path)).Navigate, path)
	}
}

func TestEvaluateAccessIdempotence(t *testing.T) {
	facts := []domain.AccessFacts{
		resolvedFacts("/app"),
		resolvedFacts("/faq"),
		loggedOutFacts("/"),
	}
	denied := resolvedFacts("/pricing")
	denied.SubscriptionRedirect = strPtr("/pricing")
	facts = append(facts, denied)
	onboarding := resolvedFacts("/onboarding")
	onboarding.HasAnyBusinessProfile = false
	facts = append(facts, onboarding)

	for _, f := range facts {
		assert.False(t, usecase.EvaluateAccess(f).Navigate, f.CurrentPath)
	}

	t.Run("Should never target the current path", func(t *testing.T) {
		f := resolvedFacts("/account/settings")
		f.SubscriptionRedirect = strPtr("/account/settings")
		assert.False(t, usecase.EvaluateAccess(f).Navigate)
	})

	t.Run("Should settle after following its own redirect", func(t *testing.T) {
		f := resolvedFacts("/app/dashboard")
		f.SubscriptionRedirect = strPtr("/billing/locked")

		d := usecase.EvaluateAccess(f)
		assert.True(t, d.Navigate)
		f.CurrentPath = d.Target
		assert.False(t, usecase.EvaluateAccess(f).Navigate)
	})
}

func TestSelectView(t *testing.T) {
	t.Run("Should show loading until the session is checked", func(t *testing.T) {
		assert.Equal(t, domain.ViewLoading, usecase.SelectView(domain.AccessFacts{CurrentPath: "/"}))
	})

	t.Run("Should show admin to any signed-in user on /admin", func(t *testing.T) {
		f := resolvedFacts("/admin")
		f.IsAccessTierResolved = false
		assert.Equal(t, domain.ViewAdmin, usecase.SelectView(f))
	})

	t.Run("Should show loading on /app while resolution is pending", func(t *testing.T) {
		f := resolvedFacts("/app")
		f.IsOnboardingResolved = false
		assert.Equal(t, domain.ViewLoading, usecase.SelectView(f))
	})

	t.Run("Should show the app when resolved", func(t *testing.T) {
		assert.Equal(t, domain.ViewApp, usecase.SelectView(resolvedFacts("/app/tools")))
	})

	t.Run("Should show onboarding to a user without profiles", func(t *testing.T) {
		f := resolvedFacts("/onboarding")
		f.HasAnyBusinessProfile = false
		assert.Equal(t, domain.ViewOnboarding, usecase.SelectView(f))

		f.IsOnboardingResolved = false
		assert.Equal(t, domain.ViewLoading, usecase.SelectView(f))
	})

	t.Run("Should show marketing to a signed-in user elsewhere", func(t *testing.T) {
		assert.Equal(t, domain.ViewMarketing, usecase.SelectView(resolvedFacts("/pricing")))
	})

	t.Run("Should show marketing or not found to anonymous visitors", func(t *testing.T) {
		assert.Equal(t, domain.ViewMarketing, usecase.SelectView(loggedOutFacts("/")))
		assert.Equal(t, domain.ViewMarketing, usecase.SelectView(loggedOutFacts("/billing/success")))
		assert.Equal(t, domain.ViewMarketing, usecase.SelectView(loggedOutFacts("/billing/anything")))
		assert.Equal(t, domain.ViewNotFound, usecase.SelectView(loggedOutFacts("/random-unknown")))
		assert.Equal(t, domain.ViewNotFound, usecase.SelectView(loggedOutFacts("/admin")))
	})
}

func TestStaticView(t *testing.T) {
	cases := []struct {
		raw  string
		view domain.View
		slug string
	}{
		{"/privacy-policy", domain.ViewPrivacyPolicy, ""},
		{"/privacy?ref=footer", domain.ViewPrivacyPolicy, ""},
		{"/terms", domain.ViewTerms, ""},
		{"/terms-of-service#section-2", domain.ViewTerms, ""},
		{"/contact", domain.ViewContact, ""},
		{"/r/acme-dental", domain.ViewPublicReview, "acme-dental"},
		{"/r/acme-dental/", domain.ViewPublicReview, "acme-dental"},
	}
	for _, tc := range cases {
		view, ok := usecase.StaticView(tc.raw)
		assert.True(t, ok, tc.raw)
		assert.Equal(t, tc.view, view.View, tc.raw)
		assert.Equal(t, tc.slug, view.Slug, tc.raw)
	}

	for _, raw := range []string{"/", "/app", "/r/", "/r/a/b", "/terms/extra", "/pricing"} {
		_, ok := usecase.StaticView(raw)
		assert.False(t, ok, raw)
	}
}
