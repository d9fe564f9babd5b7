package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"jetsuite-backend/internal/domain"
	"jetsuite-backend/internal/usecase"
	"jetsuite-backend/pkg/apperror"
	"jetsuite-backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAccessUsecase(verifier *MockVerifier, svc *MockEntitlementService, profiles domain.ProfileStore, resolveTimeout time.Duration) domain.AccessUsecase {
	return usecase.NewAccessUsecase(usecase.AccessUsecaseDeps{
		Verifier:     verifier,
		Entitlements: svc,
		Profiles:     profiles,
	}, usecase.DefaultReconcilerConfig(), 3*time.Second, resolveTimeout)
}

func TestAccessResolve(t *testing.T) {
	t.Run("Should reject a malformed path", func(t *testing.T) {
		uc := newAccessUsecase(new(MockVerifier), new(MockEntitlementService), new(MockProfileRepo), 0)

		for _, path := range []string{"", "app", "/app/../admin", "//evil.example.com"} {
			_, err := uc.Resolve(context.Background(), "", &domain.AccessResolveRequest{Path: path})
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr, path)
			assert.Equal(t, http.StatusBadRequest, appErr.Code, path)
		}
	})

	t.Run("Should render static pages without resolving identity", func(t *testing.T) {
		verifier := new(MockVerifier)
		uc := newAccessUsecase(verifier, new(MockEntitlementService), new(MockProfileRepo), 0)

		res, err := uc.Resolve(context.Background(), "some-token", &domain.AccessResolveRequest{Path: "/r/acme-dental"})
		require.NoError(t, err)
		assert.Equal(t, domain.ViewPublicReview, res.View.View)
		assert.Equal(t, "acme-dental", res.View.Slug)
		assert.Empty(t, res.Redirects)
		verifier.AssertNotCalled(t, "Verify", mock.Anything)
	})

	t.Run("Should contain an anonymous request for /app", func(t *testing.T) {
		uc := newAccessUsecase(new(MockVerifier), new(MockEntitlementService), new(MockProfileRepo), 0)

		res, err := uc.Resolve(context.Background(), "", &domain.AccessResolveRequest{Path: "/app/tools"})
		require.NoError(t, err)
		assert.Equal(t, "/app/tools", res.RequestedPath)
		assert.Equal(t, []string{"/"}, res.Redirects)
		assert.Equal(t, domain.ViewMarketing, res.View.View)
		assert.Equal(t, "/", res.View.Path)
		assert.Nil(t, res.Gate)
	})

	t.Run("Should resolve an entitled owner to the gated app", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", "good").Return(&auth.Claims{Subject: "user-1", Email: "owner@example.com"}, nil)
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{HasAccess: true, Status: domain.StatusActive}, nil)
		profiles := new(MockProfileRepo)
		profiles.On("CountCompletedProfiles", mock.Anything, "user-1").Return(1, nil)
		uc := newAccessUsecase(verifier, svc, profiles, 0)

		res, err := uc.Resolve(context.Background(), "good", &domain.AccessResolveRequest{Path: "/"})
		require.NoError(t, err)
		assert.Equal(t, []string{"/app"}, res.Redirects)
		assert.Equal(t, domain.ViewApp, res.View.View)
		require.NotNil(t, res.Gate)
		assert.Equal(t, domain.GateAllowed, res.Gate.State)
	})

	t.Run("Should resolve an invalid token as logged out", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", "expired").Return(nil, auth.ErrInvalidToken)
		uc := newAccessUsecase(verifier, new(MockEntitlementService), new(MockProfileRepo), 0)

		res, err := uc.Resolve(context.Background(), "expired", &domain.AccessResolveRequest{Path: "/onboarding"})
		require.NoError(t, err)
		assert.False(t, res.Facts.IsLoggedIn)
		assert.Equal(t, []string{"/"}, res.Redirects)
	})

	t.Run("Should time out when resolution never settles", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", "good").Return(&auth.Claims{Subject: "user-1"}, nil)
		svc := new(MockEntitlementService)
		svc.On("CheckAccess", mock.Anything, "user-1").Return(&domain.AccessResult{HasAccess: true, Status: domain.StatusActive}, nil)
		uc := newAccessUsecase(verifier, svc, newGatedProfiles("user-1"), 50*time.Millisecond)

		_, err := uc.Resolve(context.Background(), "good", &domain.AccessResolveRequest{Path: "/app"})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusGatewayTimeout, appErr.Code)
	})
}
