package usecase

import (
	"context"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/apperror"
	"net/http"
)

type profileUsecase struct {
	repo domain.BusinessProfileRepository
}

func NewProfileUsecase(repo domain.BusinessProfileRepository) domain.ProfileUsecase {
	return &profileUsecase{repo: repo}
}

// authorize verifies the context user matches the requested user
func authorize(ctx context.Context, userID string) error {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if ctxUserID != userID {
		return apperror.Forbidden("You can only access your own business profiles")
	}
	return nil
}

func (u *profileUsecase) GetProfileStatus(ctx context.Context, userID string) (*domain.ProfileStatus, error) {
	if err := authorize(ctx, userID); err != nil {
		return nil, err
	}

	count, err := u.repo.CountCompletedProfiles(ctx, userID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to get profile status: "+err.Error(), err)
	}
	return &domain.ProfileStatus{CompletedCount: count, HasAny: count > 0}, nil
}

func (u *profileUsecase) ListProfiles(ctx context.Context, userID string) ([]domain.BusinessProfile, error) {
	if err := authorize(ctx, userID); err != nil {
		return nil, err
	}

	profiles, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "Failed to list business profiles: "+err.Error(), err)
	}
	return profiles, nil
}
