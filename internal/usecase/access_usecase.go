package usecase

import (
	"context"
	"errors"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/apperror"
	"jetsuite-backend/pkg/security"
	"jetsuite-backend/pkg/validation"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// recordingNavigator applies navigations to nothing but a history list.
type recordingNavigator struct {
	mu      sync.Mutex
	history []string
}

func (n *recordingNavigator) Navigate(path string) error {
	n.mu.Lock()
	n.history = append(n.history, path)
	n.mu.Unlock()
	return nil
}

func (n *recordingNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.history...)
}

// AccessUsecaseDeps groups the collaborators of the resolve usecase.
type AccessUsecaseDeps struct {
	Verifier     TokenVerifier
	Entitlements domain.EntitlementService
	Profiles     domain.ProfileStore
	Validate     *validator.Validate
	Logger       *slog.Logger
	Audit        security.Recorder
}

type accessUsecase struct {
	deps           AccessUsecaseDeps
	cfg            ReconcilerConfig
	gateCountdown  time.Duration
	resolveTimeout time.Duration
}

// NewAccessUsecase answers "what would a tab opened here end up showing" by
// running one reconciler per request until it settles.
func NewAccessUsecase(deps AccessUsecaseDeps, cfg ReconcilerConfig, gateCountdown, resolveTimeout time.Duration) domain.AccessUsecase {
	if deps.Validate == nil {
		deps.Validate = validation.New()
	}
	if resolveTimeout <= 0 {
		resolveTimeout = 10 * time.Second
	}
	return &accessUsecase{deps: deps, cfg: cfg, gateCountdown: gateCountdown, resolveTimeout: resolveTimeout}
}

func (u *accessUsecase) Resolve(ctx context.Context, token string, req *domain.AccessResolveRequest) (*domain.AccessResolution, error) {
	if err := u.deps.Validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Validation failed: " + strings.Join(validation.FormatValidationErrors(err), "; "))
	}
	requested := domain.NormalizePath(req.Path)

	if view, ok := StaticView(req.Path); ok {
		return &domain.AccessResolution{
			RequestedPath: requested,
			View:          view,
			Redirects:     []string{},
			Facts:         domain.AccessFacts{CurrentPath: requested},
		}, nil
	}

	nav := &recordingNavigator{}
	reconciler := NewAccessReconciler(ReconcilerDeps{
		Identity:     NewTokenIdentityProvider(token, u.deps.Verifier, nil),
		Entitlements: u.deps.Entitlements,
		Profiles:     u.deps.Profiles,
		Navigator:    nav,
		Logger:       u.deps.Logger,
		Audit:        u.deps.Audit,
	}, u.cfg, requested)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = reconciler.Run(runCtx) }()

	settleCtx, settleCancel := context.WithTimeout(ctx, u.resolveTimeout)
	defer settleCancel()

	facts, err := reconciler.WaitSettled(settleCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.GatewayTimeout("Access resolution timed out", err)
		}
		return nil, apperror.Internal(err)
	}

	view := SelectView(facts)
	res := &domain.AccessResolution{
		RequestedPath: requested,
		View:          domain.RenderedView{View: view, Path: facts.CurrentPath},
		Redirects:     nav.Redirects(),
		Facts:         facts,
	}

	if view == domain.ViewApp && facts.CurrentUserID != nil {
		gate := NewEntitlementGate(u.deps.Entitlements, nil, u.gateCountdown, u.deps.Logger, u.deps.Audit)
		result := gate.Check(ctx, *facts.CurrentUserID)
		res.Gate = &result
	}
	return res, nil
}
