package usecase

import (
	"context"
	"jetsuite-backend/internal/domain"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker func(ctx context.Context) error

type healthUsecase struct {
	checks  map[string]HealthChecker
	timeout time.Duration
}

func NewHealthUsecase(checks map[string]HealthChecker, timeout time.Duration) domain.HealthUsecase {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &healthUsecase{checks: checks, timeout: timeout}
}

// Check probes every dependency concurrently under one shared timeout.
// A failing probe only marks its own dependency down.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		healthy = true
	)
	status := make(map[string]string, len(u.checks))
	for name, check := range u.checks {
		name, check := name, check
		g.Go(func() error {
			state := "up"
			if err := check(ctx); err != nil {
				state = "down"
			}
			mu.Lock()
			defer mu.Unlock()
			status[name] = state
			if state == "down" {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()
	return status, healthy
}
