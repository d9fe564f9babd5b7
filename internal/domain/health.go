package domain

import "context"

type HealthUsecase interface {
	// Check returns a per-dependency "up"/"down" map and whether all are up.
	Check(ctx context.Context) (map[string]string, bool)
}
