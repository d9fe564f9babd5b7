package usecase_test

import (
	"context"
	"errors"
	"jetsuite-backend/internal/usecase"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthUsecase(t *testing.T) {
	t.Run("Should report healthy with no dependencies", func(t *testing.T) {
		status, ok := usecase.NewHealthUsecase(nil, 0).Check(context.Background())
		assert.True(t, ok)
		assert.Empty(t, status)
	})

	t.Run("Should mark failing dependencies down", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthChecker{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}, time.Second)

		status, ok := uc.Check(context.Background())
		assert.False(t, ok)
		assert.Equal(t, map[string]string{"database": "up", "redis": "down"}, status)
	})

	t.Run("Should keep probing after another dependency fails", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthChecker{
			"redis": func(context.Context) error { return errors.New("connection refused") },
			"database": func(ctx context.Context) error {
				time.Sleep(30 * time.Millisecond)
				return ctx.Err()
			},
		}, time.Second)

		status, ok := uc.Check(context.Background())
		assert.False(t, ok)
		assert.Equal(t, "up", status["database"])
		assert.Equal(t, "down", status["redis"])
	})

	t.Run("Should bound slow checks by the timeout", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthChecker{
			"database": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, 20*time.Millisecond)

		start := time.Now()
		status, ok := uc.Check(context.Background())
		assert.False(t, ok)
		assert.Equal(t, "down", status["database"])
		assert.Less(t, time.Since(start), time.Second)
	})
}
