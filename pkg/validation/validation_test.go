package validation_test

import (
	"testing"

	"jetsuite-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locationRequest struct {
	Path string `validate:"required,max=32,app_path"`
}

func TestAppPath(t *testing.T) {
	v := validation.New()

	for _, path := range []string{"/", "/app", "/app/dashboard", "/pricing?plan=pro", "/terms#refunds", "/r/acme-dental"} {
		assert.NoError(t, v.Struct(locationRequest{Path: path}), path)
	}

	for _, path := range []string{"app", "//evil.example.com", "/app/../admin", "/app dashboard", "https://example.com/app"} {
		assert.Error(t, v.Struct(locationRequest{Path: path}), path)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := validation.New()

	err := v.Struct(locationRequest{})
	require.Error(t, err)
	assert.Equal(t, []string{"Path: is required"}, validation.FormatValidationErrors(err))

	err = v.Struct(locationRequest{Path: "/app/" + "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"})
	require.Error(t, err)
	assert.Equal(t, []string{"Path: must be at most 32 characters"}, validation.FormatValidationErrors(err))

	err = v.Struct(locationRequest{Path: "app"})
	require.Error(t, err)
	assert.Equal(t, []string{"Path: must be an absolute path such as /app/dashboard"}, validation.FormatValidationErrors(err))
}
