package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Absolute location: no scheme, host or whitespace; query and fragment allowed
	appPathRegex = regexp.MustCompile(`^/[A-Za-z0-9._~!$&'()*+,;=:@%/?#-]*$`)
)

// New returns a validator with the custom validators registered
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("app_path", AppPath)
}

// AppPath validates an in-app location such as "/app/dashboard"
func AppPath(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	if strings.HasPrefix(val, "//") || strings.Contains(val, "..") {
		return false
	}
	return appPathRegex.MatchString(val)
}
