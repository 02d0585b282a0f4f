package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/slmgo/scriptlm/internal/core/domain"
)

const expiresLayout = "2006-01-02"

type generatePlainRequest struct {
	ExtraParams map[string]any `json:"extra_params"`
}

type generateEncodedRequest struct {
	LicenseKey  *string        `json:"license_key" validate:"omitempty,license_key"`
	Expires     *string        `json:"expires" validate:"omitempty,datetime=2006-01-02"`
	ExtraParams map[string]any `json:"extra_params"`
}

type generateDemoEncodedRequest struct {
	LicenseKey  string         `json:"license_key" validate:"required,license_key"`
	Expires     *string        `json:"expires" validate:"omitempty,datetime=2006-01-02"`
	ExtraParams map[string]any `json:"extra_params"`
}

type updateIssuedRequest struct {
	LicenseKey  string         `json:"license_key" validate:"required,license_key"`
	Expires     *string        `json:"expires" validate:"omitempty,datetime=2006-01-02"`
	ExtraParams map[string]any `json:"extra_params"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag name.
	_ = v.RegisterValidation("license_key", func(fl validator.FieldLevel) bool {
		return domain.ValidateLicenseKey(fl.Field().String()) == nil
	})
	return v
}

// parseExpires turns the wire date into a time and enforces that it lies in
// the future. The cap policy runs later, inside the core.
func parseExpires(raw *string, now time.Time) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := time.Parse(expiresLayout, *raw)
	if err != nil {
		return nil, domain.ValidationErrorf("expires must be a %s date", expiresLayout)
	}
	if err := domain.ValidateExpires(t, now); err != nil {
		return nil, err
	}
	return &t, nil
}
