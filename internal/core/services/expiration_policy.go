package services

import (
	"context"
	"fmt"
	"time"

	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/slmgo/scriptlm/internal/core/ports"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ExpirationPolicy computes the effective expiration date of an issuance.
// Demo keys get a server-assigned trial window; non-demo keys are trusted up
// to a ceiling, or may remain permanent.
type ExpirationPolicy struct {
	oracle   ports.DemoKeyOracle
	settings domain.Settings
	clock    ports.Clock
}

func NewExpirationPolicy(oracle ports.DemoKeyOracle, settings domain.Settings, clock ports.Clock) *ExpirationPolicy {
	if clock == nil {
		clock = systemClock{}
	}
	return &ExpirationPolicy{oracle: oracle, settings: settings, clock: clock}
}

// Resolve returns a copy of config carrying the effective expiration, plus
// whether the key is a demo key. Keyless issuance passes through untouched.
// A nil resolved expiration means permanent.
func (p *ExpirationPolicy) Resolve(ctx context.Context, config domain.LicenseConfig) (domain.LicenseConfig, bool, error) {
	if config.LicenseKey == nil {
		return config, false, nil
	}

	isDemo, err := p.oracle.IsDemoKey(ctx, *config.LicenseKey)
	if err != nil {
		return config, false, fmt.Errorf("demo key lookup: %w", err)
	}

	today := domain.DateOf(p.clock.Now())
	if isDemo {
		if config.Expires == nil {
			expires := today.AddDate(0, 0, p.settings.DemoKeyDefaultExpirationDays)
			config.Expires = &expires
		} else {
			maxDate := today.AddDate(0, 0, p.settings.DemoKeyMaxExpirationDays)
			if domain.DateOf(*config.Expires).After(maxDate) {
				config.Expires = &maxDate
			}
		}
		return config, true, nil
	}

	if config.Expires != nil {
		maxDate := today.AddDate(0, 0, p.settings.UserKeyMaxExpirationDays)
		if domain.DateOf(*config.Expires).After(maxDate) {
			return config, false, domain.PermissionDeniedf(
				"trial for non demo key cannot exceed %d days",
				p.settings.UserKeyMaxExpirationDays,
			)
		}
	}
	return config, false, nil
}
