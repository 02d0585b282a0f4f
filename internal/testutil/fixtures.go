package testutil

import (
	"time"

	"github.com/slmgo/scriptlm/internal/core/domain"
)

// DefaultScript returns a downloadable script with every issuance mode
// allowed, the common starting point of issuance tests.
func DefaultScript() domain.Script {
	return domain.Script{
		ID:                     "test_script",
		Name:                   "Test Script",
		Description:            "Script for testing purposes",
		CategoryID:             "free_scripts",
		Enabled:                true,
		IsActive:               true,
		AllowIssuePlain:        true,
		AllowIssueEncoded:      true,
		AllowIssueEncodedLK:    true,
		AllowIssueEncodedExp:   true,
		AllowIssueEncodedLKExp: true,
	}
}

func StrPtr(s string) *string { return &s }

func TimePtr(t time.Time) *time.Time { return &t }
