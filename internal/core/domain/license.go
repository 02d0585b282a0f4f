// Package domain contains the core business logic and entities for scriptlm.
package domain

import (
	"time"
)

// IssueType classifies an issuance by encoding and by the presence of a
// license key and expiration date.
type IssueType string

const (
	// IssuePlain represents a script issued without encoding.
	IssuePlain IssueType = "PLAIN"
	// IssueEncoded represents an encoded script with no key and no expiration.
	IssueEncoded IssueType = "ENCODED"
	// IssueEncodedLK represents a script encoded with a license key.
	IssueEncodedLK IssueType = "ENCODED_LK"
	// IssueEncodedExp represents a script encoded with an expiration date.
	IssueEncodedExp IssueType = "ENCODED_EXP"
	// IssueEncodedExpLK represents a script encoded with both a license key and an expiration date.
	IssueEncodedExpLK IssueType = "ENCODED_EXP_LK"
)

// Action tags an issued-license record with the operation that produced it.
type Action string

const (
	// ActionGenerate marks a record created by a generate call.
	ActionGenerate Action = "GENERATE"
	// ActionUpdate marks a record created by an update of a prior permanent license.
	ActionUpdate Action = "UPDATE"
)

// LicenseConfig is the per-request issuance configuration. Values are passed
// by value through the pipeline; the expiration policy returns a resolved
// copy instead of mutating the caller's config.
type LicenseConfig struct {
	Encode      bool
	UserID      *string
	LicenseKey  *string
	Expires     *time.Time // date precision, nil means permanent
	ExtraParams map[string]any
}

// IssueType derives the issuance classification from the config. It must be
// evaluated on the resolved config: a demo key with no requested expiration
// carries the auto-filled trial date by the time a record is written.
func (c LicenseConfig) IssueType() IssueType {
	if !c.Encode {
		return IssuePlain
	}
	gotKey := c.LicenseKey != nil
	gotExpires := c.Expires != nil
	switch {
	case gotKey && gotExpires:
		return IssueEncodedExpLK
	case gotKey:
		return IssueEncodedLK
	case gotExpires:
		return IssueEncodedExp
	default:
		return IssueEncoded
	}
}

// IssuedLicense is an append-only record of one successful issuance. Records
// are never mutated or deleted; an update writes a new record.
type IssuedLicense struct {
	ID          string         `json:"id"`
	IssuedAt    time.Time      `json:"issued_at"`
	LicenseKey  *string        `json:"license_key,omitempty"`
	ScriptID    string         `json:"script_id"`
	IssuedBy    *string        `json:"issued_by,omitempty"`
	IssueType   IssueType      `json:"issue_type"`
	Action      Action         `json:"action"`
	DemoLK      bool           `json:"demo_lk"`
	Expires     *time.Time     `json:"expires,omitempty"`
	ExtraParams map[string]any `json:"extra_params,omitempty"`
}

// IsPermanent reports whether the license was issued without an expiration.
// Only permanent licenses may be updated.
func (l IssuedLicense) IsPermanent() bool {
	return l.Expires == nil
}

// GeneratedScript is the artifact returned to the caller.
type GeneratedScript struct {
	Data     []byte
	Filename string
}

// Settings holds the process-wide expiration knobs, wired once at startup
// and read-only afterwards.
type Settings struct {
	DemoKeyDefaultExpirationDays int
	DemoKeyMaxExpirationDays     int
	UserKeyMaxExpirationDays     int
}

// DateOf truncates a timestamp to its UTC calendar date. Expiration
// comparisons operate on dates, not instants.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
