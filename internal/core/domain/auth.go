package domain

import (
	"time"
)

// Permission is an elevated grant carried by an API key.
type Permission string

const (
	// PermForceIssuePlain allows issuing a plain script even when the script's
	// capability flags forbid it.
	PermForceIssuePlain Permission = "force_issue_plain_script"
	// PermForceIssueEncoded allows issuing an encoded script even when the
	// script's capability flags forbid it.
	PermForceIssueEncoded Permission = "force_issue_encoded_script"
)

// APIKey authenticates a caller of the management endpoints.
type APIKey struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"name"`       // Human-readable label, e.g. "partner-portal"
	KeyHash     string       `json:"-"`          // SHA-256 hash of the key (never store raw)
	KeyPrefix   string       `json:"key_prefix"` // First 8 chars for identification
	Permissions []Permission `json:"permissions"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
}

// HasPermission reports whether the key carries the given grant.
func (k APIKey) HasPermission(p Permission) bool {
	for _, have := range k.Permissions {
		if have == p {
			return true
		}
	}
	return false
}
