package ports

import (
	"context"
	"time"

	"github.com/slmgo/scriptlm/internal/core/domain"
)

// ScriptRepository reads the script catalog. Lookups return nil when the
// script does not exist.
type ScriptRepository interface {
	GetScript(ctx context.Context, id string) (*domain.Script, error)
	ListScripts(ctx context.Context, filter domain.ScriptFilter) ([]domain.Script, error)
}

// LicenseRegistry is the append-only issued-license store. Records are never
// updated or deleted.
type LicenseRegistry interface {
	// Add appends a record, filling IssuedAt with now when the caller left it
	// zero.
	Add(ctx context.Context, record *domain.IssuedLicense) error
	// FindPermanent returns the most recent record for the script/key pair
	// with no expiration, or nil.
	FindPermanent(ctx context.Context, scriptID string, licenseKey string) (*domain.IssuedLicense, error)
	ListIssued(ctx context.Context, page domain.Page) ([]domain.IssuedLicense, error)
}

// APIKeyRepository stores management API keys.
type APIKeyRepository interface {
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	ListAPIKeys(ctx context.Context, userID string) ([]domain.APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// DemoKeyOracle classifies license keys. The real implementation talks to
// the remote license-manager service; latency and caching are its concern.
type DemoKeyOracle interface {
	IsDemoKey(ctx context.Context, licenseKey string) (bool, error)
}

// ArtifactGenerator produces the script file for a resolved configuration.
// Any failure aborts the issuance before a record is written.
type ArtifactGenerator interface {
	Generate(ctx context.Context, script domain.Script, config domain.LicenseConfig) (*domain.GeneratedScript, error)
}

// Clock supplies time to the core so tests can pin it.
type Clock interface {
	Now() time.Time
}

// LicenseService is the issuance decision engine.
type LicenseService interface {
	GenerateScript(ctx context.Context, script domain.Script, config domain.LicenseConfig) (*domain.GeneratedScript, error)
	UpdateIssued(ctx context.Context, script domain.Script, config domain.LicenseConfig) (*domain.GeneratedScript, error)
}

// CatalogService exposes the read-only catalog and the issuance history.
type CatalogService interface {
	GetScript(ctx context.Context, id string) (*domain.Script, error)
	ListScripts(ctx context.Context, filter domain.ScriptFilter) ([]domain.Script, error)
	ListIssued(ctx context.Context, page domain.Page) ([]domain.IssuedLicense, error)
}
