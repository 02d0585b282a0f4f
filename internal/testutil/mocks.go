package testutil

import (
	"context"
	"time"

	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// FixedClock pins the issuance clock for tests.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }

// MockRegistry implements ports.LicenseRegistry for testing.
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Add(ctx context.Context, record *domain.IssuedLicense) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockRegistry) FindPermanent(ctx context.Context, scriptID string, licenseKey string) (*domain.IssuedLicense, error) {
	args := m.Called(scriptID, licenseKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IssuedLicense), args.Error(1)
}

func (m *MockRegistry) ListIssued(ctx context.Context, page domain.Page) ([]domain.IssuedLicense, error) {
	args := m.Called(page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IssuedLicense), args.Error(1)
}

// MockScriptRepo implements ports.ScriptRepository for testing.
type MockScriptRepo struct {
	mock.Mock
}

func (m *MockScriptRepo) GetScript(ctx context.Context, id string) (*domain.Script, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Script), args.Error(1)
}

func (m *MockScriptRepo) ListScripts(ctx context.Context, filter domain.ScriptFilter) ([]domain.Script, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Script), args.Error(1)
}

// MockAPIKeyRepo implements ports.APIKeyRepository for testing.
type MockAPIKeyRepo struct {
	mock.Mock
}

func (m *MockAPIKeyRepo) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	args := m.Called(keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepo) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockAPIKeyRepo) ListAPIKeys(ctx context.Context, userID string) ([]domain.APIKey, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepo) RevokeAPIKey(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockOracle implements ports.DemoKeyOracle for testing.
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) IsDemoKey(ctx context.Context, licenseKey string) (bool, error) {
	args := m.Called(licenseKey)
	return args.Bool(0), args.Error(1)
}

// MockGenerator implements ports.ArtifactGenerator for testing.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, script domain.Script, config domain.LicenseConfig) (*domain.GeneratedScript, error) {
	args := m.Called(script, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedScript), args.Error(1)
}
