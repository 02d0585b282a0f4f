package services

import (
	"context"

	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/slmgo/scriptlm/internal/core/ports"
)

type catalogService struct {
	scripts  ports.ScriptRepository
	registry ports.LicenseRegistry
}

// NewCatalogService exposes the read-only script catalog and the issued
// license history.
func NewCatalogService(scripts ports.ScriptRepository, registry ports.LicenseRegistry) ports.CatalogService {
	return &catalogService{scripts: scripts, registry: registry}
}

func (s *catalogService) GetScript(ctx context.Context, id string) (*domain.Script, error) {
	script, err := s.scripts.GetScript(ctx, id)
	if err != nil {
		return nil, err
	}
	if script == nil {
		return nil, domain.ErrScriptNotFound
	}
	return script, nil
}

func (s *catalogService) ListScripts(ctx context.Context, filter domain.ScriptFilter) ([]domain.Script, error) {
	return s.scripts.ListScripts(ctx, filter)
}

func (s *catalogService) ListIssued(ctx context.Context, page domain.Page) ([]domain.IssuedLicense, error) {
	return s.registry.ListIssued(ctx, page.Normalize())
}
