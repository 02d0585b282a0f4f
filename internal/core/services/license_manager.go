package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/slmgo/scriptlm/internal/core/ports"
	"github.com/slmgo/scriptlm/internal/infrastructure/metrics"
)

// LicenseManager orchestrates the issuance pipeline: expiration policy,
// artifact generation, then a single append to the registry. The registry
// write is the last side effect, so a failed generation never leaves a
// record behind.
type LicenseManager struct {
	policy    *ExpirationPolicy
	registry  ports.LicenseRegistry
	generator ports.ArtifactGenerator
	logger    *slog.Logger
}

func NewLicenseManager(
	policy *ExpirationPolicy,
	registry ports.LicenseRegistry,
	generator ports.ArtifactGenerator,
	logger *slog.Logger,
) ports.LicenseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LicenseManager{
		policy:    policy,
		registry:  registry,
		generator: generator,
		logger:    logger,
	}
}

func (m *LicenseManager) GenerateScript(ctx context.Context, script domain.Script, config domain.LicenseConfig) (*domain.GeneratedScript, error) {
	return m.issue(ctx, script, config, domain.ActionGenerate)
}

// UpdateIssued renews the terms of a previously issued license. Only a license
// issued permanently (no expiration) for this exact script/key pair may be
// updated; trials are never updatable.
func (m *LicenseManager) UpdateIssued(ctx context.Context, script domain.Script, config domain.LicenseConfig) (*domain.GeneratedScript, error) {
	if config.LicenseKey == nil {
		return nil, domain.PermissionDeniedf("script has not been generated permanently for this key")
	}

	issued, err := m.registry.FindPermanent(ctx, script.ID, *config.LicenseKey)
	if err != nil {
		return nil, fmt.Errorf("find existing license: %w", err)
	}
	if issued == nil || !issued.IsPermanent() {
		return nil, domain.PermissionDeniedf("script has not been generated permanently for this key")
	}

	return m.issue(ctx, script, config, domain.ActionUpdate)
}

func (m *LicenseManager) issue(ctx context.Context, script domain.Script, config domain.LicenseConfig, action domain.Action) (*domain.GeneratedScript, error) {
	timer := prometheus.NewTimer(metrics.IssuanceDuration.WithLabelValues(string(action)))
	defer timer.ObserveDuration()

	resolved, isDemo, err := m.policy.Resolve(ctx, config)
	if err != nil {
		metrics.IssuanceTotal.WithLabelValues(string(config.IssueType()), string(action), resultLabel(err)).Inc()
		return nil, err
	}

	generated, err := m.generator.Generate(ctx, script, resolved)
	if err != nil {
		metrics.IssuanceTotal.WithLabelValues(string(resolved.IssueType()), string(action), "error").Inc()
		return nil, fmt.Errorf("generate artifact: %w", err)
	}

	record := &domain.IssuedLicense{
		LicenseKey:  resolved.LicenseKey,
		ScriptID:    script.ID,
		IssuedBy:    resolved.UserID,
		IssueType:   resolved.IssueType(),
		Action:      action,
		DemoLK:      isDemo,
		Expires:     resolved.Expires,
		ExtraParams: resolved.ExtraParams,
	}
	if err := m.registry.Add(ctx, record); err != nil {
		metrics.IssuanceTotal.WithLabelValues(string(record.IssueType), string(action), "error").Inc()
		return nil, fmt.Errorf("append issued license: %w", err)
	}

	m.logger.Info("license issued",
		"script", script.ID,
		"issue_type", record.IssueType,
		"action", action,
		"demo_lk", isDemo,
	)
	metrics.IssuanceTotal.WithLabelValues(string(record.IssueType), string(action), "ok").Inc()
	return generated, nil
}

func resultLabel(err error) string {
	if errors.Is(err, domain.ErrPermissionDenied) {
		return "denied"
	}
	return "error"
}
