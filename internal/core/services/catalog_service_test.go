package services

import (
	"context"
	"testing"

	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/slmgo/scriptlm/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestCatalogGetScriptNotFound(t *testing.T) {
	scripts := &testutil.MockScriptRepo{}
	registry := &testutil.MockRegistry{}
	svc := NewCatalogService(scripts, registry)

	scripts.On("GetScript", "missing").Return(nil, nil)

	_, err := svc.GetScript(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrScriptNotFound)
}

func TestCatalogGetScript(t *testing.T) {
	scripts := &testutil.MockScriptRepo{}
	registry := &testutil.MockRegistry{}
	svc := NewCatalogService(scripts, registry)

	want := testutil.DefaultScript()
	scripts.On("GetScript", want.ID).Return(&want, nil)

	got, err := svc.GetScript(context.Background(), want.ID)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
}

func TestCatalogListIssuedNormalizesPage(t *testing.T) {
	scripts := &testutil.MockScriptRepo{}
	registry := &testutil.MockRegistry{}
	svc := NewCatalogService(scripts, registry)

	registry.On("ListIssued", domain.Page{Limit: domain.DefaultPageLimit}).Return([]domain.IssuedLicense{}, nil)

	_, err := svc.ListIssued(context.Background(), domain.Page{})
	require.NoError(t, err)
	registry.AssertExpectations(t)

	registry.On("ListIssued", domain.Page{Limit: domain.MaxPageLimit, Offset: 50}).Return([]domain.IssuedLicense{}, nil)
	_, err = svc.ListIssued(context.Background(), domain.Page{Limit: 5000, Offset: 50})
	require.NoError(t, err)
}
