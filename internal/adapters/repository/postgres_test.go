package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("scriptlm_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432").
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		t.Fatalf("failed to open db: %s", err)
	}

	schemaPath := filepath.Join(".", "schema.sql")
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("failed to read schema: %s", err)
	}

	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %s", err)
	}

	return db, func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}
}

func seedCatalog(t *testing.T, db *sql.DB) {
	stmts := []string{
		`INSERT INTO categories (id, name, description) VALUES ('free_scripts', 'Free scripts', '')`,
		`INSERT INTO scripts (id, name, description, category_id, allow_issue_plain)
		 VALUES ('test_script', 'Test Script', 'Script for testing purposes', 'free_scripts', TRUE)`,
		`INSERT INTO scripts (id, name, description, category_id, enabled)
		 VALUES ('retired_script', 'Retired Script', '', 'free_scripts', FALSE)`,
		`INSERT INTO tags (name, description) VALUES ('indicators', NULL)`,
		`INSERT INTO script_tags (script_id, tag_id) SELECT 'test_script', id FROM tags WHERE name = 'indicators'`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed catalog: %s", err)
		}
	}
}

func TestPostgresRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPostgresRepository(db)
	ctx := context.Background()
	seedCatalog(t, db)

	// 1. Catalog lookups
	script, err := repo.GetScript(ctx, "test_script")
	if err != nil {
		t.Fatalf("GetScript failed: %v", err)
	}
	if script == nil || script.Name != "Test Script" || !script.AllowIssuePlain {
		t.Errorf("Unexpected script: %+v", script)
	}
	if len(script.Tags) != 1 || script.Tags[0].Name != "indicators" {
		t.Errorf("Unexpected tags: %+v", script.Tags)
	}

	tag := "indicators"
	tagged, err := repo.ListScripts(ctx, domain.ScriptFilter{Tag: &tag})
	if err != nil || len(tagged) != 1 || tagged[0].ID != "test_script" {
		t.Errorf("Tag filter expected test_script, got %+v (err %v)", tagged, err)
	}

	untagged, err := repo.ListScripts(ctx, domain.ScriptFilter{WithoutTag: &tag})
	if err != nil || len(untagged) != 1 || untagged[0].ID != "retired_script" {
		t.Errorf("Without-tag filter expected retired_script, got %+v (err %v)", untagged, err)
	}

	enabled := true
	active, err := repo.ListScripts(ctx, domain.ScriptFilter{Enabled: &enabled})
	if err != nil || len(active) != 1 {
		t.Errorf("Enabled filter expected 1 script, got %+v (err %v)", active, err)
	}

	// 2. Registry append + permanence lookup
	key := "0xcafebabe"
	user := "user-1"
	permanent := &domain.IssuedLicense{
		ScriptID:   "test_script",
		LicenseKey: &key,
		IssuedBy:   &user,
		IssueType:  domain.IssueEncodedLK,
		Action:     domain.ActionGenerate,
	}
	if err := repo.Add(ctx, permanent); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	trialEnd := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	trial := &domain.IssuedLicense{
		ScriptID:    "test_script",
		LicenseKey:  &key,
		IssueType:   domain.IssueEncodedExpLK,
		Action:      domain.ActionGenerate,
		DemoLK:      true,
		Expires:     &trialEnd,
		ExtraParams: map[string]any{"a": float64(1)},
	}
	if err := repo.Add(ctx, trial); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	found, err := repo.FindPermanent(ctx, "test_script", key)
	if err != nil {
		t.Fatalf("FindPermanent failed: %v", err)
	}
	if found == nil || found.ID != permanent.ID {
		t.Errorf("Expected the permanent record, got %+v", found)
	}

	if missing, _ := repo.FindPermanent(ctx, "test_script", "0x00000000"); missing != nil {
		t.Errorf("Expected no record for unknown key, got %+v", missing)
	}

	listed, err := repo.ListIssued(ctx, domain.Page{Limit: 10})
	if err != nil {
		t.Fatalf("ListIssued failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(listed))
	}
	if listed[0].ExtraParams == nil || listed[0].ExtraParams["a"] != float64(1) {
		t.Errorf("Expected newest-first ordering with extra params, got %+v", listed[0])
	}

	// 3. API keys
	apiKey := &domain.APIKey{
		ID:          "550e8400-e29b-41d4-a716-446655440000",
		UserID:      "user-1",
		Name:        "ci-key",
		KeyHash:     "deadbeef",
		KeyPrefix:   "slm_dead",
		Permissions: []domain.Permission{domain.PermForceIssuePlain},
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.CreateAPIKey(ctx, apiKey); err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}

	got, err := repo.GetAPIKeyByHash(ctx, "deadbeef")
	if err != nil || got == nil {
		t.Fatalf("GetAPIKeyByHash failed: %v", err)
	}
	if !got.HasPermission(domain.PermForceIssuePlain) {
		t.Errorf("Expected force-plain permission, got %+v", got.Permissions)
	}

	if err := repo.RevokeAPIKey(ctx, apiKey.ID); err != nil {
		t.Fatalf("RevokeAPIKey failed: %v", err)
	}
	revoked, _ := repo.GetAPIKeyByHash(ctx, "deadbeef")
	if revoked == nil || revoked.Active {
		t.Errorf("Expected key to be revoked, got %+v", revoked)
	}
}
