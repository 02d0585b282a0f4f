package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/slmgo/scriptlm/internal/infrastructure/metrics"
)

// PostgresRepository implements the catalog, license-registry and API-key
// ports using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates and returns a new PostgresRepository instance.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const scriptColumns = `id, name, description, category_id, enabled, is_active, extra_params_schema,
	       allow_issue_plain, allow_issue_encoded, allow_issue_encoded_lk,
	       allow_issue_encoded_exp, allow_issue_encoded_lk_exp`

func (r *PostgresRepository) GetScript(ctx context.Context, id string) (*domain.Script, error) {
	query := `SELECT ` + scriptColumns + ` FROM scripts WHERE id = $1`

	var s domain.Script
	var schema []byte
	errRow := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.CategoryID, &s.Enabled, &s.IsActive, &schema,
		&s.AllowIssuePlain, &s.AllowIssueEncoded, &s.AllowIssueEncodedLK,
		&s.AllowIssueEncodedExp, &s.AllowIssueEncodedLKExp,
	)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, nil
	}
	if errRow != nil {
		return nil, errRow
	}
	if schema != nil {
		if err := json.Unmarshal(schema, &s.ExtraParamsSchema); err != nil {
			return nil, fmt.Errorf("decode extra_params_schema for %s: %w", s.ID, err)
		}
	}

	tags, err := r.tagsForScript(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Tags = tags
	return &s, nil
}

func (r *PostgresRepository) ListScripts(ctx context.Context, filter domain.ScriptFilter) ([]domain.Script, error) {
	query := `SELECT ` + scriptColumns + ` FROM scripts WHERE 1=1`
	var args []any

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.Enabled != nil {
		args = append(args, *filter.Enabled)
		query += fmt.Sprintf(" AND enabled = $%d", len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(" AND is_active = $%d", len(args))
	}
	if filter.Tag != nil {
		args = append(args, *filter.Tag)
		query += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM script_tags st JOIN tags t ON t.id = st.tag_id
			WHERE st.script_id = scripts.id AND t.name = $%d)`, len(args))
	}
	if filter.WithoutTag != nil {
		args = append(args, *filter.WithoutTag)
		query += fmt.Sprintf(` AND NOT EXISTS (SELECT 1 FROM script_tags st JOIN tags t ON t.id = st.tag_id
			WHERE st.script_id = scripts.id AND t.name = $%d)`, len(args))
	}
	query += " ORDER BY name"

	rows, errQuery := r.db.QueryContext(ctx, query, args...)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var scripts []domain.Script
	for rows.Next() {
		var s domain.Script
		var schema []byte
		if errScan := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.CategoryID, &s.Enabled, &s.IsActive, &schema,
			&s.AllowIssuePlain, &s.AllowIssueEncoded, &s.AllowIssueEncodedLK,
			&s.AllowIssueEncodedExp, &s.AllowIssueEncodedLKExp,
		); errScan != nil {
			return nil, errScan
		}
		if schema != nil {
			if err := json.Unmarshal(schema, &s.ExtraParamsSchema); err != nil {
				return nil, fmt.Errorf("decode extra_params_schema for %s: %w", s.ID, err)
			}
		}
		scripts = append(scripts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range scripts {
		tags, err := r.tagsForScript(ctx, scripts[i].ID)
		if err != nil {
			return nil, err
		}
		scripts[i].Tags = tags
	}
	return scripts, nil
}

func (r *PostgresRepository) tagsForScript(ctx context.Context, scriptID string) ([]domain.Tag, error) {
	query := `SELECT t.id, t.name, t.description FROM tags t
	          JOIN script_tags st ON st.tag_id = t.id WHERE st.script_id = $1 ORDER BY t.name`
	rows, errQuery := r.db.QueryContext(ctx, query, scriptID)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		var description sql.NullString
		if errScan := rows.Scan(&t.ID, &t.Name, &description); errScan != nil {
			return nil, errScan
		}
		if description.Valid {
			t.Description = &description.String
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

const issuedColumns = `id, issued_at, license_key, script_id, issued_by, issue_type, action, demo_lk, expires, extra_params`

// Add appends an issued-license record. Records are write-once; there is no
// update or delete path.
func (r *PostgresRepository) Add(ctx context.Context, record *domain.IssuedLicense) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.IssuedAt.IsZero() {
		record.IssuedAt = time.Now().UTC()
	}

	var extraParams []byte
	if record.ExtraParams != nil {
		var err error
		extraParams, err = json.Marshal(record.ExtraParams)
		if err != nil {
			return fmt.Errorf("encode extra_params: %w", err)
		}
	}

	query := `INSERT INTO issued_licenses (` + issuedColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.IssuedAt, record.LicenseKey, record.ScriptID, record.IssuedBy,
		string(record.IssueType), string(record.Action), record.DemoLK, record.Expires, extraParams,
	)
	return err
}

// FindPermanent returns the most recent permanent record for the script/key
// pair. The permanence filter is part of the query, not the caller's concern.
func (r *PostgresRepository) FindPermanent(ctx context.Context, scriptID string, licenseKey string) (*domain.IssuedLicense, error) {
	query := `SELECT ` + issuedColumns + ` FROM issued_licenses
	          WHERE script_id = $1 AND license_key = $2 AND expires IS NULL
	          ORDER BY issued_at DESC LIMIT 1`

	record, err := scanIssued(r.db.QueryRowContext(ctx, query, scriptID, licenseKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *PostgresRepository) ListIssued(ctx context.Context, page domain.Page) ([]domain.IssuedLicense, error) {
	query := `SELECT ` + issuedColumns + ` FROM issued_licenses
	          ORDER BY issued_at DESC LIMIT $1 OFFSET $2`
	rows, errQuery := r.db.QueryContext(ctx, query, page.Limit, page.Offset)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var records []domain.IssuedLicense
	for rows.Next() {
		record, errScan := scanIssued(rows)
		if errScan != nil {
			return nil, errScan
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssued(row rowScanner) (*domain.IssuedLicense, error) {
	var record domain.IssuedLicense
	var licenseKey, issuedBy sql.NullString
	var issueType, action string
	var expires sql.NullTime
	var extraParams []byte

	if err := row.Scan(
		&record.ID, &record.IssuedAt, &licenseKey, &record.ScriptID, &issuedBy,
		&issueType, &action, &record.DemoLK, &expires, &extraParams,
	); err != nil {
		return nil, err
	}

	if licenseKey.Valid {
		record.LicenseKey = &licenseKey.String
	}
	if issuedBy.Valid {
		record.IssuedBy = &issuedBy.String
	}
	record.IssueType = domain.IssueType(issueType)
	record.Action = domain.Action(action)
	if expires.Valid {
		e := expires.Time
		record.Expires = &e
	}
	if extraParams != nil {
		if err := json.Unmarshal(extraParams, &record.ExtraParams); err != nil {
			return nil, fmt.Errorf("decode extra_params: %w", err)
		}
	}
	return &record, nil
}

func (r *PostgresRepository) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	query := `SELECT id, user_id, name, key_hash, key_prefix, permissions, active, created_at, expires_at
	          FROM api_keys WHERE key_hash = $1`

	var key domain.APIKey
	var permissions []byte
	var expiresAt sql.NullTime
	errRow := r.db.QueryRowContext(ctx, query, keyHash).Scan(
		&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix,
		&permissions, &key.Active, &key.CreatedAt, &expiresAt,
	)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, nil
	}
	if errRow != nil {
		return nil, errRow
	}
	if permissions != nil {
		if err := json.Unmarshal(permissions, &key.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	if expiresAt.Valid {
		e := expiresAt.Time
		key.ExpiresAt = &e
	}
	return &key, nil
}

func (r *PostgresRepository) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	permissions, err := json.Marshal(key.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	query := `INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, permissions, active, created_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.db.ExecContext(ctx, query,
		key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix,
		permissions, key.Active, key.CreatedAt, key.ExpiresAt,
	)
	return err
}

func (r *PostgresRepository) ListAPIKeys(ctx context.Context, userID string) ([]domain.APIKey, error) {
	query := `SELECT id, user_id, name, key_hash, key_prefix, permissions, active, created_at, expires_at
	          FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`
	rows, errQuery := r.db.QueryContext(ctx, query, userID)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var keys []domain.APIKey
	for rows.Next() {
		var key domain.APIKey
		var permissions []byte
		var expiresAt sql.NullTime
		if errScan := rows.Scan(
			&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix,
			&permissions, &key.Active, &key.CreatedAt, &expiresAt,
		); errScan != nil {
			return nil, errScan
		}
		if permissions != nil {
			if err := json.Unmarshal(permissions, &key.Permissions); err != nil {
				return nil, fmt.Errorf("decode permissions: %w", err)
			}
		}
		if expiresAt.Valid {
			e := expiresAt.Time
			key.ExpiresAt = &e
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *PostgresRepository) RevokeAPIKey(ctx context.Context, id string) error {
	query := `UPDATE api_keys SET active = FALSE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	metrics.DBConnectionsActive.Set(float64(r.db.Stats().OpenConnections))
	return r.db.PingContext(ctx)
}
