package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-connect/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-connect/internal/core/domain"
	"github.com/custodia-labs/sercha-connect/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides the token and state
// store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-connect/data/tokens.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-connect", "data")
	}

	// The database holds bearer tokens.
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "tokens.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := os.Chmod(dbPath, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("restricting database permissions: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// TokenStore returns a TokenStore interface backed by this store.
func (s *Store) TokenStore() driven.TokenStore {
	return &tokenStore{store: s}
}

// StateStore returns a StateStore interface backed by this store.
func (s *Store) StateStore() driven.StateStore {
	return &stateStore{store: s}
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Token Store ====================

// tokenStore implements driven.TokenStore.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Put stores or replaces the record for provider in a single statement.
func (s *tokenStore) Put(ctx context.Context, provider string, record domain.TokenRecord) error {
	if provider == "" || record.AccessToken == "" {
		return domain.ErrInvalidInput
	}

	extraJSON, err := json.Marshal(record.Extra)
	if err != nil {
		return fmt.Errorf("marshalling extra: %w", err)
	}

	obtainedAt := record.ObtainedAt
	if obtainedAt.IsZero() {
		obtainedAt = s.store.now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO tokens (provider, access_token, refresh_token, token_type, scope, expires_at, extra, obtained_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			scope = excluded.scope,
			expires_at = excluded.expires_at,
			extra = excluded.extra,
			obtained_at = excluded.obtained_at
	`, provider, record.AccessToken, record.RefreshToken, record.TokenType, record.Scope,
		nullUnix(record.ExpiresAt), string(extraJSON), obtainedAt.UnixNano())

	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// Get retrieves the record for provider.
func (s *tokenStore) Get(ctx context.Context, provider string) (*domain.TokenRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, token_type, scope, expires_at, extra, obtained_at
		FROM tokens WHERE provider = ?
	`, provider)

	return scanToken(row)
}

// Remove deletes the record for provider.
func (s *tokenStore) Remove(ctx context.Context, provider string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM tokens WHERE provider = ?", provider)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// ListProviders returns the sorted names of providers holding a record.
func (s *tokenStore) ListProviders(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT provider FROM tokens ORDER BY provider")
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	defer rows.Close()

	providers := []string{}
	for rows.Next() {
		var provider string
		if err := rows.Scan(&provider); err != nil {
			return nil, fmt.Errorf("scanning provider: %w", err)
		}
		providers = append(providers, provider)
	}
	return providers, rows.Err()
}

func scanToken(row *sql.Row) (*domain.TokenRecord, error) {
	var record domain.TokenRecord
	var expiresAt sql.NullInt64
	var extraJSON sql.NullString
	var obtainedAt int64
	err := row.Scan(&record.AccessToken, &record.RefreshToken, &record.TokenType, &record.Scope,
		&expiresAt, &extraJSON, &obtainedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning token: %w", err)
	}

	if expiresAt.Valid {
		t := fromUnix(expiresAt.Int64)
		record.ExpiresAt = &t
	}
	if extraJSON.Valid && extraJSON.String != "" && extraJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(extraJSON.String), &record.Extra); err != nil {
			return nil, fmt.Errorf("unmarshaling extra: %w", err)
		}
	}
	record.ObtainedAt = fromUnix(obtainedAt)

	return &record, nil
}

// ==================== State Store ====================

// stateStore implements driven.StateStore.
type stateStore struct {
	store *Store
}

var _ driven.StateStore = (*stateStore)(nil)

// Save records a pending authorization and sweeps expired ones.
func (s *stateStore) Save(ctx context.Context, pending domain.PendingAuthorization) error {
	if pending.State == "" || pending.Provider == "" {
		return domain.ErrInvalidInput
	}

	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM pending_authorizations WHERE expires_at <= ?", s.store.now().UnixNano(),
	); err != nil {
		return fmt.Errorf("sweeping pending authorizations: %w", err)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO pending_authorizations (state, provider, code_verifier, redirect_uri, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, pending.State, pending.Provider, pending.CodeVerifier, pending.RedirectURI, pending.ExpiresAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving pending authorization: %w", err)
	}
	return nil
}

// Consume deletes and returns the pending authorization for state.
// The delete and read are one statement, so a state is consumed at most once.
func (s *stateStore) Consume(ctx context.Context, state string) (*domain.PendingAuthorization, error) {
	row := s.store.db.QueryRowContext(ctx, `
		DELETE FROM pending_authorizations WHERE state = ?
		RETURNING state, provider, code_verifier, redirect_uri, expires_at
	`, state)

	var pending domain.PendingAuthorization
	var expiresAt int64
	if err := row.Scan(&pending.State, &pending.Provider, &pending.CodeVerifier,
		&pending.RedirectURI, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("consuming pending authorization: %w", err)
	}
	pending.ExpiresAt = fromUnix(expiresAt)

	if !s.store.now().Before(pending.ExpiresAt) {
		return nil, domain.ErrNotFound
	}
	return &pending, nil
}

// ==================== Helpers ====================

func nullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromUnix(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}
