package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/publicintelligence/datahub/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DatasetSource     = (*Store)(nil)
	_ driven.DatasetWriter     = (*Store)(nil)
	_ driven.ConnectionChecker = (*Store)(nil)
)

// dbFile is the database file name inside the data directory.
const dbFile = "datasets.db"

// Store is the SQLite-backed local dataset registry.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.datahub/data/datasets.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".datahub", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

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

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
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

// Name identifies the store.
func (s *Store) Name() string {
	return string(domain.BackendSQLite)
}

// Fetch returns every record, most recently updated first.
func (s *Store) Fetch(ctx context.Context, _ domain.FetchOptions) ([]domain.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, project, description, source_name, source_link,
		       file_type, date_acquired, date_updated, license, tags
		FROM datasets
		ORDER BY date_updated DESC, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var records []domain.RawRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			id, title, project, description, sourceName, sourceLink string
			fileType, dateAcquired, dateUpdated, license, tagsJSON  string
		)
		if err := rows.Scan(&id, &title, &project, &description, &sourceName, &sourceLink,
			&fileType, &dateAcquired, &dateUpdated, &license, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}

		// Tags stay []any; the normaliser decides what to keep.
		tags := []any{}
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", id, err)
		}

		records = append(records, domain.RawRecord{
			"id":           id,
			"title":        title,
			"project":      project,
			"description":  description,
			"sourceName":   sourceName,
			"sourceLink":   sourceLink,
			"fileType":     fileType,
			"dateAcquired": dateAcquired,
			"dateUpdated":  dateUpdated,
			"license":      license,
			"tags":         tags,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating datasets: %w", err)
	}

	return records, nil
}

// Create inserts a record under a fresh UUID.
func (s *Store) Create(ctx context.Context, input domain.NewDataset) (domain.RawRecord, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	raw := input.ToRaw(uuid.New().String(), s.now().UTC())

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO datasets (id, title, project, description, source_name, source_link,
		                      file_type, date_acquired, date_updated, license, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, raw["id"], input.Title, input.Project, input.Description, input.SourceName, input.SourceLink,
		input.FileType, raw["dateAcquired"], raw["dateUpdated"], input.License, string(tagsJSON))
	if err != nil {
		return nil, fmt.Errorf("inserting dataset: %w", err)
	}

	return raw, nil
}

// Check reports the row count and the stored columns.
func (s *Store) Check(ctx context.Context) (*domain.ConnectionReport, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM datasets").Scan(&count); err != nil {
		return nil, fmt.Errorf("counting datasets: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT name, type FROM pragma_table_info('datasets') ORDER BY cid")
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	defer rows.Close()

	report := &domain.ConnectionReport{
		Backend: domain.BackendSQLite,
		Target:  s.path,
		Title:   "Local dataset registry",
		Records: count,
	}
	for rows.Next() {
		var p domain.PropertyInfo
		if err := rows.Scan(&p.Name, &p.Type); err != nil {
			return nil, fmt.Errorf("scanning schema: %w", err)
		}
		report.Properties = append(report.Properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schema: %w", err)
	}

	return report, nil
}

// migrate applies pending up migrations in version order and records them.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_datasets.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}
