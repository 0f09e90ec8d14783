// Package sqlite persists the append-only audit trail of failed recipe
// modifications.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dishcraft/dishcraft/internal/domain"
)

// Config contains audit database settings.
type Config struct {
	Path string `env:"AUDIT_DB_PATH" envDefault:"data/audit.db"`
}

// AuditStore implements domain.AuditStore on SQLite.
type AuditStore struct {
	db    *sql.DB
	clock func() time.Time
}

// Open initializes the audit store, creating the database file and schema if
// needed.
func Open(ctx context.Context, cfg Config) (*AuditStore, error) {
	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &AuditStore{db: db, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *AuditStore) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS recipe_modification_errors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    recipe_snippet TEXT NOT NULL,
    error_code INTEGER NOT NULL,
    description TEXT NOT NULL,
    model TEXT,
    occurred_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_modification_errors_occurred ON recipe_modification_errors(occurred_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Insert appends one audit row. Rows are write-once; there is no update or
// delete path.
func (s *AuditStore) Insert(ctx context.Context, record *domain.ModificationError) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	occurredAt := record.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.clock()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipe_modification_errors (recipe_snippet, error_code, description, model, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.RecipeSnippet, record.Code, record.Description, record.Model, occurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit row: %w", err)
	}

	return nil
}

// RecentFailures returns up to limit rows, newest first. Used for
// diagnostics.
func (s *AuditStore) RecentFailures(ctx context.Context, limit int) ([]domain.ModificationError, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT recipe_snippet, error_code, description, model, occurred_at
		 FROM recipe_modification_errors
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit rows: %w", err)
	}
	defer rows.Close()

	var records []domain.ModificationError
	for rows.Next() {
		var rec domain.ModificationError
		if scanErr := rows.Scan(&rec.RecipeSnippet, &rec.Code, &rec.Description, &rec.Model, &rec.OccurredAt); scanErr != nil {
			return nil, fmt.Errorf("scan audit row: %w", scanErr)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close releases underlying resources.
func (s *AuditStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
