package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned when no export has the requested id.
var ErrNotFound = errors.New("export not found")

// ============================================================
// Export Record
// ============================================================

type ExportRecord struct {
	ID        string          `json:"id"`
	IconName  string          `json:"iconName"`
	Format    string          `json:"format"`
	Options   json.RawMessage `json:"options"`
	Bytes     int             `json:"bytes"`
	Path      string          `json:"-"`
	CreatedAt string          `json:"createdAt"`
}

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies the schema migration.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// Create stores rec. An empty CreatedAt is set to the current UTC time.
func (r *Repository) Create(ctx context.Context, rec *ExportRecord) error {
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	options := string(rec.Options)
	if options == "" {
		options = "{}"
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO exports (id, icon_name, format, options, bytes, path, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, rec.ID, rec.IconName, rec.Format, options, rec.Bytes, rec.Path, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*ExportRecord, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, icon_name, format, options, bytes, path, created_at
        FROM exports
        WHERE id = ?
    `, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns the most recent exports first, at most limit of them.
func (r *Repository) List(ctx context.Context, limit int) ([]*ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, icon_name, format, options, bytes, path, created_at
        FROM exports
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []*ExportRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*ExportRecord, error) {
	var rec ExportRecord
	var options string
	if err := s.Scan(&rec.ID, &rec.IconName, &rec.Format, &options, &rec.Bytes, &rec.Path, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Options = json.RawMessage(options)
	return &rec, nil
}

// OpenSQLite opens the database at dbPath, creating its directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
