package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migration = "../../../migrations/001_init_exports.sql"

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "exports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background(), migration))
	return repo
}

func TestCreateAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	rec := &ExportRecord{
		ID:       "a1",
		IconName: "Heart",
		Format:   "ico",
		Options:  json.RawMessage(`{"icoSizes":[16,32]}`),
		Bytes:    1234,
		Path:     "/tmp/a1/icon.ico",
	}
	require.NoError(t, repo.Create(ctx, rec))
	assert.NotEmpty(t, rec.CreatedAt)

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestGetMissing(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDuplicate(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &ExportRecord{ID: "x", IconName: "Star", Format: "svg"}))
	assert.Error(t, repo.Create(ctx, &ExportRecord{ID: "x", IconName: "Star", Format: "svg"}))
}

func TestListNewestFirst(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &ExportRecord{ID: "old", IconName: "Star", Format: "svg", CreatedAt: "2024-01-01T00:00:00Z"}))
	require.NoError(t, repo.Create(ctx, &ExportRecord{ID: "new", IconName: "Bolt", Format: "png", CreatedAt: "2024-02-01T00:00:00Z"}))
	require.NoError(t, repo.Create(ctx, &ExportRecord{ID: "mid", IconName: "Home", Format: "ico", CreatedAt: "2024-01-15T00:00:00Z"}))

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, rec := range all {
		ids[i] = rec.ID
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
	assert.JSONEq(t, `{}`, string(all[0].Options))

	two, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestInitMissingMigration(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer db.Close()
	assert.Error(t, New(db).Init(context.Background(), "does/not/exist.sql"))
}
