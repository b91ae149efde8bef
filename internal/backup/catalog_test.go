package backup

import (
	"archive/zip"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidor-app/humidor-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestCatalog(t *testing.T, db *sql.DB) (*Catalog, string, string) {
	t.Helper()
	dir := t.TempDir()
	mediaRoot := filepath.Join(t.TempDir(), "uploads")
	c, err := New(db, dir, mediaRoot, "test", DefaultTableOrder)
	require.NoError(t, err)
	return c, dir, mediaRoot
}

// seedData populates a small but representative inventory: three users, two
// humidors, five cigars, a favorite, a share and a ring gauge with a JSON
// name list.
func seedData(t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []struct {
		sql  string
		args []any
	}{
		{"INSERT INTO users(id, username, email, full_name, password_hash, is_admin) VALUES(?, ?, ?, ?, ?, ?)",
			[]any{"u1", "alice", "alice@example.com", "Alice", "x", 1}},
		{"INSERT INTO users(id, username, email, full_name, password_hash, is_admin) VALUES(?, ?, ?, ?, ?, ?)",
			[]any{"u2", "bob", "bob@example.com", "Bob", "x", 0}},
		{"INSERT INTO users(id, username, email, full_name, password_hash, is_admin) VALUES(?, ?, ?, ?, ?, ?)",
			[]any{"u3", "carol", "carol@example.com", "Carol", "x", 0}},
		{"INSERT INTO humidors(id, user_id, name) VALUES(?, ?, ?)", []any{"h1", "u1", "Desktop"}},
		{"INSERT INTO humidors(id, user_id, name) VALUES(?, ?, ?)", []any{"h2", "u2", "Cabinet"}},
		{"INSERT INTO brands(id, name) VALUES(?, ?)", []any{"b1", "Padron"}},
		{"INSERT INTO ring_gauges(id, gauge, common_names) VALUES(?, ?, ?)",
			[]any{"rg1", 50, `["robusto","rothschild"]`}},
	}
	for i := 1; i <= 5; i++ {
		stmts = append(stmts, struct {
			sql  string
			args []any
		}{"INSERT INTO cigars(id, humidor_id, brand_id, name, quantity, ring_gauge_id) VALUES(?, ?, ?, ?, ?, ?)",
			[]any{"c" + string(rune('0'+i)), "h1", "b1", "Cigar", i, "rg1"}})
	}
	stmts = append(stmts, struct {
		sql  string
		args []any
	}{"INSERT INTO favorites(id, user_id, cigar_id) VALUES(?, ?, ?)", []any{"f1", "u1", "c1"}})
	stmts = append(stmts, struct {
		sql  string
		args []any
	}{"INSERT INTO humidor_shares(id, humidor_id, shared_with_user_id, shared_by_user_id, permission_level) VALUES(?, ?, ?, ?, ?)",
		[]any{"s1", "h1", "u2", "u1", "edit"}})

	for _, s := range stmts {
		_, err := db.Exec(s.sql, s.args...)
		require.NoError(t, err)
	}
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestCreateAndRestoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	c, dir, mediaRoot := newTestCatalog(t, db)
	seedData(t, db)

	// A media file that must survive the round trip.
	require.NoError(t, os.MkdirAll(mediaRoot, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(mediaRoot, "photo.jpg"), []byte("jpeg"), 0644))

	name, err := c.Create(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "backup_"))
	assert.True(t, strings.HasSuffix(name, ".zip"))

	// No temp file may be left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"))
	}

	// Mutate everything after the backup.
	_, err = db.Exec("DELETE FROM users WHERE id = 'u3'")
	require.NoError(t, err)
	_, err = db.Exec("DELETE FROM cigars")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(mediaRoot, "photo.jpg"), []byte("changed"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(mediaRoot, "extra.png"), []byte("png"), 0644))

	require.NoError(t, c.Restore(context.Background(), name))

	assert.Equal(t, 3, count(t, db, "users"))
	assert.Equal(t, 2, count(t, db, "humidors"))
	assert.Equal(t, 5, count(t, db, "cigars"))
	assert.Equal(t, 1, count(t, db, "favorites"))
	assert.Equal(t, 1, count(t, db, "humidor_shares"))

	// Identifiers and relationships come back verbatim.
	var humidorID string
	require.NoError(t, db.QueryRow("SELECT humidor_id FROM cigars WHERE id = 'c1'").Scan(&humidorID))
	assert.Equal(t, "h1", humidorID)

	// The JSON column survives as its original text form.
	var names string
	require.NoError(t, db.QueryRow("SELECT common_names FROM ring_gauges WHERE id = 'rg1'").Scan(&names))
	assert.JSONEq(t, `["robusto","rothschild"]`, names)

	// The media tree is a mirror of the archive: the changed file is back to
	// its old contents and the extra file is gone.
	data, err := os.ReadFile(filepath.Join(mediaRoot, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
	_, err = os.Stat(filepath.Join(mediaRoot, "extra.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestCreateIsNonDestructive(t *testing.T) {
	db := newTestDB(t)
	c, _, _ := newTestCatalog(t, db)
	seedData(t, db)

	_, err := c.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, count(t, db, "users"))
	assert.Equal(t, 5, count(t, db, "cigars"))
}

func TestRestoreEmptyBackupClearsDatabase(t *testing.T) {
	db := newTestDB(t)
	c, _, _ := newTestCatalog(t, db)

	name, err := c.Create(context.Background())
	require.NoError(t, err)

	seedData(t, db)
	require.NoError(t, c.Restore(context.Background(), name))

	for _, table := range DefaultTableOrder {
		assert.Equal(t, 0, count(t, db, table), table)
	}
}

func TestListSortsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	c, dir, _ := newTestCatalog(t, db)

	older := filepath.Join(dir, "backup_2024.01.01.00.00.00.zip")
	newer := filepath.Join(dir, "backup_2024.06.01.00.00.00.zip")
	require.NoError(t, os.WriteFile(older, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("bb"), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, old, old))

	// A stray non-archive file must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	backups, err := c.List()
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, "backup_2024.06.01.00.00.00.zip", backups[0].Name)
	assert.Equal(t, "backup_2024.01.01.00.00.00.zip", backups[1].Name)
	assert.NotEmpty(t, backups[0].Size)
	assert.NotEmpty(t, backups[0].Date)
}

func TestListIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	c, _, _ := newTestCatalog(t, db)

	_, err := c.Create(context.Background())
	require.NoError(t, err)

	first, err := c.List()
	require.NoError(t, err)
	second, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeleteRejectsUnsafeNames(t *testing.T) {
	db := newTestDB(t)
	c, dir, _ := newTestCatalog(t, db)

	// A file outside the catalog that a traversal would hit.
	outside := filepath.Join(filepath.Dir(dir), "outside.zip")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	for _, name := range []string{"../outside.zip", "/etc/passwd", "..", "."} {
		err := c.Delete(name)
		assert.ErrorIs(t, err, ErrUnsafePath, name)
	}

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestDeleteMissingBackup(t *testing.T) {
	db := newTestDB(t)
	c, _, _ := newTestCatalog(t, db)
	assert.ErrorIs(t, c.Delete("backup_2024.01.01.00.00.00.zip"), ErrNotFound)
}

func TestOpenRejectsUnsafeNames(t *testing.T) {
	db := newTestDB(t)
	c, _, _ := newTestCatalog(t, db)
	_, _, err := c.Open("../../secret.zip")
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestUploadValidation(t *testing.T) {
	db := newTestDB(t)
	c, dir, _ := newTestCatalog(t, db)

	_, err := c.Upload("backup.tar.gz", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBadArchive)

	_, err = c.Upload("../escape.zip", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsafePath)

	name, err := c.Upload("restored.zip", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, "restored.zip", name)
	data, err := os.ReadFile(filepath.Join(dir, "restored.zip"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

// writeArchive builds a zip directly so tests can produce malformed and
// hostile containers.
func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestRestoreRejectsMissingMetadata(t *testing.T) {
	db := newTestDB(t)
	c, dir, _ := newTestCatalog(t, db)
	seedData(t, db)

	writeArchive(t, filepath.Join(dir, "bad.zip"), map[string]string{
		"database.json": "{}",
	})

	err := c.Restore(context.Background(), "bad.zip")
	assert.ErrorIs(t, err, ErrBadArchive)
	assert.Equal(t, 3, count(t, db, "users"))
}

func TestRestoreRejectsCorruptArchive(t *testing.T) {
	db := newTestDB(t)
	c, dir, _ := newTestCatalog(t, db)
	seedData(t, db)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.zip"), []byte("not a zip"), 0644))

	err := c.Restore(context.Background(), "junk.zip")
	assert.ErrorIs(t, err, ErrBadArchive)
	assert.Equal(t, 3, count(t, db, "users"))
}

func TestRestoreRejectsZipSlip(t *testing.T) {
	db := newTestDB(t)
	c, dir, mediaRoot := newTestCatalog(t, db)
	seedData(t, db)

	writeArchive(t, filepath.Join(dir, "evil.zip"), map[string]string{
		"metadata.json":      `{"version":"1","created_at":"2024-01-01T00:00:00Z","database_type":"sqlite"}`,
		"database.json":      "{}",
		"uploads/../pwn.txt": "owned",
	})

	err := c.Restore(context.Background(), "evil.zip")
	assert.ErrorIs(t, err, ErrUnsafePath)

	// Rejected before anything was destroyed.
	assert.Equal(t, 3, count(t, db, "users"))
	_, err = os.Stat(filepath.Join(filepath.Dir(mediaRoot), "pwn.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRestoreHonorsCancelledContext(t *testing.T) {
	db := newTestDB(t)
	c, _, _ := newTestCatalog(t, db)
	seedData(t, db)

	name, err := c.Create(context.Background())
	require.NoError(t, err)

	_, err = db.Exec("DELETE FROM users WHERE id = 'u3'")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Restore(ctx, name)
	assert.ErrorIs(t, err, context.Canceled)

	// Nothing was restored.
	assert.Equal(t, 2, count(t, db, "users"))
}

func TestRestoreMissingBackup(t *testing.T) {
	db := newTestDB(t)
	c, _, _ := newTestCatalog(t, db)
	err := c.Restore(context.Background(), "backup_1999.01.01.00.00.00.zip")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadThenRestore(t *testing.T) {
	db := newTestDB(t)
	c, dir, _ := newTestCatalog(t, db)
	seedData(t, db)

	name, err := c.Create(context.Background())
	require.NoError(t, err)

	// Move the archive out, wipe the catalog, and bring it back in through
	// the upload path.
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.NoError(t, c.Delete(name))

	uploaded, err := c.Upload("from-another-machine.zip", strings.NewReader(string(data)))
	require.NoError(t, err)

	_, err = db.Exec("DELETE FROM favorites")
	require.NoError(t, err)
	_, err = db.Exec("DELETE FROM cigars")
	require.NoError(t, err)

	require.NoError(t, c.Restore(context.Background(), uploaded))
	assert.Equal(t, 5, count(t, db, "cigars"))
	assert.Equal(t, 1, count(t, db, "favorites"))
}
