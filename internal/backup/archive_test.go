package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humidor-app/humidor-be/internal/models"
)

func TestTableOrderReversed(t *testing.T) {
	order := TableOrder{"a", "b", "c"}
	assert.Equal(t, TableOrder{"c", "b", "a"}, order.Reversed())
	// The original is untouched.
	assert.Equal(t, TableOrder{"a", "b", "c"}, order)
}

func TestDefaultTableOrderPutsReferencedTablesFirst(t *testing.T) {
	pos := make(map[string]int, len(DefaultTableOrder))
	for i, table := range DefaultTableOrder {
		pos[table] = i
	}

	deps := map[string][]string{
		"humidors":       {"users"},
		"cigars":         {"humidors", "brands", "sizes", "ring_gauges", "strengths", "origins"},
		"favorites":      {"users", "cigars"},
		"wish_list":      {"users", "cigars"},
		"humidor_shares": {"humidors", "users"},
	}
	for table, refs := range deps {
		for _, ref := range refs {
			assert.Less(t, pos[ref], pos[table], "%s must precede %s", ref, table)
		}
	}
}

func TestResolveWithin(t *testing.T) {
	root := t.TempDir()

	good, err := resolveWithin(root, "backup_2024.01.01.00.00.00.zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "backup_2024.01.01.00.00.00.zip"), good)

	nested, err := resolveWithin(root, "sub/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "photo.jpg"), nested)

	for _, name := range []string{"../escape", "a/../../escape", "..", ".", "", "/etc/passwd", "/abs/path/../../etc"} {
		_, err := resolveWithin(root, name)
		assert.ErrorIs(t, err, ErrUnsafePath, "name %q", name)
	}
}

func TestArchiveNameFormat(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "backup_2024.03.09.14.05.07.zip", archiveName(ts))
}

func TestPackWritesTablesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ordered.zip")
	meta := models.BackupMetadata{Version: "1", CreatedAt: "2024-01-01T00:00:00Z", DatabaseType: "sqlite"}
	snapshots := []TableSnapshot{
		{Name: "users", Rows: []map[string]any{{"id": "u1"}}},
		{Name: "humidors", Rows: nil},
		{Name: "cigars", Rows: []map[string]any{{"id": "c1"}}},
	}

	require.NoError(t, Pack(path, meta, snapshots, filepath.Join(t.TempDir(), "missing")))

	rc, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer rc.Close()

	f, err := rc.Open("database.json")
	require.NoError(t, err)
	raw, err := io.ReadAll(f)
	require.NoError(t, err)
	f.Close()

	text := string(raw)
	assert.Less(t, strings.Index(text, `"users"`), strings.Index(text, `"humidors"`))
	assert.Less(t, strings.Index(text, `"humidors"`), strings.Index(text, `"cigars"`))

	// A table without rows serializes as an empty array, not null.
	var tables map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &tables))
	assert.JSONEq(t, "[]", string(tables["humidors"]))
}

func TestOpenArchiveReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.zip")
	meta := models.BackupMetadata{Version: "2.1", CreatedAt: "2024-05-05T10:00:00Z", DatabaseType: "sqlite"}
	snapshots := []TableSnapshot{
		{Name: "users", Rows: []map[string]any{{"id": "u1", "username": "alice"}}},
	}

	require.NoError(t, Pack(path, meta, snapshots, filepath.Join(t.TempDir(), "missing")))

	a, err := OpenArchive(path)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, meta, a.Metadata)
	require.Len(t, a.Tables["users"], 1)
	assert.Equal(t, "alice", a.Tables["users"][0]["username"])
	assert.Empty(t, a.MediaEntries())
}

func TestExportDecodesJSONColumns(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec("INSERT INTO ring_gauges(id, gauge, common_names) VALUES('rg1', 52, '[\"toro\"]')")
	require.NoError(t, err)

	snapshots, err := Export(context.Background(), db, TableOrder{"ring_gauges"})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Len(t, snapshots[0].Rows, 1)

	// The JSON column comes out as a real array, not a quoted string.
	names, ok := snapshots[0].Rows[0]["common_names"].([]any)
	require.True(t, ok, "common_names should decode to an array, got %T", snapshots[0].Rows[0]["common_names"])
	assert.Equal(t, []any{"toro"}, names)
}

func TestExportUnknownTableFails(t *testing.T) {
	db := newTestDB(t)
	_, err := Export(context.Background(), db, TableOrder{"no_such_table"})
	assert.Error(t, err)
}
