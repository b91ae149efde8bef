package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/humidor-app/humidor-be/internal/models"
)

const (
	metadataEntry = "metadata.json"
	databaseEntry = "database.json"
	mediaPrefix   = "uploads/"

	// Extension carried by every archive in the catalog.
	Extension = ".zip"
)

// archiveName returns the timestamped file name for a new archive. Second
// resolution keeps names sortable; the catalog serializes creation and steps
// past an existing name, so collisions cannot occur.
func archiveName(t time.Time) string {
	return "backup_" + t.Format("2006.01.02.15.04.05") + Extension
}

// Pack writes metadata, the table snapshots and the media tree into a single
// zip archive at path, compressing each entry. The archive is assembled under
// a temporary name and renamed into place on success, so a failed pack never
// leaves a half-written file visible under its final name.
func Pack(path string, meta models.BackupMetadata, snapshots []TableSnapshot, mediaRoot string) (err error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	zw := zip.NewWriter(f)
	if err = writeJSONEntry(zw, metadataEntry, meta); err != nil {
		return err
	}
	if err = writeJSONEntry(zw, databaseEntry, orderedTables(snapshots)); err != nil {
		return err
	}
	if err = addMediaTree(zw, mediaRoot); err != nil {
		return fmt.Errorf("archive media: %w", err)
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return os.Rename(tmp, path)
}

func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// orderedTables marshals snapshots as a single JSON object keyed by table
// name, keeping the keys in dependency order. The order in the file is only
// for readability; the importer re-derives ordering from its TableOrder.
type orderedTables []TableSnapshot

func (t orderedTables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, snap := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(snap.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		rows := snap.Rows
		if rows == nil {
			rows = []map[string]any{}
		}
		b, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("marshal table %s: %w", snap.Name, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// addMediaTree walks the media root and stores every file under uploads/ with
// its directory structure preserved. A missing media root is not an error;
// there is simply nothing uploaded yet.
func addMediaTree(zw *zip.Writer, root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		name := mediaPrefix + filepath.ToSlash(relPath)
		if info.IsDir() {
			_, err = zw.Create(name + "/")
			return err
		}
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
}
