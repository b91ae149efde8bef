package backup

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/humidor-app/humidor-be/internal/models"
)

// Archive is a decomposed backup container. Metadata and the table data are
// parsed eagerly; media entries are read lazily from the underlying zip so a
// large upload tree is streamed rather than buffered in memory.
type Archive struct {
	Metadata models.BackupMetadata
	Tables   map[string][]map[string]any

	rc *zip.ReadCloser
}

// OpenArchive opens and validates a backup container. metadata.json and
// database.json must be present and well formed; top-level entries other than
// those two and the uploads/ tree are ignored. The caller must Close the
// archive.
func OpenArchive(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	a := &Archive{rc: rc}
	if err := readJSONEntry(&rc.Reader, metadataEntry, &a.Metadata); err != nil {
		rc.Close()
		return nil, err
	}
	if err := readJSONEntry(&rc.Reader, databaseEntry, &a.Tables); err != nil {
		rc.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the underlying zip file.
func (a *Archive) Close() error {
	return a.rc.Close()
}

func readJSONEntry(r *zip.Reader, name string, v any) error {
	f, err := r.Open(name)
	if err != nil {
		return fmt.Errorf("%w: missing %s", ErrBadArchive, name)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrBadArchive, name, err)
	}
	return nil
}

// MediaEntries returns the archive's uploads/ entries. Contents are streamed
// on demand through each entry's Open method.
func (a *Archive) MediaEntries() []*zip.File {
	var entries []*zip.File
	for _, f := range a.rc.File {
		if strings.HasPrefix(f.Name, mediaPrefix) && f.Name != mediaPrefix {
			entries = append(entries, f)
		}
	}
	return entries
}

// VerifyMedia checks every media entry name against the extraction root
// without writing anything, so a crafted archive is rejected before the
// restore destroys any state.
func (a *Archive) VerifyMedia(root string) error {
	for _, f := range a.MediaEntries() {
		if _, err := a.entryDest(root, f); err != nil {
			return err
		}
	}
	return nil
}

// ExtractMedia writes every uploads/ entry below root with its directory
// structure preserved. Each entry name is containment-checked individually.
func (a *Archive) ExtractMedia(root string) error {
	for _, f := range a.MediaEntries() {
		dest, err := a.entryDest(root, f)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := extractFile(f, dest); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func (a *Archive) entryDest(root string, f *zip.File) (string, error) {
	rel := strings.TrimPrefix(f.Name, mediaPrefix)
	return resolveWithin(root, rel)
}

func extractFile(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
