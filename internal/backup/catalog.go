package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/humidor-app/humidor-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Catalog manages a single directory of backup archives and drives the
// export, pack, unpack and import stages against the live database and media
// root.
type Catalog struct {
	db        *sql.DB
	root      string
	mediaRoot string
	order     TableOrder
	version   string

	// Serializes the mutating operations (create, restore, delete, upload).
	// A restore interleaved with anything else would corrupt state.
	mu sync.Mutex
}

// New creates a catalog over dir, creating the directory if needed. The table
// order and both roots are injected so tests can run against a scratch schema
// and directory.
func New(db *sql.DB, dir, mediaRoot, version string, order TableOrder) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	return &Catalog{
		db:        db,
		root:      dir,
		mediaRoot: mediaRoot,
		order:     order,
		version:   version,
	}, nil
}

// Create exports the database and media tree into a new timestamped archive
// and returns the archive's name. A failed create leaves no archive behind.
func (c *Catalog) Create(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshots, err := Export(ctx, c.db, c.order)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	meta := models.BackupMetadata{
		Version:      c.version,
		CreatedAt:    now.Format(time.RFC3339),
		DatabaseType: "sqlite",
	}

	// Creation is serialized by the mutex; if a second create lands within
	// the same second, wait out the name rather than overwrite it.
	name := archiveName(now)
	path := filepath.Join(c.root, name)
	for {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		now = now.Add(time.Second)
		name = archiveName(now)
		path = filepath.Join(c.root, name)
	}

	if err := Pack(path, meta, snapshots, c.mediaRoot); err != nil {
		return "", err
	}

	log.Info().Str("backup", name).Msg("Backup created")
	return name, nil
}

// List enumerates the archives in the catalog directory, newest first.
func (c *Catalog) List() ([]models.BackupInfo, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	backups := make([]models.BackupInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		backups = append(backups, models.BackupInfo{
			Name: e.Name(),
			Date: info.ModTime().UTC().Format(time.RFC3339),
			Size: humanize.Bytes(uint64(info.Size())),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].Date != backups[j].Date {
			return backups[i].Date > backups[j].Date
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// Delete removes exactly the named archive.
func (c *Catalog) Delete(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path, err := resolveWithin(c.root, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}

// Open returns a reader over the named archive for download, along with its
// file info. The caller closes the file.
func (c *Catalog) Open(name string) (*os.File, os.FileInfo, error) {
	path, err := resolveWithin(c.root, name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open backup: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// Upload stores externally supplied archive bytes under filename. The content
// is not inspected here; a bad archive surfaces when it is restored.
func (c *Catalog) Upload(filename string, r io.Reader) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.HasSuffix(filename, Extension) {
		return "", fmt.Errorf("%w: only %s files are accepted", ErrBadArchive, Extension)
	}
	path, err := resolveWithin(c.root, filename)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("store uploaded backup: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("store uploaded backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("store uploaded backup: %w", err)
	}
	return filepath.Base(path), nil
}

// Restore rebuilds the database and media tree from the named archive in the
// catalog. The database portion runs in one transaction, so a failure leaves
// the previous state intact. The context aborts the restore at any point
// before the destructive import begins.
func (c *Catalog) Restore(ctx context.Context, name string) error {
	path, err := resolveWithin(c.root, name)
	if err != nil {
		return err
	}
	return c.RestoreFile(ctx, path)
}

// RestoreFile restores from an archive at an explicit path, bypassing the
// catalog name lookup.
func (c *Catalog) RestoreFile(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := OpenArchive(path)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Info().
		Str("backup_version", a.Metadata.Version).
		Str("backup_created_at", a.Metadata.CreatedAt).
		Msg("Restoring backup")

	// Reject zip-slip entries before any state is destroyed.
	if err := a.VerifyMedia(c.mediaRoot); err != nil {
		return err
	}
	// Last abort point: beyond here the restore is destructive.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := Import(ctx, c.db, c.order, a.Tables); err != nil {
		return err
	}

	// The media tree is a full mirror of the archive, not a merge.
	if err := os.RemoveAll(c.mediaRoot); err != nil {
		return fmt.Errorf("clear media root: %w", err)
	}
	if err := os.MkdirAll(c.mediaRoot, 0755); err != nil {
		return fmt.Errorf("recreate media root: %w", err)
	}
	return a.ExtractMedia(c.mediaRoot)
}
