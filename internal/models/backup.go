package models

// BackupInfo describes one archive file in the backup catalog.
type BackupInfo struct {
	Name string `json:"name"`
	Date string `json:"date"` // RFC3339 last-modified time
	Size string `json:"size"` // Human readable, e.g. "1.2 MB"
}

// BackupMetadata is the provenance record embedded in every archive.
type BackupMetadata struct {
	Version      string `json:"version"`
	CreatedAt    string `json:"created_at"`
	DatabaseType string `json:"database_type"`
}
