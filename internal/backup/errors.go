package backup

import "errors"

var (
	// ErrNotFound is returned when a named archive does not exist in the
	// catalog directory.
	ErrNotFound = errors.New("backup not found")

	// ErrUnsafePath is returned when a user-supplied name or an archive entry
	// resolves outside its containing directory.
	ErrUnsafePath = errors.New("path escapes its containing directory")

	// ErrBadArchive is returned for containers that are unreadable or are
	// missing a required entry.
	ErrBadArchive = errors.New("invalid backup archive")
)
