package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveWithin resolves name against root and guarantees the result is still
// inside root. It is the single containment guard for every externally
// supplied file name: catalog operations addressing archives by name, and
// archive entry names during media extraction.
func resolveWithin(root, name string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	rel := filepath.FromSlash(name)
	// An absolute name can never address anything inside root; Join would
	// silently re-anchor it there instead.
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	joined := filepath.Join(absRoot, rel)
	if joined == absRoot || !strings.HasPrefix(joined, absRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return joined, nil
}
