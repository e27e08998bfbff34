// Package pathsafe maps caller-supplied relative paths onto the media root.
//
// The containment check is lexical only. A symlink inside the root that points
// elsewhere is followed by the filesystem calls made on the resolved path.
package pathsafe

import (
	"errors"
	"path"
	"path/filepath"
	"strings"

	"mediabrowser/internal/apperr"
)

// Root is a fixed absolute directory that resolved paths must stay inside.
type Root struct {
	abs string
}

// Resolved is a path proven to live under the root.
type Resolved struct {
	// Abs is the host filesystem path.
	Abs string
	// Rel is slash-separated and relative to the root, "" for the root itself.
	Rel string
}

// New creates a Root for dir, making it absolute.
func New(dir string) (*Root, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("media root required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Root{abs: filepath.Clean(abs)}, nil
}

// Dir returns the absolute root directory.
func (r *Root) Dir() string {
	return r.abs
}

// CleanRel lexically normalizes p into a slash-separated relative path.
// Leading slashes are ignored, so "/music" and "music" name the same entry.
// The result may still start with ".." when p climbs above its starting point.
func CleanRel(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = strings.TrimLeft(p, "/")
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}

// Resolve normalizes rel and joins it onto the root. Paths that would climb
// out of the root fail with an access denied error.
func (r *Root) Resolve(rel string) (Resolved, error) {
	if strings.ContainsRune(rel, 0) {
		return Resolved{}, apperr.AccessDenied("Access denied")
	}
	clean := CleanRel(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return Resolved{}, apperr.AccessDenied("Access denied")
	}

	abs := filepath.Join(r.abs, filepath.FromSlash(clean))
	if abs != r.abs && !strings.HasPrefix(abs, r.abs+string(filepath.Separator)) {
		return Resolved{}, apperr.AccessDenied("Access denied")
	}
	return Resolved{Abs: abs, Rel: clean}, nil
}

// JoinRel joins a child name onto a slash-separated relative parent.
func JoinRel(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
