// Package catalog lists and searches the media tree.
package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mediabrowser/internal/apperr"
	"mediabrowser/internal/pathsafe"
)

// DefaultSearchLimit caps the number of search hits.
const DefaultSearchLimit = 100

// EntryType is either a file or a directory.
type EntryType string

const (
	TypeFile      EntryType = "file"
	TypeDirectory EntryType = "directory"
)

// Entry is a single catalog item. Path is relative to the media root and
// always uses forward slashes.
type Entry struct {
	Name string    `json:"name"`
	Type EntryType `json:"type"`
	Path string    `json:"path"`
}

func (e Entry) IsDir() bool {
	return e.Type == TypeDirectory
}

// Denylist hides entries from listings and searches at every depth.
type Denylist struct {
	Names    []string
	Dotfiles bool
}

// DefaultDenylist hides the UI bundle, the dependency cache and dotfiles.
func DefaultDenylist() Denylist {
	return Denylist{
		Names:    []string{"web_player", "node_modules"},
		Dotfiles: true,
	}
}

// Denies reports whether name is hidden.
func (d Denylist) Denies(name string) bool {
	if d.Dotfiles && strings.HasPrefix(name, ".") {
		return true
	}
	return slices.Contains(d.Names, name)
}

// Options configures a Catalog.
type Options struct {
	Deny        Denylist
	SearchLimit int
}

// Catalog reads the directory tree under a media root.
type Catalog struct {
	root  *pathsafe.Root
	deny  Denylist
	limit int
}

// New creates a Catalog over root.
func New(root *pathsafe.Root, opts Options) *Catalog {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	return &Catalog{
		root:  root,
		deny:  opts.Deny,
		limit: opts.SearchLimit,
	}
}

// Root returns the media root.
func (c *Catalog) Root() *pathsafe.Root {
	return c.root
}

// Denylist returns the names hidden by this catalog.
func (c *Catalog) Denylist() Denylist {
	return c.deny
}

// List returns the immediate children of the directory at rel.
func (c *Catalog) List(rel string) ([]Entry, error) {
	res, err := c.root.Resolve(rel)
	if err != nil {
		return nil, err
	}

	st, err := os.Stat(res.Abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperr.NotFound("Path not found")
	} else if err != nil {
		return nil, apperr.Internal("Failed to list directory", err)
	}
	if !st.IsDir() {
		return nil, apperr.NotFound("Path not found")
	}

	ents, err := os.ReadDir(res.Abs)
	if err != nil {
		return nil, apperr.Internal("Failed to list directory", err)
	}
	return c.entries(res.Rel, ents), nil
}

// Search walks the whole tree and returns entries whose name contains query,
// ignoring case. Matching directories are still descended into. Directories
// that cannot be read are skipped. A blank query matches nothing, otherwise
// the query is matched as given, surrounding spaces included.
func (c *Catalog) Search(query string) ([]Entry, error) {
	if strings.TrimSpace(query) == "" {
		return []Entry{}, nil
	}
	query = strings.ToLower(query)

	ents, err := os.ReadDir(c.root.Dir())
	if err != nil {
		return nil, apperr.Internal("Search failed", err)
	}

	hits := make([]Entry, 0, 16)
	c.walk(c.root.Dir(), "", ents, query, &hits)
	return hits, nil
}

// walk visits ents depth first and reports whether the hit limit was reached.
func (c *Catalog) walk(abs, rel string, ents []os.DirEntry, query string, hits *[]Entry) bool {
	for _, e := range c.entries(rel, ents) {
		if strings.Contains(strings.ToLower(e.Name), query) {
			*hits = append(*hits, e)
			if len(*hits) >= c.limit {
				return true
			}
		}
		if !e.IsDir() {
			continue
		}

		childAbs := filepath.Join(abs, e.Name)
		children, err := os.ReadDir(childAbs)
		if err != nil {
			continue
		}
		if c.walk(childAbs, e.Path, children, query, hits) {
			return true
		}
	}
	return false
}

// entries filters and orders directory entries of the directory at rel.
func (c *Catalog) entries(rel string, ents []os.DirEntry) []Entry {
	out := make([]Entry, 0, len(ents))
	for _, e := range ents {
		name := e.Name()
		if c.deny.Denies(name) {
			continue
		}
		typ := TypeFile
		if e.IsDir() {
			typ = TypeDirectory
		}
		out = append(out, Entry{
			Name: name,
			Type: typ,
			Path: pathsafe.JoinRel(rel, name),
		})
	}
	SortEntries(out)
	return out
}

// SortEntries orders directories first, then by natural name order.
func SortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return CompareNames(a.Name, b.Name)
	})
}
