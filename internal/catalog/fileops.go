package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mediabrowser/internal/apperr"
	"mediabrowser/internal/pathsafe"
)

// Mkdir creates the folder name inside the directory at parent.
func (c *Catalog) Mkdir(parent, name string) (Entry, error) {
	name = strings.TrimSpace(name)
	if err := c.checkName(name); err != nil {
		return Entry{}, err
	}

	res, err := c.root.Resolve(pathsafe.JoinRel(pathsafe.CleanRel(parent), name))
	if err != nil {
		return Entry{}, err
	}
	if c.hidden(res.Rel) {
		return Entry{}, apperr.AccessDenied("Access denied")
	}
	if err := os.MkdirAll(res.Abs, 0o755); err != nil {
		return Entry{}, apperr.Internal("Failed to create folder", err)
	}
	return Entry{Name: name, Type: TypeDirectory, Path: res.Rel}, nil
}

// Remove deletes the file or directory tree at rel. The root itself cannot be removed.
func (c *Catalog) Remove(rel string) error {
	res, err := c.root.Resolve(rel)
	if err != nil {
		return err
	}
	if res.Rel == "" {
		return apperr.AccessDenied("Cannot delete the media root")
	}
	if c.hidden(res.Rel) {
		return apperr.AccessDenied("Access denied")
	}
	if _, err := os.Lstat(res.Abs); errors.Is(err, os.ErrNotExist) {
		return apperr.NotFound("Path not found")
	} else if err != nil {
		return apperr.Internal("Failed to delete", err)
	}
	if err := os.RemoveAll(res.Abs); err != nil {
		return apperr.Internal("Failed to delete", err)
	}
	return nil
}

// Save writes src into the directory at dir under the base name of filename.
// The data lands in a temporary file first and is renamed into place once complete.
func (c *Catalog) Save(dir, filename string, src io.Reader) (Entry, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if err := c.checkName(name); err != nil {
		return Entry{}, err
	}

	parent, err := c.root.Resolve(dir)
	if err != nil {
		return Entry{}, err
	}
	if c.hidden(parent.Rel) {
		return Entry{}, apperr.AccessDenied("Access denied")
	}
	st, err := os.Stat(parent.Abs)
	if err != nil || !st.IsDir() {
		return Entry{}, apperr.NotFound("Path not found")
	}
	res, err := c.root.Resolve(pathsafe.JoinRel(parent.Rel, name))
	if err != nil {
		return Entry{}, err
	}

	tmp := filepath.Join(parent.Abs, fmt.Sprintf(".upload-%d.tmp", time.Now().UnixNano()))
	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return Entry{}, apperr.Internal("Upload failed", err)
	}
	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return Entry{}, apperr.Internal("Upload failed", err)
	}
	if err := os.Rename(tmp, res.Abs); err != nil {
		_ = os.Remove(tmp)
		return Entry{}, apperr.Internal("Upload failed", err)
	}
	return Entry{Name: name, Type: TypeFile, Path: res.Rel}, nil
}

// Open opens the file at rel for reading. Directories, hidden entries and
// missing files are all reported as NotFound.
func (c *Catalog) Open(rel string) (*os.File, fs.FileInfo, error) {
	res, err := c.root.Resolve(rel)
	if err != nil {
		return nil, nil, err
	}
	if c.hidden(res.Rel) {
		return nil, nil, apperr.NotFound("Not found")
	}

	f, err := os.Open(res.Abs)
	if err != nil {
		return nil, nil, apperr.NotFound("Not found")
	}
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		_ = f.Close()
		return nil, nil, apperr.NotFound("Not found")
	}
	return f, st, nil
}

// hidden reports whether any segment of rel is denied.
func (c *Catalog) hidden(rel string) bool {
	if rel == "" {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if c.deny.Denies(seg) {
			return true
		}
	}
	return false
}

func (c *Catalog) checkName(name string) error {
	switch {
	case name == "" || name == "." || name == ".." || name == "/":
		return apperr.Validation("Name is required")
	case strings.ContainsAny(name, "/\\\x00"):
		return apperr.Validation("Name must not contain path separators")
	case c.deny.Denies(name):
		return apperr.Validation("Name is not allowed")
	}
	return nil
}
