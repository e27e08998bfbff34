// Package docstore persists named JSON documents.
//
// Every call reads or writes a whole document. There is no locking and no
// cache: two concurrent read-modify-write sequences on the same document can
// lose one of the updates (last write wins).
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when a document has never been saved.
var ErrNotFound = errors.New("document not found")

// Store loads and saves JSON documents by name.
type Store interface {
	// Load decodes the document called name into v.
	Load(ctx context.Context, name string, v any) error
	// Save replaces the document called name with the JSON encoding of v.
	Save(ctx context.Context, name string, v any) error
}

// Get loads the document called name, returning the zero value of T when it
// does not exist yet.
func Get[T any](ctx context.Context, s Store, name string) (T, error) {
	var v T
	err := s.Load(ctx, name, &v)
	if errors.Is(err, ErrNotFound) {
		var zero T
		return zero, nil
	}
	return v, err
}

// Update loads the document called name, applies fn and saves the result.
func Update[T any](ctx context.Context, s Store, name string, fn func(T) (T, error)) error {
	v, err := Get[T](ctx, s, name)
	if err != nil {
		return err
	}

	v, err = fn(v)
	if err != nil {
		return err
	}

	return s.Save(ctx, name, v)
}
