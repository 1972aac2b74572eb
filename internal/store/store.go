// Package store persists the render set collection as one serialized blob.
//
// Every Load re-reads and re-parses the backing blob and every Save rewrites
// it in full. There is no cache: the backend is the single source of truth.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
)

// Backend reads and writes the serialized blob.
type Backend interface {
	// Read returns the blob. ok is false when the blob does not exist.
	Read(ctx context.Context) (blob string, ok bool, err error)

	// Write replaces the blob in one operation.
	Write(ctx context.Context, blob string) error

	// Describe names the storage location for log and error messages.
	Describe() string
}

// Store loads and saves render set collections through a Backend.
type Store struct {
	backend Backend
}

// New returns a Store backed by b.
func New(b Backend) *Store {
	return &Store{backend: b}
}

// Location describes where the collection is stored.
func (s *Store) Location() string {
	return s.backend.Describe()
}

// Load reads the collection. A missing or blank blob yields an empty
// collection; a blob that does not parse is an error.
func (s *Store) Load(ctx context.Context) (*renderset.Collection, error) {
	blob, ok, err := s.backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading render sets from %s: %w", s.backend.Describe(), err)
	}
	if !ok || strings.TrimSpace(blob) == "" {
		output.Debug("no render sets stored yet", "location", s.backend.Describe())
		return renderset.NewCollection(), nil
	}

	c, err := renderset.Decode([]byte(blob))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.backend.Describe(), err)
	}
	return c, nil
}

// Save serializes the whole collection and writes it.
func (s *Store) Save(ctx context.Context, c *renderset.Collection) error {
	data, err := renderset.Encode(c)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, string(data)); err != nil {
		return fmt.Errorf("writing render sets to %s: %w", s.backend.Describe(), err)
	}
	output.Debug("saved render sets", "location", s.backend.Describe(), "count", c.Len())
	return nil
}

// Update loads a fresh copy, applies fn, and saves the result. Nothing is
// written when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(*renderset.Collection) error) (*renderset.Collection, error) {
	c, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
