// Package recordstore persists named collections as JSON arrays on a
// storage medium.
//
// Load never fails: an absent key, a medium read error or a value that is
// not a JSON array all yield an empty collection. The problem is logged and
// the caller keeps working with what it has. Save reports medium errors.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Store reads and writes whole collections. Every Save fully replaces the
// stored array.
type Store struct {
	medium types.Medium
	logger *zap.Logger
}

// New returns a Store over medium. A nil logger discards log output.
func New(medium types.Medium, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{medium: medium, logger: logger.Named("recordstore")}
}

// Medium returns the storage medium under the store.
func (s *Store) Medium() types.Medium { return s.medium }

// Load returns the elements of the array stored under name. It returns an
// empty, non-nil slice when the key is absent, unreadable, or holds
// something other than a JSON array.
func (s *Store) Load(ctx context.Context, name string) []json.RawMessage {
	if !types.IsStandardCollection(name) {
		s.logger.Warn("load of unknown collection", zap.String("collection", name))
		return []json.RawMessage{}
	}

	data, err := s.medium.Get(ctx, name)
	if errors.Is(err, types.ErrKeyNotFound) {
		return []json.RawMessage{}
	}
	if err != nil {
		s.logger.Warn("reading collection failed, using empty collection",
			zap.String("collection", name), zap.Error(err))
		return []json.RawMessage{}
	}

	items, err := decodeArray(data)
	if err != nil {
		s.logger.Warn("stored collection is corrupt, using empty collection",
			zap.String("collection", name), zap.Int("bytes", len(data)), zap.Error(err))
		return []json.RawMessage{}
	}
	return items
}

// Save serializes records as a JSON array and overwrites name. A nil slice
// is stored as an empty array.
func (s *Store) Save(ctx context.Context, name string, records []json.RawMessage) error {
	if !types.IsStandardCollection(name) {
		return fmt.Errorf("%w: %q", types.ErrUnknownCollection, name)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := s.medium.Put(ctx, name, data); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}

// Check reports whether the value under name is a readable JSON array.
// It returns nil for an absent key and an error wrapping
// types.ErrStorageCorrupt for a value Load would discard.
func (s *Store) Check(ctx context.Context, name string) error {
	data, err := s.medium.Get(ctx, name)
	if errors.Is(err, types.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = decodeArray(data)
	return err
}

// LoadAs decodes the collection name into values of type T. Elements that
// do not decode are skipped and logged.
func LoadAs[T any](ctx context.Context, s *Store, name string) []T {
	raw := s.Load(ctx, name)
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			s.logger.Warn("skipping malformed element",
				zap.String("collection", name), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// SaveAs encodes records and saves them under name.
func SaveAs[T any](ctx context.Context, s *Store, name string, records []T) error {
	raw := make([]json.RawMessage, 0, len(records))
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding %s element %d: %w", name, i, err)
		}
		raw = append(raw, data)
	}
	return s.Save(ctx, name, raw)
}

// decodeArray splits data into its array elements. Anything but a JSON
// array, including null, is reported as ErrStorageCorrupt.
func decodeArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: value does not start with '['", types.ErrStorageCorrupt)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorageCorrupt, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}
