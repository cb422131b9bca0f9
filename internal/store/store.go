// Package store exposes the portal's named collections, namespaced per
// organization, over a domain.KV backend.
//
// Every collection is stored under a single key as a JSON array. Reads never
// surface a missing or malformed value: both decode to an empty slice, and the
// malformed case is logged. Errors returned from this package are backend
// failures only.
//
// Appends and seeding are serialized per key within the process, and are run
// through domain.Updater when the backend provides it so that writers in other
// processes do not lose records either. WriteRecords replaces the whole value
// and is last-write-wins against any other writer.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/backoffice/internal/domain"
)

// Store is the tenant-scoped collection store.
type Store struct {
	kv         domain.KV
	defaultOrg string
	locks      keyedMutex
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultOrg sets the organization used when the context carries none.
func WithDefaultOrg(org string) Option {
	return func(s *Store) {
		if org != "" {
			s.defaultOrg = org
		}
	}
}

// New creates a Store over kv.
func New(kv domain.KV, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		defaultOrg: domain.DefaultOrg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveOrg returns the organization carried by ctx, or the store default.
func (s *Store) ActiveOrg(ctx context.Context) string {
	if org, ok := domain.OrgFromContext(ctx); ok {
		return org
	}
	return s.defaultOrg
}

// Key resolves collection c to its storage key for the active organization.
func (s *Store) Key(ctx context.Context, c domain.Collection) string {
	return domain.Key(s.ActiveOrg(ctx), c)
}

// StoredCollections returns the collections of the active organization that
// hold a value, in declaration order. It fails with domain.ErrNotSupported
// when the backend cannot list keys.
func (s *Store) StoredCollections(ctx context.Context) ([]domain.Collection, error) {
	lister, ok := s.kv.(domain.Lister)
	if !ok {
		return nil, fmt.Errorf("store.StoredCollections: listing keys: %w", domain.ErrNotSupported)
	}

	prefix := domain.Key(s.ActiveOrg(ctx), "")
	keys, err := lister.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("store.StoredCollections: %w", err)
	}

	stored := make(map[string]bool, len(keys))
	for _, k := range keys {
		stored[k] = true
	}

	out := []domain.Collection{}
	for _, c := range domain.Collections() {
		if stored[domain.Key(s.ActiveOrg(ctx), c)] {
			out = append(out, c)
		}
	}
	return out, nil
}

// ReadRecords returns the records stored under key.
func (s *Store) ReadRecords(ctx context.Context, key string) ([]domain.Record, error) {
	return Read[domain.Record](ctx, s, key)
}

// WriteRecords replaces the records stored under key.
func (s *Store) WriteRecords(ctx context.Context, key string, records []domain.Record) error {
	return Write(ctx, s, key, records)
}

// AppendRecord appends record to the sequence under key and returns it.
func (s *Store) AppendRecord(ctx context.Context, key string, record domain.Record) (domain.Record, error) {
	return Append(ctx, s, key, record)
}

// Read decodes the sequence stored under key as []T.
func Read[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store.Read: %w", err)
	}
	return decode[T](key, raw), nil
}

// Write serializes records and stores them under key, replacing any prior value.
func Write[T any](ctx context.Context, s *Store, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("store.Write: marshal: %w", err)
	}

	unlock := s.locks.lock(key)
	defer unlock()

	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("store.Write: %w", err)
	}
	return nil
}

// Append adds record to the end of the sequence under key and returns it.
// Existing elements are kept byte-for-byte whatever their shape; only a value
// that is not a JSON array is replaced.
func Append[T any](ctx context.Context, s *Store, key string, record T) (T, error) {
	var zero T

	item, err := json.Marshal(record)
	if err != nil {
		return zero, fmt.Errorf("store.Append: marshal: %w", err)
	}

	err = s.update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		var records []json.RawMessage
		if found {
			records = decode[json.RawMessage](key, current)
		}
		records = append(records, item)
		return json.Marshal(records)
	})
	if err != nil {
		return zero, fmt.Errorf("store.Append: %w", err)
	}
	return record, nil
}

// update applies fn to key while holding the key's lock, atomically on the
// backend when it supports it.
func (s *Store) update(ctx context.Context, key string, fn domain.UpdateFunc) error {
	unlock := s.locks.lock(key)
	defer unlock()

	if u, ok := s.kv.(domain.Updater); ok {
		return u.Update(ctx, key, fn)
	}

	current, err := s.kv.Get(ctx, key)
	found := true
	if errors.Is(err, domain.ErrNotFound) {
		found = false
	} else if err != nil {
		return err
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	return s.kv.Set(ctx, key, next)
}

func decode[T any](key string, raw []byte) []T {
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store: malformed collection value, treating as empty")
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}
