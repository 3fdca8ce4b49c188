// Package memstore is an in-memory db.Store for tests.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"portfoliosync/db"
)

// Store keeps documents as JSON objects per collection. Documents round-trip
// through encoding/json, so only json tags matter.
type Store struct {
	// Now stamps updatedAt on upsert.
	Now func() time.Time
	// Err, when set, is returned by every operation.
	Err error

	mu     sync.Mutex
	docs   map[string][]map[string]any
	closed bool
}

var _ db.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		Now:  func() time.Time { return time.Now().UTC() },
		docs: make(map[string][]map[string]any),
	}
}

func (s *Store) Connect(context.Context) error { return s.Err }

func (s *Store) Upsert(_ context.Context, collection string, filter db.Filter, doc any) error {
	if s.Err != nil {
		return s.Err
	}
	set, err := toMap(doc)
	if err != nil {
		return err
	}
	set["updatedAt"] = s.Now().Format(time.RFC3339Nano)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.docs[collection] {
		if matches(existing, filter) {
			for k, v := range set {
				existing[k] = v
			}
			return nil
		}
	}

	created := make(map[string]any, len(filter)+len(set))
	f, err := toMap(filter)
	if err != nil {
		return err
	}
	for k, v := range f {
		created[k] = v
	}
	for k, v := range set {
		created[k] = v
	}
	s.docs[collection] = append(s.docs[collection], created)
	return nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter db.Filter, opts *db.FindOptions, out any) error {
	found, err := s.find(collection, filter, opts)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("%w: %s", db.ErrNotFound, collection)
	}
	return decode(found[0], out)
}

func (s *Store) FindMany(ctx context.Context, collection string, filter db.Filter, opts *db.FindOptions, out any) error {
	if rv := reflect.ValueOf(out); rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("%w: FindMany needs a pointer to a slice", db.ErrInvalidInput)
	}
	found, err := s.find(collection, filter, opts)
	if err != nil {
		return err
	}
	if found == nil {
		found = []map[string]any{}
	}
	return decode(found, out)
}

func (s *Store) DeleteMany(_ context.Context, collection string, filter db.Filter) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []map[string]any
	var n int64
	for _, doc := range s.docs[collection] {
		if matches(doc, filter) {
			n++
			continue
		}
		kept = append(kept, doc)
	}
	s.docs[collection] = kept
	return n, nil
}

func (s *Store) InsertMany(_ context.Context, collection string, docs []any) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		m, err := toMap(doc)
		if err != nil {
			return 0, err
		}
		s.docs[collection] = append(s.docs[collection], m)
	}
	return len(docs), nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Count returns the number of documents in collection.
func (s *Store) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}

func (s *Store) find(collection string, filter db.Filter, opts *db.FindOptions) ([]map[string]any, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []map[string]any
	for _, doc := range s.docs[collection] {
		if matches(doc, filter) {
			found = append(found, doc)
		}
	}
	if opts == nil {
		return found, nil
	}
	if opts.SortField != "" {
		field, desc := opts.SortField, opts.SortDesc
		sort.SliceStable(found, func(i, j int) bool {
			a, b := fmt.Sprint(found[i][field]), fmt.Sprint(found[j][field])
			if desc {
				return a > b
			}
			return a < b
		})
	}
	if opts.Limit > 0 && int64(len(found)) > opts.Limit {
		found = found[:opts.Limit]
	}
	return found, nil
}

func matches(doc map[string]any, filter db.Filter) bool {
	for k, v := range filter {
		if fmt.Sprint(doc[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode(v, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
