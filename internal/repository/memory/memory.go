// Package memory provides an in-process repository.Store for tests and
// development. Documents round-trip through BSON so callers get isolated
// copies with the same tag semantics as the mongodb store, and transactions
// stage writes until the body succeeds.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/RandySimanca/avicola/internal/repository"
)

type collection struct {
	docs  map[string][]byte
	order []string
}

// Store is a process-local repository.Store.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection

	offline   bool
	conflicts int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// SetOffline makes every subsequent call fail with ErrNetworkUnavailable,
// simulating a disconnected device.
func (s *Store) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

// InjectConflicts makes the next n transactions abort with ErrConflict before
// any write is applied.
func (s *Store) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

// RunTransaction stages all writes performed by fn and applies them only when
// fn returns nil.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return repository.ErrNetworkUnavailable
	}
	if s.conflicts > 0 {
		s.conflicts--
		return repository.ErrConflict
	}

	tx := &memTx{
		store:   s,
		puts:    make(map[string]map[string][]byte),
		deletes: make(map[string]map[string]bool),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for name, docs := range tx.puts {
		for id, raw := range docs {
			s.putLocked(name, id, raw)
		}
	}
	for name, ids := range tx.deletes {
		for id := range ids {
			s.deleteLocked(name, id)
		}
	}
	return nil
}

// Get reads a single document.
func (s *Store) Get(_ context.Context, coll, id string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return repository.ErrNetworkUnavailable
	}
	return s.getLocked(coll, id, out)
}

// Put writes a single document.
func (s *Store) Put(_ context.Context, coll, id string, doc any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return repository.ErrNetworkUnavailable
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	s.putLocked(coll, id, raw)
	return nil
}

// Delete removes a single document, tolerating its absence.
func (s *Store) Delete(_ context.Context, coll, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return repository.ErrNetworkUnavailable
	}
	s.deleteLocked(coll, id)
	return nil
}

// List decodes all documents matching filter into out, in insertion order
// unless orderBy names a field. out must be a pointer to a slice.
func (s *Store) List(_ context.Context, coll string, filter repository.Filter, orderBy string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offline {
		return repository.ErrNetworkUnavailable
	}

	c := s.collections[coll]
	var matched [][]byte
	if c != nil {
		for _, id := range c.order {
			raw := c.docs[id]
			if matches(raw, filter) {
				matched = append(matched, raw)
			}
		}
	}

	if orderBy != "" {
		sortDocs(matched, orderBy)
	}

	slice := reflect.ValueOf(out).Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(matched)))
	for _, raw := range matched {
		elem := reflect.New(slice.Type().Elem())
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}

func (s *Store) getLocked(coll, id string, out any) error {
	c := s.collections[coll]
	if c == nil {
		return fmt.Errorf("%s/%s: %w", coll, id, repository.ErrNotFound)
	}
	raw, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", coll, id, repository.ErrNotFound)
	}
	return bson.Unmarshal(raw, out)
}

func (s *Store) putLocked(coll, id string, raw []byte) {
	c := s.collections[coll]
	if c == nil {
		c = &collection{docs: make(map[string][]byte)}
		s.collections[coll] = c
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = raw
}

func (s *Store) deleteLocked(coll, id string) {
	c := s.collections[coll]
	if c == nil {
		return
	}
	if _, exists := c.docs[id]; !exists {
		return
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// memTx overlays staged writes on the store snapshot.
type memTx struct {
	store   *Store
	puts    map[string]map[string][]byte
	deletes map[string]map[string]bool
}

func (t *memTx) Get(_ context.Context, coll, id string, out any) error {
	if t.deletes[coll][id] {
		return fmt.Errorf("%s/%s: %w", coll, id, repository.ErrNotFound)
	}
	if raw, ok := t.puts[coll][id]; ok {
		return bson.Unmarshal(raw, out)
	}
	return t.store.getLocked(coll, id, out)
}

func (t *memTx) Put(_ context.Context, coll, id string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	if t.puts[coll] == nil {
		t.puts[coll] = make(map[string][]byte)
	}
	t.puts[coll][id] = raw
	if t.deletes[coll] != nil {
		delete(t.deletes[coll], id)
	}
	return nil
}

func (t *memTx) Delete(_ context.Context, coll, id string) error {
	if t.deletes[coll] == nil {
		t.deletes[coll] = make(map[string]bool)
	}
	t.deletes[coll][id] = true
	if t.puts[coll] != nil {
		delete(t.puts[coll], id)
	}
	return nil
}

func matches(raw []byte, filter repository.Filter) bool {
	if len(filter) == 0 {
		return true
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return false
	}
	for field, want := range filter {
		got, ok := doc[field]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func sortDocs(docs [][]byte, orderBy string) {
	field, descending := orderBy, false
	if len(orderBy) > 1 && orderBy[0] == '-' {
		field, descending = orderBy[1:], true
	}

	key := func(raw []byte) string {
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return ""
		}
		return fmt.Sprint(doc[field])
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if descending {
			return key(docs[i]) > key(docs[j])
		}
		return key(docs[i]) < key(docs[j])
	})
}
