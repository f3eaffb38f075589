// Package record loads vital records by persistent ID.
package record

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"devt.de/krotik/common/datautil"

	"github.com/agenthands/kinlink/internal/core/model"
)

var ErrNotFound = errors.New("record not found")

// Store fetches one record by kind and persistent ID. Marriage parties are
// addressed with model.PartyID.
type Store interface {
	Get(ctx context.Context, kind model.Kind, id string) (model.Record, error)
}

// MemoryStore is a map-backed Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.Record
}

func NewMemoryStore(records ...model.Record) *MemoryStore {
	s := &MemoryStore{records: make(map[string]model.Record)}
	for _, r := range records {
		s.Put(r)
	}
	return s
}

// Put adds r, or both parties when r is a marriage party.
func (s *MemoryStore) Put(r model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := r.(*model.Party); ok {
		s.records[key(model.KindMarriage, model.PartyID(p.Marriage.RecordID, model.Bride))] = p.Marriage.Party(model.Bride)
		s.records[key(model.KindMarriage, model.PartyID(p.Marriage.RecordID, model.Groom))] = p.Marriage.Party(model.Groom)
		return
	}
	s.records[key(r.Kind(), r.ID())] = r
}

func (s *MemoryStore) Get(ctx context.Context, kind model.Kind, id string) (model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key(kind, id)]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return r, nil
}

// CachedStore keeps recently loaded records in a bounded cache in front of
// another Store. Callers get clones so normalisation never leaks into the
// cache.
type CachedStore struct {
	next  Store
	cache *datautil.MapCache
}

// NewCachedStore wraps next with a cache of at most size entries.
func NewCachedStore(next Store, size uint64) *CachedStore {
	return &CachedStore{next: next, cache: datautil.NewMapCache(size, 0)}
}

func (s *CachedStore) Get(ctx context.Context, kind model.Kind, id string) (model.Record, error) {
	k := key(kind, id)
	if v, ok := s.cache.Get(k); ok {
		return v.(model.Record).Clone(), nil
	}
	r, err := s.next.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	s.cache.Put(k, r.Clone())
	return r.Clone(), nil
}

func key(kind model.Kind, id string) string {
	return string(kind) + "/" + id
}
