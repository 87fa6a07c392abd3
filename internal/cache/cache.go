// Package cache holds per-institute snapshots of reference lists and record
// collections. A slot is either absent (unknown, triggers a gateway fetch) or
// a complete snapshot; there is no partial population. The cache is advisory:
// the document store stays authoritative and stale slots are corrected only
// by explicit invalidation, never by live synchronization.
package cache

import (
	"sync"
)

// Collection identifies one cached slot kind within an institute.
type Collection string

const (
	Departments Collection = "departments"
	Busses      Collection = "busses"
	Admins      Collection = "admins"
	Users       Collection = "users"
	BusCounts   Collection = "bus_counts"
)

// Key addresses one snapshot.
type Key struct {
	Institute  string
	Collection Collection
}

// ProfileKey addresses a cached admin profile. Profiles are per-uid, not
// per-collection, so the uid is folded into the collection name.
func ProfileKey(institute, uid string) Key {
	return Key{Institute: institute, Collection: Collection("admin_profile:" + uid)}
}

// Store is a concurrency-safe snapshot cache.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]any
}

func NewStore() *Store {
	return &Store{entries: make(map[Key]any)}
}

// Get returns the snapshot for key, typed. A stored value of the wrong type
// counts as absent.
func Get[T any](s *Store, key Key) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	raw, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Put stores a complete snapshot for key.
func Put[T any](s *Store, key Key, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Mutate applies fn to the snapshot for key if one is present. An absent
// slot stays absent: mutations never materialize a snapshot the gateway has
// not produced.
func Mutate[T any](s *Store, key Key, fn func(T) T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.entries[key]
	if !ok {
		return
	}
	v, ok := raw.(T)
	if !ok {
		return
	}
	s.entries[key] = fn(v)
}

// Invalidate drops the given slots.
func (s *Store) Invalidate(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.entries, key)
	}
}

// InvalidateInstitute drops every slot belonging to an institute.
func (s *Store) InvalidateInstitute(institute string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if key.Institute == institute {
			delete(s.entries, key)
		}
	}
}
