package room

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
)

// Store owns the name -> Room mapping. Rooms are created on demand by
// join_room (or explicitly by admins) and removed the instant they empty;
// a deleted name may be reused later with fresh state.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

// GetOrCreate returns the existing room or registers a new empty one.
func (s *Store) GetOrCreate(name string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[name]
	if !ok {
		r = newRoom(name)
		s.rooms[name] = r
	}
	return r
}

// Create registers a new empty room, failing if the name is taken.
func (s *Store) Create(name string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[name]; ok {
		return nil, ErrRoomExists
	}
	r := newRoom(name)
	s.rooms[name] = r
	return r, nil
}

func (s *Store) Get(name string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[name]
	return r, ok
}

// RemoveIfEmpty removes the room iff it currently has zero members. Callers
// invoke it after every member removal; stale empty rooms are a leak.
func (s *Store) RemoveIfEmpty(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[name]
	if !ok || !r.IsEmpty() {
		return false
	}
	delete(s.rooms, name)
	return true
}

// Delete unconditionally removes the room, returning its last-known state so
// the caller can notify members before it is gone.
func (s *Store) Delete(name string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[name]
	if !ok {
		return nil, false
	}
	delete(s.rooms, name)
	return r, true
}

// List returns the current room names, sorted.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.rooms))
	for name := range s.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns all rooms keyed by name, for admin bulk queries.
func (s *Store) Snapshot() map[string]*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Room, len(s.rooms))
	for name, r := range s.rooms {
		out[name] = r
	}
	return out
}
