// Package room owns the in-memory room state: per-room membership and peer-id
// tables, and the store that maps room names to rooms.
package room

import (
	"sort"
	"sync"

	"github.com/mossy-p/voicerooms/internal/models"
)

// Room holds one room's membership. Members map connection ids to the profile
// supplied at join time; peer ids arrive with the same join and feed the
// browser-side WebRTC layer. peerIDs never contains an id absent from members.
type Room struct {
	Name string

	mu      sync.RWMutex
	members map[string]models.UserProfile
	peerIDs map[string]string
}

func newRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[string]models.UserProfile),
		peerIDs: make(map[string]string),
	}
}

// AddMember inserts or refreshes a member. Rejoining with a new profile simply
// overwrites; clients may resend join_room and the protocol stays idempotent.
func (r *Room) AddMember(connID string, profile models.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[connID] = profile
}

// SetPeerID records the caller-supplied peer identifier; overwrite semantics.
// A peer id for a non-member is ignored to preserve the membership invariant.
func (r *Room) SetPeerID(connID, peerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[connID]; !ok {
		return
	}
	r.peerIDs[connID] = peerID
}

// RemoveMember drops a connection from both tables; no-op if absent.
func (r *Room) RemoveMember(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, connID)
	delete(r.peerIDs, connID)
}

// HasMember reports whether connID is currently a member.
func (r *Room) HasMember(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[connID]
	return ok
}

// Profile returns the member's profile, if present.
func (r *Room) Profile(connID string) (models.UserProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.members[connID]
	return p, ok
}

// Roster returns a deterministic snapshot of the room, sorted by connection
// id, for users_list broadcasts.
func (r *Room) Roster() []models.RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roster := make([]models.RosterEntry, 0, len(r.members))
	for id, profile := range r.members {
		roster = append(roster, models.RosterEntry{
			ID:       id,
			Username: profile.Username,
			Language: profile.Language,
			PeerID:   r.peerIDs[id],
		})
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	return roster
}

// MemberIDs returns the current member connection ids, sorted.
func (r *Room) MemberIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Room) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members) == 0
}

func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
