package router

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/mossy-p/voicerooms/internal/models"
	"github.com/mossy-p/voicerooms/internal/room"
)

// requireAdmin gates moderation rules. Connections earn the privilege by
// presenting a valid JWT at connect time; everyone else gets one error event
// and the rule stops there.
func (rt *Router) requireAdmin(origin string) bool {
	if rt.transport.IsAdmin(origin) {
		return true
	}
	log.Printf("Unauthorized admin event from %s", origin)
	rt.transport.SendTo(origin, models.EventError, models.ErrorPayload{Message: "unauthorized"})
	return false
}

func (rt *Router) adminCreateRoom(origin string, data json.RawMessage) {
	if !rt.requireAdmin(origin) {
		return
	}

	var payload models.RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		rt.transport.SendTo(origin, models.EventError, models.ErrorPayload{Message: "invalid room name"})
		return
	}

	if _, err := rt.store.Create(payload.Room); err != nil {
		if errors.Is(err, room.ErrRoomExists) {
			rt.transport.SendTo(origin, models.EventError, models.ErrorPayload{Message: "room already exists"})
		}
		return
	}

	log.Printf("Admin %s created room %q", origin, payload.Room)
	rt.transport.Broadcast(models.EventRoomCreated, models.RoomPayload{Room: payload.Room})
}

func (rt *Router) adminDeleteRoom(origin string, data json.RawMessage) {
	if !rt.requireAdmin(origin) {
		return
	}

	var payload models.RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		rt.transport.SendTo(origin, models.EventError, models.ErrorPayload{Message: "invalid room name"})
		return
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	r, ok := rt.store.Delete(payload.Room)
	if !ok {
		rt.transport.SendTo(origin, models.EventError, models.ErrorPayload{Message: "room does not exist"})
		return
	}

	// Evict members before the state is gone: each gets room_deleted, and
	// their back-references are cleared so a later disconnect is a no-op.
	deleted := models.RoomPayload{Room: payload.Room}
	for _, id := range r.MemberIDs() {
		rt.transport.SendTo(id, models.EventRoomDeleted, deleted)
		if state, exists := rt.conns[id]; exists && state.room == payload.Room {
			state.room = ""
		}
	}

	rt.log.DropRoom(payload.Room)
	rt.mirror.DropRoom(payload.Room)

	log.Printf("Admin %s deleted room %q", origin, payload.Room)
	rt.transport.Broadcast(models.EventRoomListUpdated, struct {
		Rooms []string `json:"rooms"`
	}{Rooms: rt.store.List()})
}

func (rt *Router) adminKickUser(origin string, data json.RawMessage) {
	if !rt.requireAdmin(origin) {
		return
	}

	var payload models.TargetPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConnectionID == "" {
		return
	}
	if !rt.transport.IsRegistered(payload.ConnectionID) {
		return
	}

	log.Printf("Admin %s kicked connection %s", origin, payload.ConnectionID)
	// The transport close drives the normal disconnect cascade.
	rt.transport.ForceDisconnect(payload.ConnectionID)
}

func (rt *Router) adminBanUser(origin string, data json.RawMessage) {
	if !rt.requireAdmin(origin) {
		return
	}

	var payload models.TargetPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConnectionID == "" {
		return
	}

	rt.bans.Add(payload.ConnectionID)
	rt.mirror.AddBan(payload.ConnectionID)

	// Connection ids are never reused, so also ban the remote address to
	// make the ban stick across reconnects.
	rt.mu.Lock()
	if state, ok := rt.conns[payload.ConnectionID]; ok && state.remoteAddr != "" {
		rt.bans.Add(state.remoteAddr)
		rt.mirror.AddBan(state.remoteAddr)
	}
	rt.mu.Unlock()

	log.Printf("Admin %s banned connection %s", origin, payload.ConnectionID)
	rt.transport.ForceDisconnect(payload.ConnectionID)
}

// adminRequestData sends the requester a full snapshot: every user across all
// rooms, per-room rosters, and the message history.
func (rt *Router) adminRequestData(origin string) {
	if !rt.requireAdmin(origin) {
		return
	}

	rooms := rt.store.Snapshot()

	users := make([]models.AdminUserEntry, 0)
	roomsData := make(map[string]adminRoomEntry, len(rooms))
	for _, name := range rt.store.List() {
		r, ok := rooms[name]
		if !ok {
			continue
		}
		roster := r.Roster()
		entries := make([]models.RosterEntry, 0, len(roster))
		for _, member := range roster {
			users = append(users, models.AdminUserEntry{
				ID:       member.ID,
				Username: member.Username,
				Language: member.Language,
				Room:     name,
				Status:   "Active",
			})
			entries = append(entries, member)
		}
		roomsData[name] = adminRoomEntry{Users: entries}
	}

	rt.transport.SendTo(origin, models.EventUsersList, users)
	rt.transport.SendTo(origin, models.EventAdminData, roomsData)
	rt.transport.SendTo(origin, models.EventAdminMessages, rt.log.Snapshot())
}

type adminRoomEntry struct {
	Users []models.RosterEntry `json:"users"`
}
