// Package router is the protocol core: a dispatch table from inbound event
// kind to its relay/mutation rule. Every rule is total — malformed payloads
// and stale room or target references degrade to logged no-ops, because races
// between disconnects and in-flight signaling are expected traffic, not
// exceptional conditions.
package router

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/mossy-p/voicerooms/internal/history"
	"github.com/mossy-p/voicerooms/internal/models"
	"github.com/mossy-p/voicerooms/internal/redisx"
	"github.com/mossy-p/voicerooms/internal/room"
)

// Transport is what the router needs from the connection layer. Satisfied by
// *registry.Registry; tests substitute a capture fake.
type Transport interface {
	SendTo(connID string, kind models.EventKind, data any)
	Broadcast(kind models.EventKind, data any)
	AdminBroadcast(kind models.EventKind, data any)
	ForceDisconnect(connID string)
	IsRegistered(connID string) bool
	IsAdmin(connID string) bool
}

// Router executes the event rule table against the room store.
type Router struct {
	transport Transport
	store     *room.Store
	log       *history.Log
	bans      *BanList
	mirror    *redisx.Mirror

	// mu serializes membership mutation and the roster broadcasts that
	// follow it, so every users_list a member observes reflects a single
	// linear history of joins and leaves per room.
	mu sync.Mutex
	// currentRoom tracks each connection's single room membership and its
	// remote address for ban identity. Disconnect cleanup is O(1) through
	// this back-reference.
	conns map[string]*connState
}

type connState struct {
	room       string
	remoteAddr string
}

func New(transport Transport, store *room.Store, msgLog *history.Log, bans *BanList, mirror *redisx.Mirror) *Router {
	return &Router{
		transport: transport,
		store:     store,
		log:       msgLog,
		bans:      bans,
		mirror:    mirror,
		conns:     make(map[string]*connState),
	}
}

// Banned reports whether an identity (remote address or connection id) is
// banned. Checked before a transport session is accepted.
func (rt *Router) Banned(identity string) bool {
	return rt.bans.Contains(identity)
}

// HandleConnect records a new connection. The transport layer has already
// registered its handle.
func (rt *Router) HandleConnect(connID, remoteAddr string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.conns[connID] = &connState{remoteAddr: remoteAddr}
}

// HandleDisconnect runs the leave cascade for a closed connection: remove it
// from its room, drop the room if it emptied, otherwise tell the remaining
// members. Idempotent; safe against connections that never joined a room.
func (rt *Router) HandleDisconnect(connID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	state, ok := rt.conns[connID]
	if !ok {
		return
	}
	delete(rt.conns, connID)
	if state.room != "" {
		rt.leaveRoomLocked(connID, state.room)
	}
}

// HandleEvent dispatches one inbound event from origin. Never panics on
// malformed input; a bad payload is logged and dropped.
func (rt *Router) HandleEvent(origin string, evt models.Event) {
	switch evt.Kind {
	case models.EventOffer, models.EventAnswer, models.EventICECandidate:
		rt.relaySignal(origin, evt)
	case models.EventJoinRoom:
		rt.joinRoom(origin, evt.Data)
	case models.EventStartStream:
		rt.relayStream(origin, evt.Data, models.EventUserStartedStream)
	case models.EventStopStream:
		rt.relayStream(origin, evt.Data, models.EventUserStoppedStream)
	case models.EventSpeakingStarted, models.EventSpeakingStopped:
		rt.relaySpeaking(origin, evt)
	case models.EventMessage:
		rt.chatMessage(origin, evt.Data)
	case models.EventAddReaction:
		rt.addReaction(origin, evt.Data)
	case models.EventAdminRequestData:
		rt.adminRequestData(origin)
	case models.EventAdminCreateRoom:
		rt.adminCreateRoom(origin, evt.Data)
	case models.EventAdminDeleteRoom:
		rt.adminDeleteRoom(origin, evt.Data)
	case models.EventAdminKickUser:
		rt.adminKickUser(origin, evt.Data)
	case models.EventAdminBanUser:
		rt.adminBanUser(origin, evt.Data)
	default:
		log.Printf("Unknown event kind %q from %s", evt.Kind, origin)
	}
}

// relaySignal forwards offer/answer/ice-candidate payloads to the target
// connection, stamping the sender. The payload is never interpreted.
func (rt *Router) relaySignal(origin string, evt models.Event) {
	var payload models.SignalPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil {
		log.Printf("Malformed %s payload from %s: %v", evt.Kind, origin, err)
		return
	}
	if payload.Target == "" {
		log.Printf("Dropping %s from %s: no target", evt.Kind, origin)
		return
	}

	out := models.SignalPayload{Sender: origin}
	switch evt.Kind {
	case models.EventICECandidate:
		out.Candidate = payload.Candidate
	default:
		out.SDP = payload.SDP
	}
	rt.transport.SendTo(payload.Target, evt.Kind, out)
}

func (rt *Router) joinRoom(origin string, data json.RawMessage) {
	var payload models.JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		log.Printf("Malformed join_room payload from %s", origin)
		return
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	state, ok := rt.conns[origin]
	if !ok {
		// Connection closed before the join was processed.
		return
	}

	// A connection belongs to at most one room; a second join leaves the
	// first with the same cascade a disconnect would run.
	if state.room != "" && state.room != payload.Room {
		rt.leaveRoomLocked(origin, state.room)
	}

	r := rt.store.GetOrCreate(payload.Room)
	r.AddMember(origin, models.UserProfile{
		Username: payload.Username,
		Language: payload.Language,
	})
	r.SetPeerID(origin, payload.PeerID)
	state.room = payload.Room
	rt.mirror.AddPeer(payload.Room, origin)
	log.Printf("Connection %s joined room %q as %q", origin, payload.Room, payload.Username)

	joined := models.UserEventPayload{
		UserID:   origin,
		Username: payload.Username,
		Language: payload.Language,
		PeerID:   payload.PeerID,
	}
	for _, id := range r.MemberIDs() {
		if id != origin {
			rt.transport.SendTo(id, models.EventUserJoined, joined)
		}
	}
	rt.broadcastRoster(r)
}

// leaveRoomLocked removes connID from roomName and either deletes the emptied
// room or notifies the remaining members. Caller holds rt.mu.
func (rt *Router) leaveRoomLocked(connID, roomName string) {
	r, ok := rt.store.Get(roomName)
	if !ok {
		return
	}

	r.RemoveMember(connID)
	rt.mirror.RemovePeer(roomName, connID)
	if state, ok := rt.conns[connID]; ok && state.room == roomName {
		state.room = ""
	}

	if rt.store.RemoveIfEmpty(roomName) {
		rt.log.DropRoom(roomName)
		rt.mirror.DropRoom(roomName)
		log.Printf("Removed empty room %q", roomName)
		return
	}

	left := models.UserEventPayload{UserID: connID}
	for _, id := range r.MemberIDs() {
		rt.transport.SendTo(id, models.EventUserLeft, left)
	}
	rt.broadcastRoster(r)
}

func (rt *Router) broadcastRoster(r *room.Room) {
	roster := r.Roster()
	for _, entry := range roster {
		rt.transport.SendTo(entry.ID, models.EventUsersList, roster)
	}
}

func (rt *Router) relayStream(origin string, data json.RawMessage, outKind models.EventKind) {
	var payload models.RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		log.Printf("Malformed stream payload from %s", origin)
		return
	}

	r, ok := rt.store.Get(payload.Room)
	if !ok {
		return
	}

	out := models.UserEventPayload{UserID: origin}
	for _, id := range r.MemberIDs() {
		if id != origin {
			rt.transport.SendTo(id, outKind, out)
		}
	}
}

func (rt *Router) relaySpeaking(origin string, evt models.Event) {
	var payload models.SpeakingPayload
	if err := json.Unmarshal(evt.Data, &payload); err != nil || payload.Room == "" {
		log.Printf("Malformed %s payload from %s", evt.Kind, origin)
		return
	}

	r, ok := rt.store.Get(payload.Room)
	if !ok {
		log.Printf("Speaking event for unknown room %q", payload.Room)
		return
	}

	out := models.SpeakingPayload{Username: payload.Username}
	for _, id := range r.MemberIDs() {
		if id != origin {
			rt.transport.SendTo(id, evt.Kind, out)
		}
	}
}

func (rt *Router) chatMessage(origin string, data json.RawMessage) {
	var payload models.ChatPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		log.Printf("Malformed message payload from %s", origin)
		return
	}

	r, ok := rt.store.Get(payload.Room)
	if !ok {
		return
	}

	username := "Unknown"
	if profile, ok := r.Profile(origin); ok {
		username = profile.Username
	}

	msg := rt.log.Append(payload.Room, origin, username, payload.Text)
	for _, id := range r.MemberIDs() {
		rt.transport.SendTo(id, models.EventMessage, msg)
	}
	rt.transport.AdminBroadcast(models.EventAdminMessage, msg)
}

func (rt *Router) addReaction(origin string, data json.RawMessage) {
	var payload models.ReactionPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		log.Printf("Malformed add_reaction payload from %s", origin)
		return
	}

	reactions, ok := rt.log.AddReaction(payload.Room, payload.MessageID, payload.Emoji, payload.Username)
	if !ok {
		return
	}

	r, found := rt.store.Get(payload.Room)
	if !found {
		return
	}

	out := struct {
		MessageID string             `json:"message_id"`
		Reactions []history.Reaction `json:"reactions"`
	}{MessageID: payload.MessageID, Reactions: reactions}

	for _, id := range r.MemberIDs() {
		rt.transport.SendTo(id, models.EventReactionUpdated, out)
	}
}
