package models

import "encoding/json"

// EventKind identifies a signaling, room, chat, or moderation event.
type EventKind string

// Inbound event kinds (client -> server).
const (
	EventOffer           EventKind = "offer"
	EventAnswer          EventKind = "answer"
	EventICECandidate    EventKind = "ice-candidate"
	EventJoinRoom        EventKind = "join_room"
	EventStartStream     EventKind = "start_stream"
	EventStopStream      EventKind = "stop_stream"
	EventMessage         EventKind = "message"
	EventAddReaction     EventKind = "add_reaction"
	EventSpeakingStarted EventKind = "user_speaking_started"
	EventSpeakingStopped EventKind = "user_speaking_stopped"

	EventAdminRequestData EventKind = "admin_request_data"
	EventAdminCreateRoom  EventKind = "admin_create_room"
	EventAdminDeleteRoom  EventKind = "admin_delete_room"
	EventAdminKickUser    EventKind = "admin_kick_user"
	EventAdminBanUser     EventKind = "admin_ban_user"
)

// Outbound event kinds (server -> client).
const (
	EventUserJoined        EventKind = "user_joined"
	EventUsersList         EventKind = "users_list"
	EventUserLeft          EventKind = "user_left"
	EventUserStartedStream EventKind = "user_started_stream"
	EventUserStoppedStream EventKind = "user_stopped_stream"
	EventReactionUpdated   EventKind = "reaction_updated"
	EventRoomCreated       EventKind = "room_created"
	EventRoomDeleted       EventKind = "room_deleted"
	EventRoomListUpdated   EventKind = "room_list_updated"
	EventError             EventKind = "error"

	EventAdminMessage  EventKind = "admin_message"
	EventAdminData     EventKind = "admin_data"
	EventAdminMessages EventKind = "admin_messages"
)

// Event is the wire frame exchanged over the WebSocket: a kind plus an opaque
// JSON payload. Inbound payloads stay raw until the router dispatches on Kind.
type Event struct {
	Kind EventKind       `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SignalPayload carries SDP offers/answers and ICE candidates. The server
// relays Payload verbatim; Sender is stamped from the origin connection.
type SignalPayload struct {
	Target    string          `json:"target,omitempty"`
	Sender    string          `json:"sender,omitempty"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type JoinRoomPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Language string `json:"language"`
	PeerID   string `json:"peerId"`
}

type RoomPayload struct {
	Room string `json:"room"`
}

type SpeakingPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type ChatPayload struct {
	Room   string `json:"room"`
	Text   string `json:"text"`
	Sender string `json:"sender,omitempty"`
}

type ReactionPayload struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	Username  string `json:"username"`
	Room      string `json:"room"`
}

type UserEventPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	Language string `json:"language,omitempty"`
	PeerID   string `json:"peerId,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// TargetPayload identifies a connection for kick/ban moderation events.
type TargetPayload struct {
	ConnectionID string `json:"connectionId"`
}
