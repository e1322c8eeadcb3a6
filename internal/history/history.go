// Package history keeps the best-effort in-memory chat log: one append-only
// message list per room with per-message reaction aggregation. Nothing here
// survives the process; the log exists for admin bulk queries and reaction
// updates, not durability.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reaction aggregates one emoji's reactors on a message. Users is
// deduplicated and preserves first-reaction order.
type Reaction struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
}

// Message is one chat message as stored and as broadcast to the room.
type Message struct {
	ID        string     `json:"message_id"`
	Room      string     `json:"room"`
	UserID    string     `json:"userId"`
	Username  string     `json:"username"`
	Text      string     `json:"message"`
	Timestamp string     `json:"timestamp"`
	Reactions []Reaction `json:"reactions"`
}

// Log is the process-wide message history.
type Log struct {
	mu    sync.RWMutex
	rooms map[string][]*Message
	now   func() time.Time
}

func NewLog() *Log {
	return &Log{
		rooms: make(map[string][]*Message),
		now:   time.Now,
	}
}

// Append stores a new message for room and returns it with its assigned id
// and timestamp. Append order is the router's arrival order for the room.
func (l *Log) Append(room, userID, username, text string) *Message {
	msg := &Message{
		ID:        uuid.New().String(),
		Room:      room,
		UserID:    userID,
		Username:  username,
		Text:      text,
		Timestamp: l.now().Format(time.RFC3339),
		Reactions: []Reaction{},
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms[room] = append(l.rooms[room], msg)
	return msg
}

// AddReaction records username's reaction on a message and returns the
// message's updated reaction list. Idempotent per (message, emoji, username).
// Returns false if the room or message is unknown.
func (l *Log) AddReaction(room, messageID, emoji, username string) ([]Reaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs, ok := l.rooms[room]
	if !ok {
		return nil, false
	}

	for _, msg := range msgs {
		if msg.ID != messageID {
			continue
		}
		for i := range msg.Reactions {
			if msg.Reactions[i].Emoji != emoji {
				continue
			}
			for _, u := range msg.Reactions[i].Users {
				if u == username {
					return copyReactions(msg.Reactions), true
				}
			}
			msg.Reactions[i].Users = append(msg.Reactions[i].Users, username)
			return copyReactions(msg.Reactions), true
		}
		msg.Reactions = append(msg.Reactions, Reaction{Emoji: emoji, Users: []string{username}})
		return copyReactions(msg.Reactions), true
	}
	return nil, false
}

// Room returns a copy of one room's message log.
func (l *Log) Room(room string) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyMessages(l.rooms[room])
}

// Snapshot returns all history keyed by room name.
func (l *Log) Snapshot() map[string][]Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string][]Message, len(l.rooms))
	for room, msgs := range l.rooms {
		out[room] = copyMessages(msgs)
	}
	return out
}

// DropRoom discards a room's history. Called when its room is removed so the
// log never outlives the room.
func (l *Log) DropRoom(room string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, room)
}

// Len returns the number of stored messages for room.
func (l *Log) Len(room string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rooms[room])
}

func copyMessages(msgs []*Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		cp := *m
		cp.Reactions = copyReactions(m.Reactions)
		out = append(out, cp)
	}
	return out
}

func copyReactions(reactions []Reaction) []Reaction {
	out := make([]Reaction, len(reactions))
	for i, r := range reactions {
		out[i] = Reaction{Emoji: r.Emoji, Users: append([]string(nil), r.Users...)}
	}
	return out
}
