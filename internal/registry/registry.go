// Package registry maps opaque connection ids to their live transport
// handles. It is the only component that touches the transport directly;
// everything above it addresses peers by connection id.
package registry

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/mossy-p/voicerooms/internal/models"
)

// Conn is the transport handle for one connected client. Enqueue is
// non-blocking: it reports false when the send buffer is full or the
// connection is gone, and the caller drops the payload.
type Conn interface {
	Enqueue(payload []byte) bool
	Close() error
}

type entry struct {
	conn  Conn
	admin bool
}

// Registry tracks currently connected clients.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]entry
}

func New() *Registry {
	return &Registry{conns: make(map[string]entry)}
}

// Register records a live connection. Admin connections additionally receive
// the moderation feed (admin_message and friends).
func (r *Registry) Register(connID string, conn Conn, admin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = entry{conn: conn, admin: admin}
}

// Unregister removes a connection; idempotent.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
}

// IsRegistered reports whether connID currently has a live transport.
func (r *Registry) IsRegistered(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[connID]
	return ok
}

// IsAdmin reports whether connID was registered with admin privilege.
func (r *Registry) IsAdmin(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[connID].admin
}

// SendTo delivers one event to a single connection. A vanished target is
// logged and dropped; in-flight signaling racing a disconnect is expected.
func (r *Registry) SendTo(connID string, kind models.EventKind, data any) {
	r.mu.RLock()
	e, ok := r.conns[connID]
	r.mu.RUnlock()

	if !ok {
		log.Printf("Target connection %s not found, dropping %s", connID, kind)
		return
	}

	payload, err := encode(kind, data)
	if err != nil {
		return
	}
	if !e.conn.Enqueue(payload) {
		log.Printf("Failed to send %s to connection %s, buffer full", kind, connID)
	}
}

// Broadcast delivers one event to every registered connection.
func (r *Registry) Broadcast(kind models.EventKind, data any) {
	payload, err := encode(kind, data)
	if err != nil {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for connID, e := range r.conns {
		if !e.conn.Enqueue(payload) {
			log.Printf("Failed to send %s to connection %s, buffer full", kind, connID)
		}
	}
}

// AdminBroadcast delivers one event to every admin-privileged connection.
func (r *Registry) AdminBroadcast(kind models.EventKind, data any) {
	payload, err := encode(kind, data)
	if err != nil {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for connID, e := range r.conns {
		if !e.admin {
			continue
		}
		if !e.conn.Enqueue(payload) {
			log.Printf("Failed to send %s to admin connection %s, buffer full", kind, connID)
		}
	}
}

// ForceDisconnect terminates a connection's transport. Cleanup runs through
// the same disconnect path as a natural close.
func (r *Registry) ForceDisconnect(connID string) {
	r.mu.RLock()
	e, ok := r.conns[connID]
	r.mu.RUnlock()

	if !ok {
		return
	}
	if err := e.conn.Close(); err != nil {
		log.Printf("Failed to close connection %s: %v", connID, err)
	}
}

func encode(kind models.EventKind, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Printf("Failed to marshal %s payload: %v", kind, err)
			return nil, err
		}
		raw = b
	}

	payload, err := json.Marshal(models.Event{Kind: kind, Data: raw})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", kind, err)
		return nil, err
	}
	return payload, nil
}
