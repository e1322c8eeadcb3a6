// Package redisx mirrors presence and ban state into Redis for external
// dashboards. The mirror is strictly best-effort: authoritative state lives in
// the in-memory store, and mirror failures are logged and ignored.
package redisx

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mossy-p/voicerooms/config"
)

const presenceTTL = 24 * time.Hour

// Mirror wraps a Redis client. A nil *Mirror is valid and turns every method
// into a no-op, so callers never branch on whether Redis is configured.
type Mirror struct {
	client *redis.Client
	ctx    context.Context
}

// Connect builds a mirror from config. An empty Addr returns (nil, nil):
// Redis disabled.
func Connect(cfg config.RedisConfig) (*Mirror, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Mirror{client: client, ctx: ctx}, nil
}

func (m *Mirror) Close() error {
	if m == nil {
		return nil
	}
	return m.client.Close()
}

// AddPeer records a connection in the room's peer set.
func (m *Mirror) AddPeer(room, connID string) {
	if m == nil {
		return
	}
	key := "room:" + room + ":peers"
	if err := m.client.SAdd(m.ctx, key, connID).Err(); err != nil {
		log.Printf("Redis mirror: failed to add peer %s to %s: %v", connID, room, err)
		return
	}
	m.client.Expire(m.ctx, key, presenceTTL)
}

// RemovePeer drops a connection from the room's peer set.
func (m *Mirror) RemovePeer(room, connID string) {
	if m == nil {
		return
	}
	if err := m.client.SRem(m.ctx, "room:"+room+":peers", connID).Err(); err != nil {
		log.Printf("Redis mirror: failed to remove peer %s from %s: %v", connID, room, err)
	}
}

// DropRoom discards the room's peer set.
func (m *Mirror) DropRoom(room string) {
	if m == nil {
		return
	}
	if err := m.client.Del(m.ctx, "room:"+room+":peers").Err(); err != nil {
		log.Printf("Redis mirror: failed to drop room %s: %v", room, err)
	}
}

// AddBan records a banned identity so bans survive a restart when Redis is
// configured.
func (m *Mirror) AddBan(identity string) {
	if m == nil {
		return
	}
	if err := m.client.SAdd(m.ctx, "banned", identity).Err(); err != nil {
		log.Printf("Redis mirror: failed to record ban for %s: %v", identity, err)
	}
}

// LoadBans returns the persisted ban set, empty when Redis is disabled.
func (m *Mirror) LoadBans() []string {
	if m == nil {
		return nil
	}
	banned, err := m.client.SMembers(m.ctx, "banned").Result()
	if err != nil {
		log.Printf("Redis mirror: failed to load ban set: %v", err)
		return nil
	}
	return banned
}
