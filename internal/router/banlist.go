package router

import "sync"

// BanList is the process-wide set of banned identities. Entries are both
// connection ids and remote-address keys; connection ids are never reused, so
// the address key is what actually blocks a reconnect. Grows for process
// lifetime, no expiry.
type BanList struct {
	mu     sync.RWMutex
	banned map[string]struct{}
}

func NewBanList() *BanList {
	return &BanList{banned: make(map[string]struct{})}
}

func (b *BanList) Add(identity string) {
	if identity == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.banned[identity] = struct{}{}
}

func (b *BanList) Contains(identity string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.banned[identity]
	return ok
}

// Load seeds the list, used to restore persisted bans at startup.
func (b *BanList) Load(identities []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range identities {
		if id != "" {
			b.banned[id] = struct{}{}
		}
	}
}
