package token

import (
	"sync"
	"time"
)

// Denylist records access tokens that were revoked at logout before their natural expiry.
type Denylist interface {
	Deny(jti string, until time.Time)
	Denied(jti string) bool
	// Prune forgets entries that are past their expiry and reports how many were dropped.
	Prune(now time.Time) int
}

// MemoryDenylist keeps revoked jtis in process memory, keyed to the token's expiry.
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

var _ Denylist = (*MemoryDenylist)(nil)

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: map[string]time.Time{}}
}

func (d *MemoryDenylist) Deny(jti string, until time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = until
}

func (d *MemoryDenylist) Denied(jti string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.entries[jti]
	return ok
}

func (d *MemoryDenylist) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	dropped := 0
	for jti, until := range d.entries {
		if !now.Before(until) {
			delete(d.entries, jti)
			dropped++
		}
	}
	return dropped
}

// Len is the number of tokens currently denied.
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
