package moderation

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

type realTimer struct{ t *time.Timer }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

func (t realTimer) Stop() bool { return t.t.Stop() }

// Registry maps (guildID, userID) keys to cancellable delayed role-removal
// actions. At most one live timer exists per key; scheduling over an existing
// entry cancels the old timer first, and a fired timer removes its own entry
// before running the action.
type Registry struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]*registryEntry
}

type registryEntry struct {
	timer Timer
}

func NewRegistry() *Registry {
	return &Registry{
		clock:   realClock{},
		entries: make(map[string]*registryEntry),
	}
}

func (r *Registry) WithClock(clock Clock) {
	r.clock = clock
}

// RemovalKey builds the registry key for a guild member.
func RemovalKey(guildID, userID string) string {
	return guildID + "#" + userID
}

func (r *Registry) Schedule(key string, d time.Duration, action func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.entries[key]; existing != nil {
		existing.timer.Stop()
	}

	entry := &registryEntry{}
	r.entries[key] = entry
	entry.timer = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		if r.entries[key] != entry {
			// Cancelled or replaced between firing and acquiring the lock.
			r.mu.Unlock()
			return
		}
		delete(r.entries, key)
		r.mu.Unlock()
		action()
	})
}

// CancelAndRemove stops and forgets the timer for key. Absent keys are a
// no-op, not an error.
func (r *Registry) CancelAndRemove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry := r.entries[key]; entry != nil {
		entry.timer.Stop()
		delete(r.entries, key)
	}
}

// Contains reports whether a live entry exists for key.
func (r *Registry) Contains(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[key] != nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
