package client

import (
	"sync"
	"time"
)

// DefaultLastActionTTL is how long a local write suppresses its own echo
const DefaultLastActionTTL = 2 * time.Second

// LastAction remembers the id of the entity this client most recently wrote,
// for a short window. At most one id is held; setting a new one replaces the
// old one and restarts the window.
type LastAction struct {
	clock Clock
	ttl   time.Duration

	mu    sync.Mutex
	id    string
	timer Timer
	gen   uint64
}

// NewLastAction creates an empty marker
func NewLastAction(clock Clock, ttl time.Duration) *LastAction {
	if clock == nil {
		clock = SystemClock
	}
	if ttl <= 0 {
		ttl = DefaultLastActionTTL
	}
	return &LastAction{clock: clock, ttl: ttl}
}

// Set records id and cancels any pending expiry
func (l *LastAction) Set(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timer != nil {
		l.timer.Stop()
	}
	l.gen++
	gen := l.gen
	l.id = id
	l.timer = l.clock.AfterFunc(l.ttl, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.gen == gen {
			l.id = ""
			l.timer = nil
		}
	})
}

// Matches reports whether id is the live marker
func (l *LastAction) Matches(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return id != "" && l.id == id
}

// Current returns the live marker, or "" if none
func (l *LastAction) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id
}

// Clear drops the marker and its pending expiry
func (l *LastAction) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.gen++
	l.id = ""
}
