// Package session keeps one view binder per browser session in memory.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/serroba/shurl-web/internal/view"
)

var ErrNotFound = errors.New("session not found")

// BinderFactory builds the binder for a new session.
type BinderFactory func() *view.Binder

type entry struct {
	binder   *view.Binder
	lastSeen time.Time
}

// Manager is an in-memory registry of session binders with idle expiry.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*entry // session id -> binder
	newBinder BinderFactory
	ttl       time.Duration
	max       int
	now       func() time.Time
}

// NewManager creates a registry whose sessions expire after ttl without use.
// A non-positive ttl keeps sessions forever.
func NewManager(newBinder BinderFactory, ttl time.Duration) *Manager {
	return &Manager{
		sessions:  make(map[string]*entry),
		newBinder: newBinder,
		ttl:       ttl,
		now:       time.Now,
	}
}

// WithClock swaps the time source. Used in tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now

	return m
}

// WithMaxSessions caps how many sessions are held. When a new session would
// exceed it, expired sessions are dropped first and then the least recently
// used one. A non-positive limit means no cap.
func (m *Manager) WithMaxSessions(limit int) *Manager {
	m.max = limit

	return m
}

// Get returns the binder of a live session.
func (m *Manager) Get(id string) (*view.Binder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	now := m.now()
	if m.expired(e, now) {
		delete(m.sessions, id)

		return nil, ErrNotFound
	}

	e.lastSeen = now

	return e.binder, nil
}

// Open returns the binder of session id, creating it if needed.
func (m *Manager) Open(id string) *view.Binder {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if e, ok := m.sessions[id]; ok && !m.expired(e, now) {
		e.lastSeen = now

		return e.binder
	}

	delete(m.sessions, id)
	m.makeRoom(now)

	e := &entry{binder: m.newBinder(), lastSeen: now}
	m.sessions[id] = e

	return e.binder
}

// makeRoom frees one slot when the registry is full. Callers hold m.mu.
func (m *Manager) makeRoom(now time.Time) {
	if m.max <= 0 || len(m.sessions) < m.max {
		return
	}

	oldestID := ""

	var oldest time.Time

	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)

			continue
		}

		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}

	if len(m.sessions) >= m.max {
		delete(m.sessions, oldestID)
	}
}

// Sweep drops every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0

	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// SweepEvery runs Sweep on every tick until ctx is done.
// onSweep, when set, receives the number of sessions removed by each run.
func (m *Manager) SweepEvery(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := m.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}

// Len returns the number of sessions held, expired or not.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Shutdown drops all sessions.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.sessions)

	return nil
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.lastSeen) > m.ttl
}
