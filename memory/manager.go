package memory

import "sync"

// Manager holds the interview memories of all active sessions. Removal is
// idempotent; remove on unknown ids is a no-op.
type Manager struct {
	mu       sync.RWMutex
	memories map[string]*InterviewMemory
}

// NewManager constructs an empty manager.
func NewManager() *Manager {
	return &Manager{memories: make(map[string]*InterviewMemory)}
}

// Create allocates a fresh memory for the session, replacing any existing one.
func (m *Manager) Create(sessionID, candidateName string) *InterviewMemory {
	mem := New(candidateName)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memories[sessionID] = mem
	return mem
}

// Get returns the memory for the session, or nil if none exists.
func (m *Manager) Get(sessionID string) *InterviewMemory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.memories[sessionID]
}

// Remove deletes the session's memory. Safe to call repeatedly.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.memories, sessionID)
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.memories)
}
