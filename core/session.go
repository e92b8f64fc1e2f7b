package core

import (
	"sync"
	"time"
)

// SessionState is the lifecycle phase of an interview session.
type SessionState int

// Session lifecycle states. Transitions are strictly
// NotStarted -> Active -> Finalizing -> Closed.
const (
	StateNotStarted SessionState = iota
	StateActive
	StateFinalizing
	StateClosed
)

// String returns a readable state name.
func (s SessionState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFinalizing:
		return "finalizing"
	case StateClosed:
		return "closed"
	default:
		return "not_started"
	}
}

// Session is one interview instance. It is owned exclusively by the
// coordinator: created on interview start, destroyed on finalize or explicit
// cleanup. All exported methods are safe for concurrent use, but turn
// processing itself must be serialized by the owner (see engine).
type Session struct {
	ID            string
	CandidateName string
	Resume        ResumeFacts
	Created       time.Time

	mu       sync.RWMutex
	state    SessionState
	turns    []Turn
	pending  Question
	lastSeen time.Time
}

// NewSession creates an Active session for the candidate.
func NewSession(id, candidateName string, resume ResumeFacts) *Session {
	now := time.Now()
	return &Session{
		ID:            id,
		CandidateName: candidateName,
		Resume:        resume,
		Created:       now,
		state:         StateActive,
		lastSeen:      now,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState advances the lifecycle state.
func (s *Session) SetState(st SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Pending returns the question currently awaiting an answer.
func (s *Session) Pending() Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// SetPending stores the next question awaiting an answer.
func (s *Session) SetPending(q Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = q
	s.lastSeen = time.Now()
}

// AppendTurn appends a completed turn, assigning the next sequence number.
// Sequence numbers are strictly increasing with no gaps.
func (s *Session) AppendTurn(t Turn) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Seq = len(s.turns)
	s.turns = append(s.turns, t)
	s.lastSeen = time.Now()
	return t
}

// Turns returns a defensive copy of the turn history.
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// TurnCount returns the number of completed turns.
func (s *Session) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Touch marks the session as recently used for the inactivity backstop.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

// IdleSince reports the last moment the session saw activity.
func (s *Session) IdleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}
