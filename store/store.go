// Package store provides volatile in-memory implementations of the résumé
// and result store contracts. They are safe for concurrent access and best
// suited for tests or ephemeral demo servers; production deployments supply
// durable implementations of the same interfaces.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/interviewkit/interviewkit/core"
)

// InMemoryResumeStore keeps résumé facts keyed by candidate name.
type InMemoryResumeStore struct {
	mu      sync.RWMutex
	resumes map[string]core.ResumeFacts
}

var _ core.ResumeStore = (*InMemoryResumeStore)(nil)

// NewInMemoryResumeStore constructs an empty résumé store.
func NewInMemoryResumeStore() *InMemoryResumeStore {
	return &InMemoryResumeStore{resumes: make(map[string]core.ResumeFacts)}
}

// Put stores or replaces the résumé for a candidate.
func (s *InMemoryResumeStore) Put(name string, facts core.ResumeFacts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumes[name] = facts
}

// GetByCandidateName implements core.ResumeStore.
func (s *InMemoryResumeStore) GetByCandidateName(_ context.Context, name string) (core.ResumeFacts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	facts, ok := s.resumes[name]
	if !ok {
		return nil, core.ErrCandidateNotFound
	}
	out := make(core.ResumeFacts, len(facts))
	for k, v := range facts {
		out[k] = v
	}
	return out, nil
}

// InMemoryResultStore keeps interview records per candidate in insertion order.
type InMemoryResultStore struct {
	mu      sync.RWMutex
	records map[string][]core.InterviewRecord
}

var _ core.ResultStore = (*InMemoryResultStore)(nil)

// NewInMemoryResultStore constructs an empty result store.
func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{records: make(map[string][]core.InterviewRecord)}
}

// Save implements core.ResultStore, assigning a record id and timestamp when absent.
func (s *InMemoryResultStore) Save(_ context.Context, rec core.InterviewRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.CandidateName] = append(s.records[rec.CandidateName], rec)
	return true, nil
}

// History implements core.ResultStore.
func (s *InMemoryResultStore) History(_ context.Context, candidateName string) ([]core.InterviewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.records[candidateName]
	out := make([]core.InterviewRecord, len(records))
	copy(out, records)
	return out, nil
}
