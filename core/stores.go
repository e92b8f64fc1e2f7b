package core

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors surfaced to transport callers. Everything else the engine
// reports is a generic system error with session state left untouched.
var (
	// ErrCandidateNotFound indicates no résumé exists for the candidate.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrSessionNotFound indicates the session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionNotActive indicates the session exists but is finalizing or closed.
	ErrSessionNotActive = errors.New("session not active")
)

// ResumeStore retrieves candidate background records.
type ResumeStore interface {
	// GetByCandidateName returns the résumé facts for the named candidate or
	// ErrCandidateNotFound.
	GetByCandidateName(ctx context.Context, name string) (ResumeFacts, error)
}

// InterviewRecord is the persisted outcome of one finished interview.
type InterviewRecord struct {
	ID             string                `json:"id"`
	CandidateName  string                `json:"candidate_name"`
	Decision       Decision              `json:"decision"`
	Passed         bool                  `json:"passed"`
	Summary        string                `json:"summary"`
	Transcript     string                `json:"transcript,omitempty"`
	Scores         []int                 `json:"scores"`
	AverageScore   float64               `json:"average_score"`
	QuestionCount  int                   `json:"question_count"`
	SecurityAlerts []SecurityAlert       `json:"security_alerts,omitempty"`
	Verdict        FinalVerdict          `json:"verdict"`
	SecurityReport SessionSecurityReport `json:"security_report"`
	Timestamp      time.Time             `json:"timestamp"`
}

// ResultStore persists interview outcomes and serves past records.
type ResultStore interface {
	// Save persists the record, reporting success. The engine treats a false
	// return as non-fatal: the verdict is still returned to the caller.
	Save(ctx context.Context, rec InterviewRecord) (bool, error)
	// History returns all past records for the candidate, oldest first.
	History(ctx context.Context, candidateName string) ([]InterviewRecord, error)
}
