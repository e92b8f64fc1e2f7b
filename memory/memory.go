// Package memory provides per-session interview memory: an append-only
// question/answer log, a score log, and arbitrary key/value context, plus a
// manager keyed by session id. All types are safe for concurrent access.
package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// QA is one recorded question/answer pair. Index is the position in the log.
type QA struct {
	Index     int
	Question  string
	Answer    string
	Timestamp time.Time
}

// Score is one recorded grade referencing a QA entry by index.
type Score struct {
	QAIndex   int
	Value     int
	Rationale string
	Timestamp time.Time
}

// InterviewMemory accumulates the history of one interview session. The Q/A
// log is append-only; no entry is ever mutated or deleted except by removing
// the whole session via the Manager.
type InterviewMemory struct {
	candidateName string
	created       time.Time

	mu      sync.RWMutex
	qa      []QA
	scores  []Score
	context map[string]any
}

// New creates an empty memory for the candidate.
func New(candidateName string) *InterviewMemory {
	return &InterviewMemory{
		candidateName: candidateName,
		created:       time.Now(),
		context:       make(map[string]any),
	}
}

// CandidateName returns the candidate the memory belongs to.
func (m *InterviewMemory) CandidateName() string { return m.candidateName }

// Append records a question/answer pair and returns its index.
func (m *InterviewMemory) Append(question, answer string, ts time.Time) int {
	if ts.IsZero() {
		ts = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.qa)
	m.qa = append(m.qa, QA{Index: idx, Question: question, Answer: answer, Timestamp: ts})
	return idx
}

// RecordScore attaches a grade to the QA entry at qaIndex.
func (m *InterviewMemory) RecordScore(qaIndex, value int, rationale string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, Score{
		QAIndex:   qaIndex,
		Value:     value,
		Rationale: rationale,
		Timestamp: time.Now(),
	})
}

// AverageScore returns the arithmetic mean of all recorded scores, or 0 when
// no scores exist.
func (m *InterviewMemory) AverageScore() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range m.scores {
		sum += s.Value
	}
	return float64(sum) / float64(len(m.scores))
}

// Scores returns a copy of the score log.
func (m *InterviewMemory) Scores() []Score {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Score, len(m.scores))
	copy(out, m.scores)
	return out
}

// Recent returns the last n QA entries (all of them if fewer exist).
func (m *InterviewMemory) Recent(n int) []QA {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 || len(m.qa) == 0 {
		return nil
	}
	start := len(m.qa) - n
	if start < 0 {
		start = 0
	}
	out := make([]QA, len(m.qa)-start)
	copy(out, m.qa[start:])
	return out
}

// Len returns the number of recorded QA entries.
func (m *InterviewMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.qa)
}

// SetContext stores an arbitrary named context value.
func (m *InterviewMemory) SetContext(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context[key] = value
}

// Context returns a named context value and whether it exists.
func (m *InterviewMemory) Context(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.context[key]
	return v, ok
}

// Transcript renders the full history as readable text, optionally with
// per-question scores and the running average. Used as summarizer input.
func (m *InterviewMemory) Transcript(includeScores bool) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s\nInterview started: %s\n\n",
		m.candidateName, m.created.Format(time.RFC3339))

	scoreByIndex := make(map[int]Score, len(m.scores))
	for _, s := range m.scores {
		scoreByIndex[s.QAIndex] = s
	}

	for _, qa := range m.qa {
		fmt.Fprintf(&b, "Question %d: %s\nAnswer: %s\n", qa.Index+1, qa.Question, qa.Answer)
		if includeScores {
			if s, ok := scoreByIndex[qa.Index]; ok {
				fmt.Fprintf(&b, "Score: %d/10\n", s.Value)
				if s.Rationale != "" {
					fmt.Fprintf(&b, "Rationale: %s\n", s.Rationale)
				}
			}
		}
		b.WriteString("\n")
	}

	if includeScores && len(m.scores) > 0 {
		sum := 0
		for _, s := range m.scores {
			sum += s.Value
		}
		fmt.Fprintf(&b, "Current average: %.2f/10\n", float64(sum)/float64(len(m.scores)))
	}
	return b.String()
}
