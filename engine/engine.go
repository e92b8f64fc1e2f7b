// Package engine implements the interview coordinator: it owns the session
// lifecycle state machine, sequences the reasoning agents for every turn,
// applies the termination and safety policy and persists final results.
//
// Turn processing is strictly sequential per session: scoring, readiness
// evaluation and question generation each depend on the memory state left by
// the previous step, so a per-session lock serializes ProcessAnswer while
// distinct sessions proceed fully in parallel.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/interviewkit/interviewkit/agent"
	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/logging"
	"github.com/interviewkit/interviewkit/memory"
)

// ErrSessionExists indicates a start request reused a live session id.
var ErrSessionExists = errors.New("session already exists")

// Questioner produces the next interview question.
type Questioner interface {
	Generate(ctx context.Context, facts core.ResumeFacts, stage agent.Stage, prior []memory.QA, avgScore float64) core.Question
}

// Scorer grades answers and evaluates interview readiness.
type Scorer interface {
	Score(ctx context.Context, q core.Question, answer string, facts core.ResumeFacts) core.ScoreRecord
	EvaluateReadiness(scores []int, minQuestions int) agent.Readiness
}

// Screener classifies candidate input and rolls up session security.
type Screener interface {
	Screen(ctx context.Context, input string, sessionCtx map[string]any) core.SecurityVerdict
	AnalyzeSession(turns []core.Turn) core.SessionSecurityReport
}

// Summarizer produces the final verdict for a finished interview.
type Summarizer interface {
	Summarize(ctx context.Context, candidateName string, facts core.ResumeFacts, turns []core.Turn, avgScore float64, security core.SessionSecurityReport) core.FinalVerdict
}

// Compile-time wiring checks against the concrete agents.
var (
	_ Questioner = (*agent.Generator)(nil)
	_ Scorer     = (*agent.Scorer)(nil)
	_ Screener   = (*agent.Screener)(nil)
	_ Summarizer = (*agent.Summarizer)(nil)
)

// Config carries the coordinator policy knobs.
type Config struct {
	// MinQuestions is the minimum number of scored turns before the
	// readiness check may end the interview.
	MinQuestions int
	// InactivityTimeout closes sessions idle past this window. Zero
	// disables the backstop.
	InactivityTimeout time.Duration
	// SweepInterval is how often idle sessions are checked.
	SweepInterval time.Duration
}

// DefaultConfig is the baseline coordinator configuration.
var DefaultConfig = Config{
	MinQuestions:      3,
	InactivityTimeout: 30 * time.Minute,
	SweepInterval:     time.Minute,
}

// Options configures an Engine.
type Options struct {
	Config      Config
	ResumeStore core.ResumeStore
	ResultStore core.ResultStore
	Questioner  Questioner
	Scorer      Scorer
	Screener    Screener
	Summarizer  Summarizer
	Logger      logging.Logger
}

// Engine coordinates all active interview sessions. All methods are safe for
// concurrent use.
type Engine struct {
	cfg        Config
	resumes    core.ResumeStore
	results    core.ResultStore
	questioner Questioner
	scorer     Scorer
	screener   Screener
	summarizer Summarizer
	logger     logging.Logger
	memories   *memory.Manager

	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	stopOnce sync.Once
	stop     chan struct{}
}

// sessionEntry pairs a session with the lock serializing its turn processing.
type sessionEntry struct {
	mu      sync.Mutex
	session *core.Session
}

// New constructs an Engine and starts the inactivity sweeper when enabled.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{Config: DefaultConfig, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	e := &Engine{
		cfg:        opts.Config,
		resumes:    opts.ResumeStore,
		results:    opts.ResultStore,
		questioner: opts.Questioner,
		scorer:     opts.Scorer,
		screener:   opts.Screener,
		summarizer: opts.Summarizer,
		logger:     opts.Logger,
		memories:   memory.NewManager(),
		sessions:   make(map[string]*sessionEntry),
		stop:       make(chan struct{}),
	}

	if e.cfg.InactivityTimeout > 0 {
		interval := e.cfg.SweepInterval
		if interval <= 0 {
			interval = time.Minute
		}
		go e.sweep(interval)
	}
	return e
}

// Close stops the sweeper and releases every remaining session.
func (e *Engine) Close() {
	e.stopOnce.Do(func() { close(e.stop) })
	e.mu.Lock()
	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	for _, id := range ids {
		e.Cleanup(id)
	}
}

// StartResult is the response to a successful interview start.
type StartResult struct {
	SessionID     string        `json:"session_id"`
	CandidateName string        `json:"candidate_name"`
	Question      core.Question `json:"question"`
	Greeting      string        `json:"greeting"`
}

// StartInterview fetches the candidate's résumé, creates the session and
// produces the opening question.
func (e *Engine) StartInterview(ctx context.Context, sessionID, candidateName string) (*StartResult, error) {
	facts, err := e.resumes.GetByCandidateName(ctx, candidateName)
	if err != nil {
		if errors.Is(err, core.ErrCandidateNotFound) {
			return nil, fmt.Errorf("start interview for %q: %w", candidateName, core.ErrCandidateNotFound)
		}
		return nil, fmt.Errorf("fetch resume: %w", err)
	}

	sess := core.NewSession(sessionID, candidateName, facts)
	entry := &sessionEntry{session: sess}

	e.mu.Lock()
	if _, exists := e.sessions[sessionID]; exists {
		e.mu.Unlock()
		return nil, fmt.Errorf("start interview %q: %w", sessionID, ErrSessionExists)
	}
	e.sessions[sessionID] = entry
	e.mu.Unlock()

	mem := e.memories.Create(sessionID, candidateName)
	mem.SetContext("resume_facts", facts)
	mem.SetContext("session_start", sess.Created)

	opening := e.questioner.Generate(ctx, facts, agent.StageOpening, nil, 0)
	sess.SetPending(opening)

	e.logger.Info("interview started",
		"session_id", sessionID, "candidate", candidateName)

	return &StartResult{
		SessionID:     sessionID,
		CandidateName: candidateName,
		Question:      opening,
		Greeting:      fmt.Sprintf("Welcome, %s! Let's begin.", candidateName),
	}, nil
}

// AnswerResult is the response to one processed answer. Exactly one of the
// three shapes is populated: a security block, the next question, or the
// final verdict.
type AnswerResult struct {
	Blocked     bool   `json:"blocked,omitempty"`
	BlockReason string `json:"block_reason,omitempty"`

	Score           int            `json:"score,omitempty"`
	NextQuestion    *core.Question `json:"next_question,omitempty"`
	SecurityWarning bool           `json:"security_warning,omitempty"`
	AverageScore    float64        `json:"average_score"`
	TurnCount       int            `json:"turn_count"`

	Done    bool               `json:"done,omitempty"`
	Verdict *core.FinalVerdict `json:"verdict,omitempty"`
	Saved   bool               `json:"saved,omitempty"`
}

// ProcessAnswer runs one interview turn: screen, score, record, then either
// finalize or ask the next question. A high-risk input blocks without
// recording a turn and the session stays active so the candidate may retry.
func (e *Engine) ProcessAnswer(ctx context.Context, sessionID, answer string) (*AnswerResult, error) {
	entry, ok := e.entry(sessionID)
	if !ok {
		return nil, core.ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	sess := entry.session
	if sess.State() != core.StateActive {
		return nil, core.ErrSessionNotActive
	}
	mem := e.memories.Get(sessionID)
	if mem == nil {
		return nil, core.ErrSessionNotFound
	}

	pending := sess.Pending()
	verdict := e.screener.Screen(ctx, answer, map[string]any{
		"session_id":       sessionID,
		"candidate_name":   sess.CandidateName,
		"current_question": pending.Text,
	})

	if verdict.Risk == core.RiskHigh {
		sess.Touch()
		e.logger.Warn("answer blocked",
			"session_id", sessionID, "issues", verdict.Issues)
		return &AnswerResult{
			Blocked:      true,
			BlockReason:  verdict.Rationale,
			AverageScore: mem.AverageScore(),
			TurnCount:    sess.TurnCount(),
		}, nil
	}

	score := e.scorer.Score(ctx, pending, answer, sess.Resume)
	qaIndex := mem.Append(pending.Text, answer, time.Now())
	mem.RecordScore(qaIndex, score.Overall, score.Rationale)
	sess.AppendTurn(core.Turn{
		Question:  pending,
		Answer:    answer,
		Security:  verdict,
		Score:     score,
		Timestamp: time.Now(),
	})

	scores := make([]int, 0, len(mem.Scores()))
	for _, s := range mem.Scores() {
		scores = append(scores, s.Value)
	}
	readiness := e.scorer.EvaluateReadiness(scores, e.cfg.MinQuestions)
	if readiness.Ready {
		return e.finalize(ctx, sessionID, sess, mem)
	}

	next := e.questioner.Generate(ctx, sess.Resume, stageForTurn(sess.TurnCount()), mem.Recent(mem.Len()), mem.AverageScore())
	sess.SetPending(next)

	return &AnswerResult{
		Score:           score.Overall,
		NextQuestion:    &next,
		SecurityWarning: verdict.Risk == core.RiskMedium,
		AverageScore:    mem.AverageScore(),
		TurnCount:       sess.TurnCount(),
	}, nil
}

// finalize runs the summary pipeline and persists the result. Caller holds
// the session entry lock.
func (e *Engine) finalize(ctx context.Context, sessionID string, sess *core.Session, mem *memory.InterviewMemory) (*AnswerResult, error) {
	sess.SetState(core.StateFinalizing)

	turns := sess.Turns()
	securityReport := e.screener.AnalyzeSession(turns)
	verdict := e.summarizer.Summarize(ctx, sess.CandidateName, sess.Resume, turns, mem.AverageScore(), securityReport)

	scores := make([]int, 0, len(turns))
	for _, t := range turns {
		scores = append(scores, t.Score.Overall)
	}
	record := core.InterviewRecord{
		CandidateName:  sess.CandidateName,
		Decision:       verdict.Decision,
		Passed:         verdict.Decision == core.DecisionAccept,
		Summary:        verdict.Summary,
		Transcript:     mem.Transcript(true),
		Scores:         scores,
		AverageScore:   mem.AverageScore(),
		QuestionCount:  len(turns),
		SecurityAlerts: securityReport.Alerts,
		Verdict:        verdict,
		SecurityReport: securityReport,
		Timestamp:      time.Now(),
	}

	result := &AnswerResult{
		Done:         true,
		Verdict:      &verdict,
		AverageScore: mem.AverageScore(),
		TurnCount:    len(turns),
	}

	// a concurrent cleanup may have removed the session; late results are
	// discarded, not persisted
	if _, live := e.entry(sessionID); !live {
		e.logger.Warn("session removed mid-finalize, result discarded", "session_id", sessionID)
		return result, nil
	}

	saved, err := e.results.Save(ctx, record)
	if err != nil {
		e.logger.Error("persist interview result",
			"session_id", sessionID, "error", err)
	}
	result.Saved = saved && err == nil

	sess.SetState(core.StateClosed)
	e.Cleanup(sessionID)

	e.logger.Info("interview finished",
		"session_id", sessionID,
		"decision", verdict.Decision,
		"score", verdict.OverallScore,
		"saved", result.Saved)
	return result, nil
}

// stageForTurn picks the phase of the next question. Most follow-ups probe
// technical depth; every third question shifts to soft skills.
func stageForTurn(completedTurns int) agent.Stage {
	if completedTurns > 0 && completedTurns%3 == 0 {
		return agent.StageBehavioral
	}
	return agent.StageTechnical
}

// Status is a read-only projection of one session.
type Status struct {
	Exists        bool          `json:"exists"`
	State         string        `json:"state,omitempty"`
	CandidateName string        `json:"candidate_name,omitempty"`
	TurnCount     int           `json:"turn_count,omitempty"`
	AverageScore  float64       `json:"average_score,omitempty"`
	Pending       string        `json:"pending_question,omitempty"`
	Elapsed       time.Duration `json:"elapsed,omitempty"`
}

// GetStatus reports the current state of a session without mutating it.
func (e *Engine) GetStatus(sessionID string) Status {
	entry, ok := e.entry(sessionID)
	if !ok {
		return Status{}
	}
	sess := entry.session
	avg := 0.0
	if mem := e.memories.Get(sessionID); mem != nil {
		avg = mem.AverageScore()
	}
	return Status{
		Exists:        true,
		State:         sess.State().String(),
		CandidateName: sess.CandidateName,
		TurnCount:     sess.TurnCount(),
		AverageScore:  avg,
		Pending:       sess.Pending().Text,
		Elapsed:       time.Since(sess.Created),
	}
}

// Cleanup removes the session and its memory. It is idempotent and safe to
// call from any transport teardown hook, on closed sessions and on unknown
// ids, including while an answer is in flight (the in-flight result is then
// discarded before persisting).
func (e *Engine) Cleanup(sessionID string) {
	e.mu.Lock()
	_, existed := e.sessions[sessionID]
	delete(e.sessions, sessionID)
	e.mu.Unlock()

	e.memories.Remove(sessionID)
	if existed {
		e.logger.Info("session cleaned up", "session_id", sessionID)
	}
}

// SessionCount returns the number of live sessions.
func (e *Engine) SessionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}

func (e *Engine) entry(sessionID string) (*sessionEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.sessions[sessionID]
	return entry, ok
}

// sweep is the inactivity backstop for transports that never signal
// disconnect.
func (e *Engine) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-e.cfg.InactivityTimeout)
			e.mu.RLock()
			var stale []string
			for id, entry := range e.sessions {
				if entry.session.IdleSince().Before(cutoff) {
					stale = append(stale, id)
				}
			}
			e.mu.RUnlock()
			for _, id := range stale {
				e.logger.Warn("session expired from inactivity", "session_id", id)
				e.Cleanup(id)
			}
		}
	}
}
