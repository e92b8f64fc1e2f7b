// Package interviewkit provides a high-level façade over the interview
// engine and its reasoning agents, enabling rapid construction of automated
// technical interview systems. Most applications interact with this package
// by:
//  1. Creating an InterviewKit via New() with a language model (optionally
//     overriding the default in-memory stores)
//  2. Starting interviews and feeding candidate answers
//  3. Collecting the final verdict once the interview finishes
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply durable stores, a
// structured logger and a real model provider.
package interviewkit

import (
	"context"

	"github.com/interviewkit/interviewkit/agent"
	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/engine"
	"github.com/interviewkit/interviewkit/logging"
	"github.com/interviewkit/interviewkit/model"
	"github.com/interviewkit/interviewkit/retrieval"
	"github.com/interviewkit/interviewkit/store"
)

// Options configures the InterviewKit instance.
type Options struct {
	// EngineConfig tunes the coordinator (minimum questions, inactivity
	// backstop).
	EngineConfig engine.Config

	// Model backs every reasoning agent. Defaults to a MockModel, which is
	// only useful for tests and local wiring checks.
	Model model.Model

	// Stores (default to in-memory implementations if not provided).
	ResumeStore core.ResumeStore
	ResultStore core.ResultStore

	// Retriever provides knowledge-base grounding for generated questions.
	// Nil disables retrieval.
	Retriever *retrieval.Retriever

	// Policies. Zero values select the production calibration.
	ScreenerPolicy  agent.ScreenerPolicy
	ReadinessPolicy agent.ReadinessPolicy

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// InterviewKit is the high-level façade aggregating the engine and agents.
type InterviewKit struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new InterviewKit with optional overrides. Any unset store is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *InterviewKit {
	opts := Options{
		EngineConfig:    engine.DefaultConfig,
		Model:           model.NewMockModel("default"),
		ResumeStore:     store.NewInMemoryResumeStore(),
		ResultStore:     store.NewInMemoryResultStore(),
		ScreenerPolicy:  agent.DefaultScreenerPolicy(),
		ReadinessPolicy: agent.DefaultReadinessPolicy(),
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.ResumeStore = opts.ResumeStore
		o.ResultStore = opts.ResultStore
		o.Logger = opts.Logger
		o.Questioner = agent.NewGenerator(opts.Model, func(g *agent.GeneratorOptions) {
			g.Retriever = opts.Retriever
			g.Logger = opts.Logger
		})
		o.Scorer = agent.NewScorer(opts.Model, func(s *agent.ScorerOptions) {
			s.Policy = opts.ReadinessPolicy
			s.Logger = opts.Logger
		})
		o.Screener = agent.NewScreener(opts.Model, func(s *agent.ScreenerOptions) {
			s.Policy = opts.ScreenerPolicy
			s.Logger = opts.Logger
		})
		o.Summarizer = agent.NewSummarizer(opts.Model, func(s *agent.SummarizerOptions) {
			s.Logger = opts.Logger
		})
	})

	return &InterviewKit{opts: opts, engine: eng}
}

// Engine exposes the underlying coordinator for transports that need it.
func (k *InterviewKit) Engine() *engine.Engine { return k.engine }

// Start begins an interview for the named candidate. An empty sessionID is
// rejected by transports; the façade passes it through unchanged.
func (k *InterviewKit) Start(ctx context.Context, sessionID, candidateName string) (*engine.StartResult, error) {
	return k.engine.StartInterview(ctx, sessionID, candidateName)
}

// Answer processes one candidate answer and returns either the next
// question, a security block, or the final verdict.
func (k *InterviewKit) Answer(ctx context.Context, sessionID, answer string) (*engine.AnswerResult, error) {
	return k.engine.ProcessAnswer(ctx, sessionID, answer)
}

// Status reports the current state of a session.
func (k *InterviewKit) Status(sessionID string) engine.Status {
	return k.engine.GetStatus(sessionID)
}

// End abandons a session. It is idempotent.
func (k *InterviewKit) End(sessionID string) {
	k.engine.Cleanup(sessionID)
}

// History returns all persisted interview records for the candidate.
func (k *InterviewKit) History(ctx context.Context, candidateName string) ([]core.InterviewRecord, error) {
	return k.opts.ResultStore.History(ctx, candidateName)
}

// Close releases every live session and stops background workers.
func (k *InterviewKit) Close() {
	k.engine.Close()
}
