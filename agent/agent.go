// Package agent implements the specialized reasoning agents of the interview
// pipeline: question generation, answer scoring, security screening and final
// summarization. Each agent owns one operation, degrades to a documented
// fallback when its reasoning step fails or returns malformed output, and is
// safe for concurrent use across sessions.
package agent

import (
	"context"

	"github.com/interviewkit/interviewkit/logging"
	"github.com/interviewkit/interviewkit/model"
)

// baseAgent bundles the model handle, identity and logger shared by all
// concrete agents.
type baseAgent struct {
	name   string
	llm    model.Model
	logger logging.Logger
}

func newBaseAgent(name string, llm model.Model, logger logging.Logger) baseAgent {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return baseAgent{name: name, llm: llm, logger: logger}
}

// invoke runs one reasoning step. Errors are returned to the caller so each
// agent can apply its own fallback; they are never retried here.
func (b *baseAgent) invoke(ctx context.Context, instructions string, msgs []model.Message) (string, error) {
	resp, err := b.llm.Invoke(ctx, model.Request{Instructions: instructions, Messages: msgs})
	if err != nil {
		b.logger.Warn("reasoning step failed", "agent", b.name, "error", err)
		return "", err
	}
	return resp, nil
}
