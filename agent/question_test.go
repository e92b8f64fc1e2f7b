package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/memory"
	"github.com/interviewkit/interviewkit/model"
	"github.com/interviewkit/interviewkit/retrieval"
)

var facts = core.ResumeFacts{
	"skills": []string{"python"},
	"role":   "backend engineer",
}

func TestGenerateOpening(t *testing.T) {
	llm := model.NewMockModel("qgen")
	llm.QueueResponse(`{"question": "Tell me about yourself and your background.", "category": "opening", "difficulty": "easy", "rationale": "start light"}`)
	g := NewGenerator(llm)

	q := g.Generate(context.Background(), facts, StageOpening, nil, 0)
	assert.Equal(t, core.CategoryOpening, q.Category)
	assert.Contains(t, q.Text, "yourself")
}

func TestGenerateTailorsInstructionsToCandidate(t *testing.T) {
	llm := model.NewMockModel("qgen")
	llm.QueueResponse(`{"question": "q1"}`)
	llm.QueueResponse(`{"question": "q2"}`)
	g := NewGenerator(llm)

	g.Generate(context.Background(), facts, StageOpening, nil, 0)
	calls := llm.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Instructions, "backend engineer")
	assert.Contains(t, calls[0].Instructions, "python")

	// within a session the facts are constant, so the framing is stable
	g.Generate(context.Background(), facts, StageTechnical, []memory.QA{{Question: "q1", Answer: "a1"}}, 6)
	calls = llm.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Instructions, calls[1].Instructions)
}

func TestGenerateIsolatesConcurrentCandidates(t *testing.T) {
	// one generator serves every session; a second candidate's questions
	// must carry that candidate's background, not the first one's
	llm := model.NewMockModel("qgen")
	llm.QueueResponse(`{"question": "q1"}`)
	llm.QueueResponse(`{"question": "q2"}`)
	g := NewGenerator(llm)

	g.Generate(context.Background(), facts, StageOpening, nil, 0)

	other := core.ResumeFacts{
		"desired_position": "data scientist",
		"skills":           []string{"pandas"},
	}
	g.Generate(context.Background(), other, StageOpening, nil, 0)

	calls := llm.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Instructions, "data scientist")
	assert.Contains(t, calls[1].Instructions, "pandas")
	assert.NotContains(t, calls[1].Instructions, "backend engineer")
	assert.NotContains(t, calls[1].Instructions, "python")
}

func TestGenerateTechnicalUsesRetrievalAndHistory(t *testing.T) {
	embedder := retrieval.EmbedderFunc(func(_ context.Context, text string) ([]float64, error) {
		return []float64{1, 1}, nil
	})
	r := retrieval.NewRetriever(embedder)
	require.NoError(t, r.Add(context.Background(), "Explain Python's GIL and its effect on threading?"))

	llm := model.NewMockModel("qgen")
	llm.QueueResponse(`{"question": "What is the GIL?", "category": "technical", "difficulty": "medium"}`)
	g := NewGenerator(llm, func(o *GeneratorOptions) { o.Retriever = r })

	prior := []memory.QA{
		{Index: 0, Question: "q1", Answer: "a1"},
		{Index: 1, Question: "q2", Answer: "a2"},
		{Index: 2, Question: "q3", Answer: "a3"},
		{Index: 3, Question: "q4", Answer: "a4"},
	}
	q := g.Generate(context.Background(), facts, StageTechnical, prior, 6.5)
	assert.Equal(t, core.CategoryTechnical, q.Category)

	calls := llm.Calls()
	require.Len(t, calls, 1)
	prompt := calls[0].Messages[0].Text
	assert.Contains(t, prompt, "GIL", "retrieved passage must appear in the prompt")
	assert.Contains(t, prompt, "6.5/10")
	// only the 3 most recent turns condition the question
	assert.NotContains(t, prompt, "Q: q1")
	assert.Contains(t, prompt, "Q: q4")
}

func TestGenerateTechnicalFallsBackToQuestionBank(t *testing.T) {
	embedder := retrieval.EmbedderFunc(func(_ context.Context, text string) ([]float64, error) {
		return []float64{1, 0}, nil
	})
	r := retrieval.NewRetriever(embedder) // empty corpus, no passages to find

	llm := model.NewMockModel("qgen")
	llm.QueueResponse(`{"question": "Tell me about indexing strategies.", "category": "technical", "difficulty": "medium"}`)
	g := NewGenerator(llm, func(o *GeneratorOptions) { o.Retriever = r })

	g.Generate(context.Background(), facts, StageTechnical, nil, 0)

	calls := llm.Calls()
	require.Len(t, calls, 1)
	prompt := calls[0].Messages[0].Text
	assert.Contains(t, prompt, "Example questions for this profile")
	assert.Contains(t, prompt, "Please describe your experience working as a backend engineer")
}

func TestGenerateWrapsUnparseableOutput(t *testing.T) {
	llm := model.NewMockModel("qgen")
	llm.QueueResponse("Just tell me: how would you design a rate limiter?")
	g := NewGenerator(llm)

	q := g.Generate(context.Background(), nil, StageTechnical, nil, 0)
	assert.Equal(t, core.CategoryGeneral, q.Category)
	assert.Equal(t, core.DifficultyMedium, q.Difficulty)
	assert.True(t, strings.Contains(q.Text, "rate limiter"))
}

func TestGenerateModelFailureFallsBackToDefault(t *testing.T) {
	llm := model.NewMockModel("qgen")
	llm.FailWith(errors.New("provider down"))
	g := NewGenerator(llm)

	q := g.Generate(context.Background(), facts, StageTechnical, nil, 0)
	assert.Equal(t, DefaultQuestion.Text, q.Text)
	assert.Equal(t, core.DifficultyEasy, q.Difficulty)
}
