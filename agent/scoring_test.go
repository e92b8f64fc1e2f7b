package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/model"
)

var q = core.Question{
	Text:       "How does Go's garbage collector work?",
	Category:   core.CategoryTechnical,
	Difficulty: core.DifficultyMedium,
}

func TestScoreStructuredResponse(t *testing.T) {
	llm := model.NewMockModel("score")
	llm.QueueResponse(`{"score": 11, "breakdown": {"technical": 3, "communication": 3, "experience": 2, "innovation": 2}, "reasoning": "thorough"}`)
	s := NewScorer(llm)

	rec := s.Score(context.Background(), q, "It is a concurrent tri-color mark and sweep collector.", nil)
	assert.Equal(t, 10, rec.Overall, "out-of-range score must be clamped")
	assert.Equal(t, "thorough", rec.Rationale)
}

func TestScoreExtractsNumberFromText(t *testing.T) {
	llm := model.NewMockModel("score")
	llm.QueueResponse("I would say this answer deserves 7/10 because it covers the basics.")
	s := NewScorer(llm)

	rec := s.Score(context.Background(), q, "answer", nil)
	assert.Equal(t, 7, rec.Overall)
	assert.NotEmpty(t, rec.Rationale)
}

func TestScoreSentimentFallback(t *testing.T) {
	llm := model.NewMockModel("score")
	llm.QueueResponse("An excellent answer showing real depth.")
	s := NewScorer(llm)
	assert.Equal(t, 8, s.Score(context.Background(), q, "answer", nil).Overall)

	llm.QueueResponse("A poor answer missing the fundamentals.")
	assert.Equal(t, 3, s.Score(context.Background(), q, "answer", nil).Overall)

	llm.QueueResponse("No clear judgement here at all.")
	assert.Equal(t, 5, s.Score(context.Background(), q, "answer", nil).Overall)
}

func TestScoreModelFailureReturnsNeutral(t *testing.T) {
	llm := model.NewMockModel("score")
	llm.FailWith(errors.New("provider unavailable"))
	s := NewScorer(llm)

	rec := s.Score(context.Background(), q, "answer", core.ResumeFacts{"skills": []string{"go"}})
	assert.Equal(t, 5, rec.Overall)
	assert.Contains(t, rec.Rationale, "neutral score")

	// breakdown sums to the neutral score with every dimension at or above
	// its floor (technical/communication 1-3, experience/innovation 1-2)
	sum := 0
	for dim, v := range rec.Breakdown {
		assert.GreaterOrEqual(t, v, 1, dim)
		sum += v
	}
	assert.Equal(t, rec.Overall, sum)
}

func TestEvaluateReadinessRuleOrdering(t *testing.T) {
	s := NewScorer(model.NewMockModel("score"))

	// below the minimum question count
	r := s.EvaluateReadiness([]int{6, 6}, 3)
	assert.False(t, r.Ready)
	assert.Equal(t, RecommendContinue, r.Recommendation)

	// strong performance accepts early
	r = s.EvaluateReadiness([]int{8, 8, 8}, 3)
	assert.True(t, r.Ready)
	assert.Equal(t, RecommendAccept, r.Recommendation)

	// weak performance rejects early
	r = s.EvaluateReadiness([]int{2, 2, 2, 2}, 3)
	assert.True(t, r.Ready)
	assert.Equal(t, RecommendReject, r.Recommendation)

	// middling scores below the forced window continue
	r = s.EvaluateReadiness([]int{6, 5, 6}, 3)
	assert.False(t, r.Ready)
	assert.Equal(t, RecommendContinue, r.Recommendation)

	// forced decision once min+2 turns exist, accept iff average >= 6
	r = s.EvaluateReadiness([]int{6, 5, 6, 6, 7}, 3)
	assert.True(t, r.Ready)
	assert.Equal(t, RecommendAccept, r.Recommendation)

	r = s.EvaluateReadiness([]int{5, 5, 6, 5, 6}, 3)
	assert.True(t, r.Ready)
	assert.Equal(t, RecommendReject, r.Recommendation)
}

func TestExtractScoreFromTextPatterns(t *testing.T) {
	cases := map[string]int{
		"score: 9 overall":       9,
		"worth about 6 points":   6,
		"8/10 for this one":      8,
		"总分: 42":                 5, // unmatched patterns fall through to default
		"我给这个回答7分":               7,
		"score: 100, remarkable": 10,
	}
	for text, want := range cases {
		assert.Equal(t, want, extractScoreFromText(text), text)
	}
}
