package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/model"
)

func scoredTurn(seq, score int) core.Turn {
	return core.Turn{
		Seq:      seq,
		Question: core.Question{Text: "q", Category: core.CategoryTechnical},
		Answer:   "a",
		Security: core.SecurityVerdict{Safe: true, Risk: core.RiskLow},
		Score:    core.ScoreRecord{Overall: score},
	}
}

var cleanReport = core.SessionSecurityReport{
	OverallRisk:    core.RiskLow,
	RiskCounts:     map[string]int{"low": 3},
	Recommendation: core.SessionNormal,
}

func TestSummarizeReconcilesDecisionWithScore(t *testing.T) {
	cases := []struct {
		raw  string
		want core.Decision
	}{
		{`{"final_decision": "reject", "overall_score": 8, "summary": "s"}`, core.DecisionAccept},
		{`{"final_decision": "accept", "overall_score": 3, "summary": "s"}`, core.DecisionReject},
		{`{"final_decision": "reject", "overall_score": 5.5, "summary": "s"}`, core.DecisionConditional},
		{`{"final_decision": "accept", "overall_score": 6.5, "summary": "s"}`, core.DecisionAccept},
	}
	for _, tc := range cases {
		llm := model.NewMockModel("sum")
		llm.QueueResponse(tc.raw)
		s := NewSummarizer(llm)
		v := s.Summarize(context.Background(), "Li Wei", nil, []core.Turn{scoredTurn(0, 6)}, 6, cleanReport)
		assert.Equal(t, tc.want, v.Decision, tc.raw)
	}
}

func TestSummarizeBackfillsOptionalFields(t *testing.T) {
	llm := model.NewMockModel("sum")
	llm.QueueResponse(`{"final_decision": "accept", "overall_score": 8}`)
	s := NewSummarizer(llm)

	v := s.Summarize(context.Background(), "Li Wei", nil, []core.Turn{scoredTurn(0, 8)}, 8, cleanReport)
	assert.NotEmpty(t, v.Summary)
	assert.NotNil(t, v.Strengths)
	assert.NotNil(t, v.Weaknesses)
	assert.NotEmpty(t, v.Recommend.ForCandidate)
	assert.NotEmpty(t, v.Recommend.ForCompany)
	assert.Equal(t, core.ConfidenceMedium, v.Confidence)
	for _, dim := range analysisDimensions {
		assert.NotEmpty(t, v.Analysis[dim], dim)
	}
	assert.Equal(t, "Li Wei", v.CandidateName)
	assert.False(t, v.GeneratedAt.IsZero())
}

func TestSummarizeFallbackOnUnparseableOutput(t *testing.T) {
	llm := model.NewMockModel("sum")
	llm.QueueResponse("The candidate did quite well overall and should advance.")
	s := NewSummarizer(llm)

	v := s.Summarize(context.Background(), "Li Wei", nil, []core.Turn{scoredTurn(0, 8)}, 8.3, cleanReport)
	assert.Equal(t, core.DecisionAccept, v.Decision, "decision derives from the score")
	assert.InDelta(t, 8.3, v.OverallScore, 0.001)
	assert.Contains(t, v.Summary, "did quite well")
	assert.Equal(t, core.ConfidenceLow, v.Confidence)
	assert.NotEmpty(t, v.Note)
}

func TestSummarizeErrorVerdictOnModelFailure(t *testing.T) {
	llm := model.NewMockModel("sum")
	llm.FailWith(errors.New("provider down"))
	s := NewSummarizer(llm)

	v := s.Summarize(context.Background(), "Li Wei", nil, nil, 5, cleanReport)
	assert.Equal(t, core.DecisionConditional, v.Decision)
	assert.Equal(t, core.ConfidenceLow, v.Confidence)
	for _, dim := range analysisDimensions {
		assert.Contains(t, v.Analysis[dim], "unavailable")
	}
}

func TestBuildReportContents(t *testing.T) {
	turns := []core.Turn{scoredTurn(0, 8), scoredTurn(1, 4), scoredTurn(2, 9)}
	report := buildReport("Li Wei", core.ResumeFacts{"skills": []string{"go"}}, turns, 7, core.SessionSecurityReport{
		OverallRisk: core.RiskMedium,
		TotalAlerts: 1,
		Alerts:      []core.SecurityAlert{{TurnSeq: 1, Risk: core.RiskMedium, Issues: []string{"suspicious_keyword"}}},
	})
	for _, want := range []string{
		"Candidate: Li Wei",
		"Questions asked: 3",
		"Highest: 9/10",
		"Lowest: 4/10",
		"Overall risk: medium",
		"suspicious_keyword",
	} {
		require.Contains(t, report, want)
	}
}
