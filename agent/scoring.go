package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/logging"
	"github.com/interviewkit/interviewkit/model"
	"github.com/interviewkit/interviewkit/schema"
)

const scorerInstructions = `You are an interview grading expert. Grade the candidate's answer along four weighted dimensions summing to a 1-10 overall score:
- technical (1-3): accuracy and depth
- communication (1-3): clarity and structure
- experience (1-2): match with the role's requirements
- innovation (1-2): originality and problem-solving

Be objective: weigh question difficulty and the candidate's experience level, and judge quality over length.

Respond with JSON only:
{
  "score": 1-10,
  "breakdown": {"technical": n, "communication": n, "experience": n, "innovation": n},
  "reasoning": "...",
  "strengths": ["..."],
  "weaknesses": ["..."],
  "suggestions": ["..."]
}`

// Recommendation values returned by readiness evaluation.
const (
	RecommendContinue = "continue"
	RecommendAccept   = "accept"
	RecommendReject   = "reject"
)

// Readiness reports whether enough evidence exists to end the interview.
type Readiness struct {
	Ready          bool   `json:"ready"`
	Reason         string `json:"reason"`
	Recommendation string `json:"recommendation"`
}

// ReadinessPolicy holds the calibrated thresholds of the readiness rules.
// They are tuning choices, not structural requirements.
type ReadinessPolicy struct {
	// AcceptAverage and AcceptHighRatio gate the early-accept rule.
	AcceptAverage   float64
	AcceptHighRatio float64
	// RejectAverage and RejectLowRatio gate the early-reject rule.
	RejectAverage  float64
	RejectLowRatio float64
	// ForcedExtraTurns past the minimum forces a decision.
	ForcedExtraTurns int
	// ForcedAcceptAverage decides accept vs reject on a forced decision.
	ForcedAcceptAverage float64
}

// DefaultReadinessPolicy returns the production calibration.
func DefaultReadinessPolicy() ReadinessPolicy {
	return ReadinessPolicy{
		AcceptAverage:       7,
		AcceptHighRatio:     0.6,
		RejectAverage:       4,
		RejectLowRatio:      0.5,
		ForcedExtraTurns:    2,
		ForcedAcceptAverage: 6,
	}
}

// ScorerOptions configures a Scorer.
type ScorerOptions struct {
	Policy ReadinessPolicy
	Logger logging.Logger
}

// Scorer grades individual answers and decides when enough evidence exists
// to end the interview.
type Scorer struct {
	baseAgent
	policy ReadinessPolicy
}

// NewScorer constructs a Scorer.
func NewScorer(llm model.Model, optFns ...func(o *ScorerOptions)) *Scorer {
	opts := ScorerOptions{Policy: DefaultReadinessPolicy()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scorer{
		baseAgent: newBaseAgent("scoring", llm, opts.Logger),
		policy:    opts.Policy,
	}
}

// Score grades one answer against its question. The overall score is always
// clamped into [1,10]. Parse failures fall back to extracting a number from
// the raw text, then to sentiment keywords, then to a hard default of 5; a
// failed reasoning step returns a fixed neutral record rather than an error.
func (s *Scorer) Score(ctx context.Context, q core.Question, answer string, facts core.ResumeFacts) core.ScoreRecord {
	factsJSON, err := json.Marshal(facts)
	if err != nil || len(facts) == 0 {
		factsJSON = []byte("none")
	}

	prompt := fmt.Sprintf(`Grade the following interview exchange.

Question category: %s
Question difficulty: %s
Question: %s
Candidate answer: %s

Candidate background: %s`, q.Category, q.Difficulty, q.Text, answer, factsJSON)

	raw, err := s.invoke(ctx, scorerInstructions, []model.Message{model.UserMessage(prompt)})
	if err != nil {
		return core.ScoreRecord{
			Overall: 5,
			Breakdown: map[string]int{
				core.DimensionTechnical:     2,
				core.DimensionCommunication: 1,
				core.DimensionExperience:    1,
				core.DimensionInnovation:    1,
			},
			Rationale: fmt.Sprintf("scoring failed, neutral score assigned: %v", err),
		}
	}

	if rec, ok := schema.ParseScore(raw); ok {
		return rec
	}

	score := extractScoreFromText(raw)
	return core.ScoreRecord{
		Overall: score,
		Breakdown: map[string]int{
			core.DimensionTechnical:     score / 3,
			core.DimensionCommunication: score / 3,
			core.DimensionExperience:    score / 5,
			core.DimensionInnovation:    score / 5,
		},
		Rationale: raw,
	}
}

var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*points?`),
	regexp.MustCompile(`(?i)score\s*[:：]\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*/\s*10`),
	regexp.MustCompile(`(\d+)\s*分`),
}

var sentimentScores = []struct {
	words []string
	score int
}{
	{[]string{"excellent", "outstanding", "优秀", "出色"}, 8},
	{[]string{"good", "solid", "良好", "不错"}, 6},
	{[]string{"average", "adequate", "一般", "普通"}, 5},
	{[]string{"poor", "weak", "较差", "不够"}, 3},
}

// extractScoreFromText approximates a score from unstructured grading text:
// numeric phrasings first, then sentiment keywords, then a default of 5.
func extractScoreFromText(text string) int {
	for _, pattern := range scorePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return core.ClampScore(n)
			}
		}
	}
	lower := strings.ToLower(text)
	for _, sentiment := range sentimentScores {
		for _, w := range sentiment.words {
			if strings.Contains(lower, w) {
				return sentiment.score
			}
		}
	}
	return 5
}

// EvaluateReadiness applies the ordered readiness rules to all turn scores;
// the first matching rule wins.
func (s *Scorer) EvaluateReadiness(scores []int, minQuestions int) Readiness {
	total := len(scores)

	if total < minQuestions {
		return Readiness{
			Reason:         fmt.Sprintf("only %d of the minimum %d questions answered", total, minQuestions),
			Recommendation: RecommendContinue,
		}
	}
	if total == 0 {
		return Readiness{
			Reason:         "no scores recorded",
			Recommendation: RecommendContinue,
		}
	}

	sum, high, low := 0, 0, 0
	for _, v := range scores {
		sum += v
		if float64(v) >= s.policy.AcceptAverage {
			high++
		}
		if float64(v) <= s.policy.RejectAverage {
			low++
		}
	}
	avg := float64(sum) / float64(total)

	if avg >= s.policy.AcceptAverage && float64(high) >= float64(total)*s.policy.AcceptHighRatio {
		return Readiness{
			Ready:          true,
			Reason:         fmt.Sprintf("strong performance, average %.1f", avg),
			Recommendation: RecommendAccept,
		}
	}
	if avg <= s.policy.RejectAverage || float64(low) >= float64(total)*s.policy.RejectLowRatio {
		return Readiness{
			Ready:          true,
			Reason:         fmt.Sprintf("weak performance, average %.1f", avg),
			Recommendation: RecommendReject,
		}
	}
	if total >= minQuestions+s.policy.ForcedExtraTurns {
		rec := RecommendReject
		if avg >= s.policy.ForcedAcceptAverage {
			rec = RecommendAccept
		}
		return Readiness{
			Ready:          true,
			Reason:         fmt.Sprintf("completed %d questions, average %.1f", total, avg),
			Recommendation: rec,
		}
	}
	return Readiness{
		Reason:         fmt.Sprintf("more evidence needed, average %.1f", avg),
		Recommendation: RecommendContinue,
	}
}
