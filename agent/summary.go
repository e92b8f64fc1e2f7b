package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/logging"
	"github.com/interviewkit/interviewkit/model"
	"github.com/interviewkit/interviewkit/schema"
)

const summarizerInstructions = `You are an interview assessment expert producing the final report for a finished technical interview. Weigh the whole transcript, the per-question scores, the security findings and the candidate's background, then decide.

Decision guidance: accept for average >= 7 with no major gaps; conditional for 6-7 with growth potential; reject below 6 or with critical skill gaps.

Respond with JSON only:
{
  "final_decision": "accept" | "reject" | "conditional",
  "overall_score": 1-10,
  "summary": "...",
  "strengths": ["..."],
  "weaknesses": ["..."],
  "recommendations": {"for_candidate": "...", "for_company": "..."},
  "confidence_level": "high" | "medium" | "low",
  "detailed_analysis": {
    "technical_skills": "...",
    "experience_match": "...",
    "communication": "...",
    "problem_solving": "...",
    "growth_potential": "..."
  }
}`

// Analysis dimension keys the summarizer always fills.
var analysisDimensions = []string{
	"technical_skills",
	"experience_match",
	"communication",
	"problem_solving",
	"growth_potential",
}

// SummarizerOptions configures a Summarizer.
type SummarizerOptions struct {
	Logger logging.Logger
}

// Summarizer synthesizes the full interview history into a final verdict.
type Summarizer struct {
	baseAgent
}

// NewSummarizer constructs a Summarizer.
func NewSummarizer(llm model.Model, optFns ...func(o *SummarizerOptions)) *Summarizer {
	opts := SummarizerOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Summarizer{baseAgent: newBaseAgent("summary", llm, opts.Logger)}
}

// Summarize produces the final verdict. Malformed model output degrades to a
// fallback verdict built from the raw text with confidence downgraded to
// low; a failed reasoning step degrades to an explicit error verdict. The
// returned decision is always consistent with the overall score.
func (s *Summarizer) Summarize(ctx context.Context, candidateName string, facts core.ResumeFacts, turns []core.Turn, avgScore float64, security core.SessionSecurityReport) core.FinalVerdict {
	report := buildReport(candidateName, facts, turns, avgScore, security)

	raw, err := s.invoke(ctx, summarizerInstructions, []model.Message{model.UserMessage(report)})
	if err != nil {
		return errorVerdict(candidateName, avgScore)
	}

	verdict, ok := schema.ParseSummary(raw)
	if !ok {
		return fallbackVerdict(candidateName, avgScore, raw)
	}

	return s.reconcile(verdict, candidateName, avgScore)
}

// reconcile enforces the decision/score invariant and backfills every
// optional field so no consumer ever sees an absent section.
func (s *Summarizer) reconcile(v core.FinalVerdict, candidateName string, avgScore float64) core.FinalVerdict {
	if v.Decision == "" {
		v.Decision = core.DecisionForScore(avgScore)
	}
	if v.OverallScore == 0 {
		v.OverallScore = round1(avgScore)
	}

	// the score wins when the generated decision disagrees with it
	switch {
	case v.OverallScore >= 7 && v.Decision == core.DecisionReject:
		v.Decision = core.DecisionAccept
	case v.OverallScore < 4 && v.Decision == core.DecisionAccept:
		v.Decision = core.DecisionReject
	case v.OverallScore >= 4 && v.OverallScore < 7 &&
		v.Decision != core.DecisionConditional && v.Decision != core.DecisionAccept:
		v.Decision = core.DecisionConditional
	}

	if v.Summary == "" {
		v.Summary = "Interview summary could not be fully generated."
	}
	if v.Strengths == nil {
		v.Strengths = []string{}
	}
	if v.Weaknesses == nil {
		v.Weaknesses = []string{}
	}
	if v.Confidence == "" {
		v.Confidence = core.ConfidenceMedium
	}
	if v.Recommend.ForCandidate == "" {
		v.Recommend.ForCandidate = "Continue developing the skills most relevant to the target role."
	}
	if v.Recommend.ForCompany == "" {
		v.Recommend.ForCompany = "Review the full transcript before making a final decision."
	}
	if v.Analysis == nil {
		v.Analysis = make(map[string]string, len(analysisDimensions))
	}
	for _, dim := range analysisDimensions {
		if v.Analysis[dim] == "" {
			v.Analysis[dim] = "analysis pending"
		}
	}

	v.CandidateName = candidateName
	v.GeneratedAt = time.Now()
	return v
}

// buildReport renders the consolidated interview report fed to the model.
func buildReport(candidateName string, facts core.ResumeFacts, turns []core.Turn, avgScore float64, security core.SessionSecurityReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Candidate: %s\n", candidateName)
	fmt.Fprintf(&b, "Report time: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Questions asked: %d\n", len(turns))
	fmt.Fprintf(&b, "Average score: %.2f/10\n", avgScore)

	if len(facts) > 0 {
		if factsJSON, err := json.Marshal(facts); err == nil {
			fmt.Fprintf(&b, "\n=== Candidate background ===\n%s\n", factsJSON)
		}
	}

	b.WriteString("\n=== Interview transcript ===\n")
	for i, t := range turns {
		fmt.Fprintf(&b, "\n--- Question %d ---\n", i+1)
		fmt.Fprintf(&b, "Question: %s\n", t.Question.Text)
		fmt.Fprintf(&b, "Answer: %s\n", t.Answer)
		fmt.Fprintf(&b, "Score: %d/10\n", t.Score.Overall)
		if t.Score.Rationale != "" {
			fmt.Fprintf(&b, "Rationale: %s\n", t.Score.Rationale)
		}
	}

	fmt.Fprintf(&b, "\n=== Security summary ===\n")
	fmt.Fprintf(&b, "Overall risk: %s\n", security.OverallRisk)
	fmt.Fprintf(&b, "Alerts: %d\n", security.TotalAlerts)
	for _, alert := range security.Alerts {
		fmt.Fprintf(&b, "  - question %d: %s\n", alert.TurnSeq+1, strings.Join(alert.Issues, ", "))
	}

	if len(turns) > 0 {
		minScore, maxScore, sum := 10, 0, 0
		highCount, midCount, lowCount := 0, 0, 0
		for _, t := range turns {
			v := t.Score.Overall
			sum += v
			if v < minScore {
				minScore = v
			}
			if v > maxScore {
				maxScore = v
			}
			switch {
			case v >= 7:
				highCount++
			case v >= 4:
				midCount++
			default:
				lowCount++
			}
		}
		fmt.Fprintf(&b, "\n=== Score statistics ===\n")
		fmt.Fprintf(&b, "Highest: %d/10\nLowest: %d/10\nMean: %.2f/10\n", maxScore, minScore, float64(sum)/float64(len(turns)))
		fmt.Fprintf(&b, "High (>=7): %d, medium (4-6): %d, low (<4): %d\n", highCount, midCount, lowCount)
	}

	b.WriteString("\nProduce the final interview report and hiring recommendation from the information above.")
	return b.String()
}

// fallbackVerdict wraps an unparseable response: the raw text becomes the
// summary, the decision derives from the score, and confidence drops to low.
func fallbackVerdict(candidateName string, avgScore float64, raw string) core.FinalVerdict {
	analysis := make(map[string]string, len(analysisDimensions))
	for _, dim := range analysisDimensions {
		analysis[dim] = "detailed analysis unavailable due to a reporting problem"
	}
	return core.FinalVerdict{
		CandidateName: candidateName,
		Decision:      core.DecisionForScore(avgScore),
		OverallScore:  round1(avgScore),
		Summary:       raw,
		Strengths:     []string{},
		Weaknesses:    []string{},
		Confidence:    core.ConfidenceLow,
		Recommend: core.Recommendations{
			ForCandidate: "Continue developing the skills most relevant to the target role.",
			ForCompany:   "Combine this result with other assessments before deciding.",
		},
		Analysis:    analysis,
		GeneratedAt: time.Now(),
		Note:        "generated from unstructured output; manual review recommended",
	}
}

// errorVerdict is emitted when the reasoning step itself fails.
func errorVerdict(candidateName string, avgScore float64) core.FinalVerdict {
	analysis := make(map[string]string, len(analysisDimensions))
	for _, dim := range analysisDimensions {
		analysis[dim] = "unavailable due to a system error"
	}
	score := avgScore
	if score < 0 {
		score = 0
	}
	return core.FinalVerdict{
		CandidateName: candidateName,
		Decision:      core.DecisionConditional,
		OverallScore:  round1(score),
		Summary:       "The interview summary could not be generated because of a system error. Manual review of the transcript is required.",
		Strengths:     []string{},
		Weaknesses:    []string{"automated assessment unavailable"},
		Confidence:    core.ConfidenceLow,
		Recommend: core.Recommendations{
			ForCandidate: "Consider rescheduling the interview.",
			ForCompany:   "Review the interview transcript manually.",
		},
		Analysis:    analysis,
		GeneratedAt: time.Now(),
		Note:        "summary agent error",
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
