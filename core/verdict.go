package core

import "time"

// Decision is the final hiring outcome of an interview.
type Decision string

// Final decisions.
const (
	DecisionAccept      Decision = "accept"
	DecisionReject      Decision = "reject"
	DecisionConditional Decision = "conditional"
)

// Confidence expresses how much trust to place in a generated verdict.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Recommendations carries the summarizer's advice for each audience.
type Recommendations struct {
	ForCandidate string `json:"for_candidate"`
	ForCompany   string `json:"for_company"`
}

// FinalVerdict is the summarizer's synthesis of a finished interview.
// Decision is always consistent with OverallScore under the threshold policy
// applied by the summary agent; if a generated decision and score disagree,
// the score wins.
type FinalVerdict struct {
	CandidateName string            `json:"candidate_name"`
	Decision      Decision          `json:"final_decision"`
	OverallScore  float64           `json:"overall_score"`
	Summary       string            `json:"summary"`
	Strengths     []string          `json:"strengths"`
	Weaknesses    []string          `json:"weaknesses"`
	Recommend     Recommendations   `json:"recommendations"`
	Confidence    Confidence        `json:"confidence_level"`
	Analysis      map[string]string `json:"detailed_analysis"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Note          string            `json:"note,omitempty"`
}

// DecisionForScore applies the fixed threshold policy mapping an average
// score to a decision: >=7 accept, >=5 conditional, otherwise reject.
func DecisionForScore(score float64) Decision {
	switch {
	case score >= 7:
		return DecisionAccept
	case score >= 5:
		return DecisionConditional
	default:
		return DecisionReject
	}
}
