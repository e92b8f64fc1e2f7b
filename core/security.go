package core

// RiskLevel is the ordered classification of how unsafe an input is judged
// to be. The zero value is RiskLow.
type RiskLevel int

// Risk levels, ordered low < medium < high.
const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// String returns the wire representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "low"
	}
}

// ParseRiskLevel maps a wire string to a RiskLevel, defaulting to RiskLow
// for unknown input.
func ParseRiskLevel(s string) RiskLevel {
	switch s {
	case "medium":
		return RiskMedium
	case "high":
		return RiskHigh
	default:
		return RiskLow
	}
}

// MaxRisk returns the higher of two risk levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if b > a {
		return b
	}
	return a
}

// Action is the screener's recommended handling for a single input.
type Action string

// Recommended per-turn actions.
const (
	ActionContinue Action = "continue"
	ActionWarn     Action = "warn"
	ActionBlock    Action = "block"
)

// SecurityVerdict is the screener's judgement of one candidate input.
// Detecting any high-severity pattern forces Risk=RiskHigh and
// Recommended=ActionBlock regardless of what the deep classifier concludes.
type SecurityVerdict struct {
	Safe        bool      `json:"is_safe"`
	Risk        RiskLevel `json:"risk_level"`
	Issues      []string  `json:"detected_issues,omitempty"`
	Rationale   string    `json:"rationale,omitempty"`
	Recommended Action    `json:"recommended_action"`
}

// SessionRecommendation is the rollup advice for a whole session.
type SessionRecommendation string

// Session-level recommendations.
const (
	SessionNormal    SessionRecommendation = "normal"
	SessionCaution   SessionRecommendation = "caution"
	SessionTerminate SessionRecommendation = "terminate"
)

// SecurityAlert references a turn whose verdict was unsafe.
type SecurityAlert struct {
	TurnSeq int       `json:"turn_seq"`
	Risk    RiskLevel `json:"risk_level"`
	Issues  []string  `json:"issues,omitempty"`
}

// SessionSecurityReport aggregates per-turn verdicts across a session.
type SessionSecurityReport struct {
	OverallRisk    RiskLevel             `json:"overall_risk"`
	TotalAlerts    int                   `json:"total_alerts"`
	RiskCounts     map[string]int        `json:"risk_distribution"`
	Alerts         []SecurityAlert       `json:"security_alerts,omitempty"`
	Recommendation SessionRecommendation `json:"recommendation"`
}
