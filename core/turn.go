package core

import "time"

// Category classifies an interview question.
type Category string

// Question categories. General is the parser fallback when a model response
// does not declare a category.
const (
	CategoryOpening    Category = "opening"
	CategoryTechnical  Category = "technical"
	CategoryBehavioral Category = "behavioral"
	CategoryGeneral    Category = "general"
)

// Difficulty is the tier of an interview question.
type Difficulty string

// Question difficulty tiers.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one generated interview question together with the generator's
// classification and rationale.
type Question struct {
	Text       string     `json:"text"`
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Rationale  string     `json:"rationale,omitempty"`
}

// ScoreRecord is the structured grade for a single answer. Overall is always
// within [1,10]; use ClampScore before storing values from a model response.
type ScoreRecord struct {
	Overall     int            `json:"score"`
	Breakdown   map[string]int `json:"breakdown,omitempty"`
	Rationale   string         `json:"rationale,omitempty"`
	Strengths   []string       `json:"strengths,omitempty"`
	Weaknesses  []string       `json:"weaknesses,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// Breakdown dimension keys used by the scoring agent.
const (
	DimensionTechnical     = "technical"
	DimensionCommunication = "communication"
	DimensionExperience    = "experience"
	DimensionInnovation    = "innovation"
)

// ScoreMin and ScoreMax bound the overall score scale.
const (
	ScoreMin = 1
	ScoreMax = 10
)

// ClampScore forces a raw score into the canonical [1,10] range.
func ClampScore(s int) int {
	if s < ScoreMin {
		return ScoreMin
	}
	if s > ScoreMax {
		return ScoreMax
	}
	return s
}

// Turn is one completed question/answer exchange. Turns are immutable once
// appended; only the coordinator appends them, after scoring completes.
type Turn struct {
	Seq       int             `json:"seq"`
	Question  Question        `json:"question"`
	Answer    string          `json:"answer"`
	Security  SecurityVerdict `json:"security"`
	Score     ScoreRecord     `json:"score"`
	Timestamp time.Time       `json:"timestamp"`
}
