package retrieval

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/interviewkit/interviewkit/core"
)

// Seniority tiers inferred from a résumé.
const (
	SeniorityJunior = "junior"
	SeniorityMedium = "medium"
	SenioritySenior = "senior"
)

// resumeShape is the subset of résumé fields the extractor understands.
// Résumé documents are schemaless; WeaklyTypedInput tolerates numbers stored
// as strings and scalar/slice mismatches.
type resumeShape struct {
	Skills          []string     `mapstructure:"skills"`
	DesiredPosition string       `mapstructure:"desired_position"`
	TargetPosition  string       `mapstructure:"target_position"`
	Position        string       `mapstructure:"position"`
	Role            string       `mapstructure:"role"`
	WorkYears       float64      `mapstructure:"work_years"`
	Experience      []experience `mapstructure:"experience"`
}

type experience struct {
	Description string `mapstructure:"description"`
}

var commonSkills = []string{
	"python", "java", "javascript", "go", "react", "vue", "django", "mysql", "mongodb",
}

func decodeResume(facts core.ResumeFacts) resumeShape {
	var shape resumeShape
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &shape,
		WeaklyTypedInput: true,
	})
	if err == nil {
		_ = decoder.Decode(map[string]any(facts)) // best effort; zero shape on failure
	}
	return shape
}

// ExtractSkills returns the deduplicated skill list from a résumé, including
// well-known skill keywords mentioned in experience descriptions.
func ExtractSkills(facts core.ResumeFacts) []string {
	shape := decodeResume(facts)

	seen := make(map[string]bool)
	var skills []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			return
		}
		seen[strings.ToLower(s)] = true
		skills = append(skills, s)
	}

	for _, s := range shape.Skills {
		add(s)
	}
	for _, exp := range shape.Experience {
		desc := strings.ToLower(exp.Description)
		for _, skill := range commonSkills {
			if strings.Contains(desc, skill) {
				add(skill)
			}
		}
	}
	return skills
}

// ExtractPosition returns the candidate's target role, falling back to a
// skill-based guess and finally a generic title.
func ExtractPosition(facts core.ResumeFacts) string {
	shape := decodeResume(facts)
	for _, p := range []string{shape.DesiredPosition, shape.TargetPosition, shape.Position, shape.Role} {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}

	skills := make(map[string]bool)
	for _, s := range ExtractSkills(facts) {
		skills[strings.ToLower(s)] = true
	}
	switch {
	case skills["python"] || skills["django"] || skills["flask"]:
		return "Python developer"
	case skills["java"] || skills["spring"]:
		return "Java developer"
	case skills["javascript"] || skills["react"] || skills["vue"]:
		return "frontend developer"
	default:
		return "software engineer"
	}
}

// ExtractSeniority infers the experience tier from position count or stated
// years of experience, defaulting to junior.
func ExtractSeniority(facts core.ResumeFacts) string {
	shape := decodeResume(facts)

	if n := len(shape.Experience); n > 0 {
		switch {
		case n >= 5:
			return SenioritySenior
		case n >= 2:
			return SeniorityMedium
		default:
			return SeniorityJunior
		}
	}
	if shape.WorkYears >= 5 {
		return SenioritySenior
	}
	if shape.WorkYears >= 2 {
		return SeniorityMedium
	}
	return SeniorityJunior
}
