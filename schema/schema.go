// Package schema parses the structured (JSON-shaped) responses of reasoning
// steps. Model output carries no structural guarantee: it may wrap JSON in
// prose or markdown fences, omit fields, or be plain text. Each response
// shape gets exactly one parse function returning (value, ok) so every call
// site shares a single degradation path instead of ad hoc recovery.
package schema

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/interviewkit/interviewkit/core"
)

// ExtractJSON returns the first balanced JSON object embedded in raw text,
// tolerating markdown code fences and surrounding prose. ok is false when no
// valid object is present.
func ExtractJSON(raw string) (gjson.Result, bool) {
	raw = strings.TrimSpace(raw)
	if fenced := stripFences(raw); fenced != raw {
		raw = fenced
	}

	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return gjson.Result{}, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := raw[start : i+1]
				if gjson.Valid(candidate) {
					return gjson.Parse(candidate), true
				}
				return gjson.Result{}, false
			}
		}
	}
	return gjson.Result{}, false
}

func stripFences(raw string) string {
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

// ParseQuestion decodes a question-generation response. The object must
// carry a non-empty "question" field; everything else is optional.
func ParseQuestion(raw string) (core.Question, bool) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return core.Question{}, false
	}
	text := obj.Get("question").String()
	if text == "" {
		return core.Question{}, false
	}

	q := core.Question{
		Text:       text,
		Category:   core.Category(obj.Get("category").String()),
		Difficulty: core.Difficulty(obj.Get("difficulty").String()),
		Rationale:  obj.Get("rationale").String(),
	}
	// older model prompts used "type" for the category
	if q.Category == "" {
		q.Category = core.Category(obj.Get("type").String())
	}
	if q.Category == "" {
		q.Category = core.CategoryGeneral
	}
	if q.Difficulty == "" {
		q.Difficulty = core.DifficultyMedium
	}
	return q, true
}

// ParseScore decodes a scoring response. The object must carry a numeric
// "score"; the overall value is clamped into [1,10].
func ParseScore(raw string) (core.ScoreRecord, bool) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return core.ScoreRecord{}, false
	}
	score := obj.Get("score")
	if !score.Exists() {
		return core.ScoreRecord{}, false
	}

	rec := core.ScoreRecord{
		Overall:     core.ClampScore(int(score.Int())),
		Rationale:   obj.Get("reasoning").String(),
		Strengths:   stringList(obj.Get("strengths")),
		Weaknesses:  stringList(obj.Get("weaknesses")),
		Suggestions: stringList(obj.Get("suggestions")),
	}
	if rec.Rationale == "" {
		rec.Rationale = obj.Get("rationale").String()
	}
	if breakdown := obj.Get("breakdown"); breakdown.IsObject() {
		rec.Breakdown = make(map[string]int)
		breakdown.ForEach(func(key, value gjson.Result) bool {
			rec.Breakdown[key.String()] = int(value.Int())
			return true
		})
	}
	return rec, true
}

// ParseSecurity decodes a deep-classifier response.
func ParseSecurity(raw string) (core.SecurityVerdict, bool) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return core.SecurityVerdict{}, false
	}
	isSafe := obj.Get("is_safe")
	if !isSafe.Exists() {
		return core.SecurityVerdict{}, false
	}

	v := core.SecurityVerdict{
		Safe:        isSafe.Bool(),
		Risk:        core.ParseRiskLevel(obj.Get("risk_level").String()),
		Issues:      stringList(obj.Get("detected_issues")),
		Rationale:   obj.Get("reasoning").String(),
		Recommended: core.Action(obj.Get("suggested_action").String()),
	}
	if v.Recommended == "" {
		if v.Safe {
			v.Recommended = core.ActionContinue
		} else {
			v.Recommended = core.ActionWarn
		}
	}
	return v, true
}

// ParseSummary decodes a summary response into a final verdict. The object
// must carry at least a "final_decision" or "overall_score"; missing optional
// fields are left zero for the summary agent to backfill.
func ParseSummary(raw string) (core.FinalVerdict, bool) {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return core.FinalVerdict{}, false
	}
	decision := obj.Get("final_decision")
	score := obj.Get("overall_score")
	if !decision.Exists() && !score.Exists() {
		return core.FinalVerdict{}, false
	}

	v := core.FinalVerdict{
		Decision:     core.Decision(decision.String()),
		OverallScore: score.Float(),
		Summary:      obj.Get("summary").String(),
		Strengths:    stringList(obj.Get("strengths")),
		Weaknesses:   stringList(obj.Get("weaknesses")),
		Confidence:   core.Confidence(obj.Get("confidence_level").String()),
		Recommend: core.Recommendations{
			ForCandidate: obj.Get("recommendations.for_candidate").String(),
			ForCompany:   obj.Get("recommendations.for_company").String(),
		},
	}
	if analysis := obj.Get("detailed_analysis"); analysis.IsObject() {
		v.Analysis = make(map[string]string)
		analysis.ForEach(func(key, value gjson.Result) bool {
			v.Analysis[key.String()] = value.String()
			return true
		})
	}
	return v, true
}

func stringList(res gjson.Result) []string {
	if !res.IsArray() {
		return nil
	}
	var out []string
	res.ForEach(func(_, value gjson.Result) bool {
		if s := value.String(); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}
