package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/interviewkit/interviewkit/core"
	"github.com/interviewkit/interviewkit/logging"
	"github.com/interviewkit/interviewkit/memory"
	"github.com/interviewkit/interviewkit/model"
	"github.com/interviewkit/interviewkit/retrieval"
	"github.com/interviewkit/interviewkit/schema"
)

// Stage is the interview phase driving question generation.
type Stage string

// Interview stages.
const (
	StageOpening    Stage = "opening"
	StageTechnical  Stage = "technical"
	StageBehavioral Stage = "behavioral"
)

const generatorInstructions = `You are a professional interviewer generating the next interview question from the candidate's background and the interview so far.

Requirements: questions must be clear, specific and targeted; adjust difficulty to the candidate's experience; build on earlier answers; draw out concrete experience rather than yes/no replies.

Respond with JSON only:
{
  "question": "...",
  "category": "opening" | "technical" | "behavioral",
  "difficulty": "easy" | "medium" | "hard",
  "rationale": "..."
}`

// DefaultQuestion is returned when the reasoning step itself fails; the
// interview must never stall on a generation failure.
var DefaultQuestion = core.Question{
	Text:       "Please walk me through your professional experience and the skills you rely on most.",
	Category:   core.CategoryGeneral,
	Difficulty: core.DifficultyEasy,
	Rationale:  "default question after generation failure",
}

// GeneratorOptions configures a Generator.
type GeneratorOptions struct {
	// Retriever provides knowledge-base context for technical questions.
	// Nil disables retrieval; generation proceeds without context.
	Retriever *retrieval.Retriever
	// MaxPassages caps the supporting passages fetched per question.
	MaxPassages int
	// HistoryWindow caps how many recent turns condition the next question.
	HistoryWindow int
	Logger        logging.Logger
}

// Generator produces the next interview question. Candidate context is
// folded into the instructions from the facts passed on each call, so one
// Generator may serve many concurrent sessions without any candidate's
// background leaking into another's questions.
type Generator struct {
	baseAgent
	retriever     *retrieval.Retriever
	maxPassages   int
	historyWindow int
}

// NewGenerator constructs a question Generator.
func NewGenerator(llm model.Model, optFns ...func(o *GeneratorOptions)) *Generator {
	opts := GeneratorOptions{MaxPassages: 2, HistoryWindow: 3}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{
		baseAgent:     newBaseAgent("question", llm, opts.Logger),
		retriever:     opts.Retriever,
		maxPassages:   opts.MaxPassages,
		historyWindow: opts.HistoryWindow,
	}
}

// Generate produces the next question. Malformed model output degrades to
// wrapping the raw text as a general/medium question; a failed reasoning
// step degrades to DefaultQuestion.
func (g *Generator) Generate(ctx context.Context, facts core.ResumeFacts, stage Stage, prior []memory.QA, avgScore float64) core.Question {
	var parts []string
	switch stage {
	case StageOpening:
		parts = append(parts, "This is the opening of the interview. Generate an opening question inviting the candidate to introduce themselves and their relevant experience.")
	case StageBehavioral:
		parts = append(parts, "Generate a behavioral question assessing the candidate's soft skills and working style.")
	default:
		if g.retriever != nil {
			skills := retrieval.ExtractSkills(facts)
			position := retrieval.ExtractPosition(facts)
			query := fmt.Sprintf("%s %s interview questions", position, strings.Join(skills, " "))
			passages := g.retriever.Search(ctx, query, g.maxPassages)
			if len(passages) > 0 {
				parts = append(parts, retrieval.FormatPassages(passages))
			} else if bank := g.retriever.SuggestedQuestions(ctx, position, skills, string(core.DifficultyMedium)); len(bank) > 0 {
				// no corpus match; fall back to the question bank as examples
				parts = append(parts, "Example questions for this profile:\n- "+strings.Join(bank, "\n- "))
			}
		}
		parts = append(parts, "Generate a technical question assessing the candidate's professional skills.")
	}

	if len(prior) > 0 {
		window := prior
		if len(window) > g.historyWindow {
			window = window[len(window)-g.historyWindow:]
		}
		var history strings.Builder
		for _, qa := range window {
			fmt.Fprintf(&history, "Q: %s\nA: %s\n", qa.Question, qa.Answer)
		}
		parts = append(parts,
			fmt.Sprintf("Previous exchanges:\n%s", history.String()),
			fmt.Sprintf("Current average score: %.1f/10", avgScore),
			"Generate the next question, taking the candidate's answers so far into account.")
	}

	raw, err := g.invoke(ctx, instructionsFor(facts), []model.Message{model.UserMessage(strings.Join(parts, "\n\n"))})
	if err != nil {
		return DefaultQuestion
	}

	if q, ok := schema.ParseQuestion(raw); ok {
		return q
	}

	// unparseable output still carries a usable question
	return core.Question{
		Text:       strings.TrimSpace(raw),
		Category:   core.CategoryGeneral,
		Difficulty: core.DifficultyMedium,
		Rationale:  "generated from unstructured model output",
	}
}

// instructionsFor folds extracted candidate context into the base
// instructions. Deriving the block from the call's own facts keeps sessions
// isolated when one generator serves several interviews at once.
func instructionsFor(facts core.ResumeFacts) string {
	if len(facts) == 0 {
		return generatorInstructions
	}

	position := retrieval.ExtractPosition(facts)
	skills := retrieval.ExtractSkills(facts)
	seniority := retrieval.ExtractSeniority(facts)

	skillList := "not stated"
	if len(skills) > 0 {
		skillList = strings.Join(skills, ", ")
	}
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		factsJSON = []byte("{}")
	}

	return generatorInstructions + fmt.Sprintf(`

Candidate context:
- Target position: %s
- Skills: %s
- Experience level: %s
- Resume record: %s

Tailor every question to this candidate.`, position, skillList, seniority, factsJSON)
}
