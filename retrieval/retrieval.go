// Package retrieval wraps vector-similarity search over a question/knowledge
// corpus and extracts interview-relevant facts from résumé records. Retrieval
// is best effort by design: embedding failures degrade to an empty result so
// question generation can proceed without supporting context.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Embedder turns text into a dense vector. Implementations typically call an
// embedding service; transient failures may be retried there, not here.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbedderFunc adapts a function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, text string) ([]float64, error)

// Embed implements Embedder.
func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float64, error) {
	return f(ctx, text)
}

// Passage is one retrieved corpus entry with its similarity score.
type Passage struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Retriever performs approximate nearest-neighbor search over a pre-embedded
// corpus held in memory. Production deployments swap the index for a vector
// database behind the same Search contract; this implementation mirrors the
// store shape used in tests and demos.
type Retriever struct {
	embedder Embedder

	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	id      string
	content string
	vector  []float64
}

// NewRetriever creates a Retriever backed by the given embedder.
func NewRetriever(embedder Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Add embeds content and stores it in the corpus.
func (r *Retriever) Add(ctx context.Context, content string) error {
	vec, err := r.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed corpus entry: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{
		id:      fmt.Sprintf("doc_%d", len(r.entries)),
		content: content,
		vector:  vec,
	})
	return nil
}

// Search returns the top limit passages most similar to the query, highest
// score first. When query embedding fails the result is an empty slice and a
// nil error: callers treat retrieval as best effort and proceed without
// context rather than failing the turn.
func (r *Retriever) Search(ctx context.Context, query string, limit int) []Passage {
	if limit <= 0 {
		return nil
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil || len(vec) == 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Passage, 0, len(r.entries))
	for _, e := range r.entries {
		results = append(results, Passage{
			ID:      e.id,
			Content: e.content,
			Score:   cosine(vec, e.vector),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// FormatPassages renders passages as a context block for a model prompt.
// Returns an explicit no-results note when the slice is empty.
func FormatPassages(passages []Passage) string {
	if len(passages) == 0 {
		return "No relevant reference material was found in the knowledge base."
	}
	var b strings.Builder
	b.WriteString("Relevant reference material from the knowledge base:\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "\n--- Reference %d (similarity %.4f) ---\n%s\n", i+1, p.Score, p.Content)
	}
	return strings.TrimSpace(b.String())
}

// SuggestedQuestions searches the corpus for interview questions matching the
// position and skills, padding with deterministic defaults when the corpus
// yields too few usable lines. At most five questions are returned.
func (r *Retriever) SuggestedQuestions(ctx context.Context, position string, skills []string, difficulty string) []string {
	query := fmt.Sprintf("%s %s %s interview questions", position, strings.Join(skills, " "), difficulty)
	passages := r.Search(ctx, query, 5)

	var questions []string
	for _, p := range passages {
		for _, line := range strings.Split(p.Content, "\n") {
			line = strings.TrimSpace(line)
			if len(line) > 10 && strings.ContainsAny(line, "?？") {
				questions = append(questions, line)
			}
		}
	}

	if len(questions) < 3 {
		questions = append(questions,
			fmt.Sprintf("Please describe your experience working as a %s.", position),
			fmt.Sprintf("How do you see the %s role evolving over the next few years?", position),
			"Describe a time you had to solve a particularly hard problem.",
		)
	}
	if len(questions) > 5 {
		questions = questions[:5]
	}
	return questions
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
