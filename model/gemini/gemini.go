// Package gemini provides a model wrapper for the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/interviewkit/interviewkit/model"
)

const defaultModel = "gemini-2.5-flash"

// Options configures the Gemini model adapter.
type Options struct {
	Model  string
	APIKey string
}

// Model wraps the Google GenAI client behind the generic model.Model interface.
type Model struct {
	client    *genai.Client
	modelName string
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new Gemini model configured for the Gemini API backend.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{Model: defaultModel}
	for _, fn := range optFns {
		fn(&opts)
	}

	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	name := strings.TrimSpace(opts.Model)
	if name == "" {
		name = defaultModel
	}

	return &Model{client: client, modelName: name}, nil
}

// Invoke implements model.Model. Gemini has no separate system channel in
// this flow, so instructions are prepended to the conversation text.
func (m *Model) Invoke(ctx context.Context, req model.Request) (string, error) {
	if m == nil || m.client == nil {
		return "", errors.New("gemini model is not initialized")
	}

	var prompt strings.Builder
	if req.Instructions != "" {
		prompt.WriteString(req.Instructions)
		prompt.WriteString("\n\n")
	}
	for _, msg := range req.Messages {
		prompt.WriteString(msg.Role)
		prompt.WriteString(": ")
		prompt.WriteString(msg.Text)
		prompt.WriteString("\n")
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.modelName, genai.Text(prompt.String()), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.modelName, Provider: "gemini"}
}
