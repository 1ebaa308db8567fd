// Package gemini adapts Google's Gemini API to textgen.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

const defaultModel = "gemini-2.0-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator sends single-turn prompts, with an optional inline image, to a
// Gemini model.
type Generator struct {
	models      contentGenerator
	model       string
	temperature float32
	counter     *metrics.TokenCounter
}

// NewGenerator creates a genai client for apiKey.
func NewGenerator(ctx context.Context, apiKey, model string, temperature float32, counter *metrics.TokenCounter) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGenerator(client.Models, model, temperature, counter), nil
}

func newGenerator(models contentGenerator, model string, temperature float32, counter *metrics.TokenCounter) *Generator {
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Generator{models: models, model: model, temperature: temperature, counter: counter}
}

// Generate implements textgen.Generator.
func (g *Generator) Generate(ctx context.Context, req textgen.Request) (textgen.Response, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	temp := req.Temperature
	if temp == 0 {
		temp = g.temperature
	}
	cfg := &genai.GenerateContentConfig{}
	if temp > 0 {
		cfg.Temperature = genai.Ptr(temp)
	}

	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return textgen.Response{}, fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return textgen.Response{}, textgen.ErrEmpty
	}
	text := strings.TrimSpace(resp.Text())

	usage := g.counter.Usage(req.Prompt, text)
	if md := resp.UsageMetadata; md != nil && md.TotalTokenCount > 0 {
		usage = metrics.TokenUsage{
			PromptTokens:     int(md.PromptTokenCount),
			CompletionTokens: int(md.CandidatesTokenCount),
			TotalTokens:      int(md.TotalTokenCount),
		}
	}
	return textgen.Response{Text: text, Usage: usage}, nil
}

var _ textgen.Generator = (*Generator)(nil)
