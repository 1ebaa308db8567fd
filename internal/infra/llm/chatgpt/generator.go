package chatgpt

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

// Generator adapts the client to textgen.Generator.
type Generator struct {
	client      *Client
	model       string
	temperature float32
	counter     *metrics.TokenCounter
}

// NewGenerator constructs the adapter. temperature is used when a request
// leaves it zero.
func NewGenerator(client *Client, model string, temperature float32, counter *metrics.TokenCounter) *Generator {
	return &Generator{client: client, model: model, temperature: temperature, counter: counter}
}

// Generate sends the prompt, with the image inline as a data URL, as a
// single user message.
func (g *Generator) Generate(ctx context.Context, req textgen.Request) (textgen.Response, error) {
	temp := req.Temperature
	if temp == 0 {
		temp = g.temperature
	}
	resp, err := g.client.CreateChatCompletion(ctx, ChatCompletionRequest{
		Model:       g.model,
		Temperature: temp,
		Messages:    []Message{userMessage(req)},
	})
	if err != nil {
		return textgen.Response{}, err
	}
	if len(resp.Choices) == 0 {
		return textgen.Response{}, textgen.ErrEmpty
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	usage := g.counter.Usage(req.Prompt, text)
	if resp.Usage != nil {
		usage = metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return textgen.Response{Text: text, Usage: usage}, nil
}

func userMessage(req textgen.Request) Message {
	if req.Image == nil {
		return Message{Role: "user", Content: req.Prompt}
	}
	dataURL := "data:" + req.Image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Image.Data)
	return Message{Role: "user", Content: []ContentPart{
		{Type: "text", Text: req.Prompt},
		{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
	}}
}

var _ textgen.Generator = (*Generator)(nil)
