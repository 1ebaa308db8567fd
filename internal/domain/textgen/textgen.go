// Package textgen is the port every domain service uses to reach a hosted
// text-generation model. Adapters live under internal/infra/llm.
package textgen

import (
	"context"
	"errors"
	"strings"

	"github.com/yanqian/jeevamithra/pkg/metrics"
)

// ErrUnavailable is returned when no generation backend is configured.
var ErrUnavailable = errors.New("text generation backend not configured")

// ErrEmpty is returned by Complete when the model produced only whitespace.
var ErrEmpty = errors.New("text generation returned an empty completion")

// Image is an inline attachment sent alongside the prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is a single-turn generation call. A zero Temperature means the
// backend default.
type Request struct {
	Prompt      string
	Temperature float32
	Image       *Image
}

// Response carries the completion text and an approximate token count.
type Response struct {
	Text  string
	Usage metrics.TokenUsage
}

// Generator produces one completion per request.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Complete calls gen and treats a blank completion as an error.
func Complete(ctx context.Context, gen Generator, req Request) (string, error) {
	if gen == nil {
		return "", ErrUnavailable
	}
	resp, err := gen.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Unavailable is a Generator that always fails with ErrUnavailable. Services
// wired with it serve their canned fallbacks.
type Unavailable struct{}

// Generate implements Generator.
func (Unavailable) Generate(context.Context, Request) (Response, error) {
	return Response{}, ErrUnavailable
}
