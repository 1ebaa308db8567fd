package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

type stubModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (s *stubModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model = model
	s.contents = contents
	s.config = config
	return s.resp, s.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGenerateSendsTextAndImage(t *testing.T) {
	stub := &stubModels{resp: textResponse(" leaf blight ")}
	stub.resp.UsageMetadata = &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 3, TotalTokenCount: 13}
	gen := newGenerator(stub, "", 0.7, nil)

	resp, err := gen.Generate(context.Background(), textgen.Request{
		Prompt: "what is this",
		Image:  &textgen.Image{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	require.Equal(t, "leaf blight", resp.Text)
	require.Equal(t, 13, resp.Usage.TotalTokens)

	require.Equal(t, defaultModel, stub.model)
	require.Len(t, stub.contents, 1)
	parts := stub.contents[0].Parts
	require.Len(t, parts, 2)
	require.Equal(t, "what is this", parts[0].Text)
	require.Equal(t, "image/jpeg", parts[1].InlineData.MIMEType)
	require.InDelta(t, 0.7, *stub.config.Temperature, 0.001)
}

func TestGenerateEstimatesUsageWithoutMetadata(t *testing.T) {
	stub := &stubModels{resp: textResponse("one two")}
	gen := newGenerator(stub, "gemini-pro", 0.3, metrics.NewTokenCounter(""))

	resp, err := gen.Generate(context.Background(), textgen.Request{Prompt: "hello", Temperature: 0.9})
	require.NoError(t, err)
	require.Positive(t, resp.Usage.TotalTokens)
	require.Equal(t, "gemini-pro", stub.model)
	require.InDelta(t, 0.9, *stub.config.Temperature, 0.001)
}

func TestGenerateErrors(t *testing.T) {
	gen := newGenerator(&stubModels{err: errors.New("quota")}, "", 0, nil)
	_, err := gen.Generate(context.Background(), textgen.Request{Prompt: "x"})
	require.ErrorContains(t, err, "quota")

	gen = newGenerator(&stubModels{resp: &genai.GenerateContentResponse{}}, "", 0, nil)
	_, err = gen.Generate(context.Background(), textgen.Request{Prompt: "x"})
	require.ErrorIs(t, err, textgen.ErrEmpty)
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), "", "", 0, nil)
	require.Error(t, err)
}
