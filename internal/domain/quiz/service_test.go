package quiz

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
)

func TestServiceGenerateFromModel(t *testing.T) {
	gen := &stubGenerator{text: "Q1. What is 2+2?\n(A) 3\n(B) 4\n(C) 5\n(D) 6\nAnswer: B"}
	svc := NewService(Config{Temperature: 0.7}, gen, prompt.Default(), discardLogger())

	quiz := svc.Generate(context.Background(), Request{Grade: "6", ExamType: "School", Difficulty: "easy"})
	require.Equal(t, SourceModel, quiz.Source)
	require.Len(t, quiz.Questions, 1)
	require.Equal(t, 1, quiz.Questions[0].CorrectOptionIndex)
	require.Contains(t, gen.last.Prompt, "Grade/Class: 6")
	require.Contains(t, gen.last.Prompt, "Create 5 MCQs")
}

func TestServiceGenerateFallsBackToSample(t *testing.T) {
	cases := map[string]*stubGenerator{
		"error":       {err: errors.New("quota")},
		"unparseable": {text: "Sorry, here are some facts about India instead."},
	}
	for name, gen := range cases {
		svc := NewService(Config{}, gen, prompt.Default(), discardLogger())
		quiz := svc.Generate(context.Background(), Request{Telugu: true, Count: 3})
		require.Equal(t, SourceSample, quiz.Source, name)
		require.Equal(t, SampleQuiz(true), quiz.Questions, name)
		require.True(t, quiz.Telugu, name)
	}
}

type stubGenerator struct {
	text string
	err  error
	last textgen.Request
}

func (s *stubGenerator) Generate(_ context.Context, req textgen.Request) (textgen.Response, error) {
	s.last = req
	if s.err != nil {
		return textgen.Response{}, s.err
	}
	return textgen.Response{Text: s.text}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
