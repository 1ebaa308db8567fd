package quiz

import (
	"context"
	"log/slog"

	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

const defaultCount = 5

// Service generates quizzes.
type Service interface {
	Generate(ctx context.Context, req Request) Quiz
}

type service struct {
	cfg     Config
	gen     textgen.Generator
	prompts *prompt.Library
	logger  *slog.Logger
}

// NewService wires the quiz domain.
func NewService(cfg Config, gen textgen.Generator, prompts *prompt.Library, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		gen:     gen,
		prompts: prompts,
		logger:  logger.With("component", "quiz.service"),
	}
}

// Generate returns the sample quiz when the model fails or yields nothing
// parseable.
func (s *service) Generate(ctx context.Context, req Request) Quiz {
	count := req.Count
	if count <= 0 {
		count = defaultCount
	}
	raw, err := textgen.Complete(ctx, s.gen, textgen.Request{
		Prompt: s.prompts.Quiz(prompt.QuizInput{
			Grade:      req.Grade,
			ExamType:   req.ExamType,
			Difficulty: req.Difficulty,
			Count:      count,
		}, req.Telugu),
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Warn("quiz generation failed, serving sample", "error", err)
		metrics.Fallbacks.WithLabelValues("quiz", "generation").Inc()
		return s.sample(req.Telugu)
	}
	questions := Parse(raw)
	if len(questions) == 0 {
		s.logger.Warn("quiz completion had no parseable questions, serving sample", "chars", len(raw))
		metrics.Fallbacks.WithLabelValues("quiz", "parse").Inc()
		return s.sample(req.Telugu)
	}
	unmarked := 0
	for _, q := range questions {
		if !q.AnswerMarked {
			unmarked++
		}
	}
	if unmarked > 0 {
		s.logger.Warn("quiz questions missing answer lines", "unmarked", unmarked, "total", len(questions))
	}
	return Quiz{Questions: questions, Source: SourceModel, Telugu: req.Telugu}
}

func (s *service) sample(telugu bool) Quiz {
	return Quiz{Questions: SampleQuiz(telugu), Source: SourceSample, Telugu: telugu}
}
