// Package advisor answers the structured education and fitness forms:
// workout plans, nutrition breakdowns, scholarships, career paths and study
// tips. Every operation degrades to a canned message instead of failing.
package advisor

import (
	"context"
	"log/slog"

	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

// Service exposes the advisor forms.
type Service interface {
	WorkoutPlan(ctx context.Context, req WorkoutRequest) Advice
	Nutrition(ctx context.Context, req NutritionRequest) Advice
	Scholarships(ctx context.Context, req ScholarshipRequest) Advice
	CareerGuidance(ctx context.Context, telugu bool) Advice
	ProductivityTips(ctx context.Context, telugu bool) Advice
}

type service struct {
	cfg     Config
	gen     textgen.Generator
	prompts *prompt.Library
	logger  *slog.Logger
}

// NewService wires the advisor domain.
func NewService(cfg Config, gen textgen.Generator, prompts *prompt.Library, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		gen:     gen,
		prompts: prompts,
		logger:  logger.With("component", "advisor.service"),
	}
}

func (s *service) WorkoutPlan(ctx context.Context, req WorkoutRequest) Advice {
	return s.ask(ctx, TopicWorkout, s.prompts.Workout(req.Data, req.Telugu), req.Telugu)
}

func (s *service) Nutrition(ctx context.Context, req NutritionRequest) Advice {
	return s.ask(ctx, TopicNutrition, s.prompts.Nutrition(req.FoodItem, req.Quantity, req.Telugu), req.Telugu)
}

func (s *service) Scholarships(ctx context.Context, req ScholarshipRequest) Advice {
	p := s.prompts.Scholarships(prompt.ScholarshipInput{
		Grade:     req.Grade,
		Community: req.Community,
		Income:    req.Income,
		State:     req.State,
	}, req.Telugu)
	return s.ask(ctx, TopicScholarships, p, req.Telugu)
}

func (s *service) CareerGuidance(ctx context.Context, telugu bool) Advice {
	return s.ask(ctx, TopicCareer, s.prompts.Career(telugu), telugu)
}

func (s *service) ProductivityTips(ctx context.Context, telugu bool) Advice {
	return s.ask(ctx, TopicProductivity, s.prompts.Productivity(telugu), telugu)
}

func (s *service) ask(ctx context.Context, topic, p string, telugu bool) Advice {
	text, err := textgen.Complete(ctx, s.gen, textgen.Request{Prompt: p, Temperature: s.cfg.Temperature})
	if err != nil {
		s.logger.Warn("advisor generation failed", "topic", topic, "error", err)
		metrics.Fallbacks.WithLabelValues("advisor."+topic, "generation").Inc()
		return Advice{Topic: topic, Text: FailureMessage(topic, telugu), Fallback: true, Telugu: telugu}
	}
	return Advice{Topic: topic, Text: text, Telugu: telugu}
}
