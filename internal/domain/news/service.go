package news

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/jeevamithra/internal/domain/i18n"
	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

// DefaultTemperature gives headlines more variety than other prompts.
const DefaultTemperature float32 = 0.8

// Service serves the latest agriculture news snapshot per language.
type Service interface {
	Latest(ctx context.Context, telugu bool) Item
	Refresh(ctx context.Context, telugu bool) Item
}

type service struct {
	cfg     Config
	gen     textgen.Generator
	prompts *prompt.Library
	store   Store
	parser  *Parser
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires the news domain.
func NewService(cfg Config, gen textgen.Generator, prompts *prompt.Library, store Store, logger *slog.Logger) Service {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	return &service{
		cfg:     cfg,
		gen:     gen,
		prompts: prompts,
		store:   store,
		parser:  DefaultParser(),
		logger:  logger.With("component", "news.service"),
		now:     time.Now,
	}
}

// Latest returns the stored snapshot, refreshing when none exists yet.
func (s *service) Latest(ctx context.Context, telugu bool) Item {
	lang := i18n.Tag(telugu)
	item, ok, err := s.store.Load(ctx, lang)
	if err != nil {
		s.logger.Warn("news store load failed", "lang", lang, "error", err)
	}
	if ok {
		return item
	}
	return s.Refresh(ctx, telugu)
}

// Refresh fetches and parses a new snapshot and stores it. Concurrent
// refreshes are not coordinated; the last save wins.
func (s *service) Refresh(ctx context.Context, telugu bool) Item {
	lang := i18n.Tag(telugu)
	var item Item
	raw, err := textgen.Complete(ctx, s.gen, textgen.Request{
		Prompt:      s.prompts.News(telugu),
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Warn("news generation failed, serving fallback", "lang", lang, "error", err)
		metrics.Fallbacks.WithLabelValues("news", "generation").Inc()
		item = s.parser.Fallback(telugu, s.now())
	} else {
		item = s.parser.Parse(raw, s.now())
		item.Telugu = telugu
	}
	if err := s.store.Save(ctx, lang, item); err != nil {
		s.logger.Warn("news store save failed", "lang", lang, "error", err)
	}
	return item
}
