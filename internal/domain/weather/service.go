package weather

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/jeevamithra/internal/domain/prompt"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

// DefaultLocation is used when neither the request nor config names one.
const DefaultLocation = "Hyderabad, India"

// Service produces farmer-oriented weather snapshots.
type Service interface {
	Forecast(ctx context.Context, req Request) Snapshot
}

type service struct {
	cfg     Config
	gen     textgen.Generator
	prompts *prompt.Library
	parser  *Parser
	logger  *slog.Logger
}

// NewService wires the weather domain.
func NewService(cfg Config, gen textgen.Generator, prompts *prompt.Library, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.DefaultLocation) == "" {
		cfg.DefaultLocation = DefaultLocation
	}
	return &service{
		cfg:     cfg,
		gen:     gen,
		prompts: prompts,
		parser:  DefaultParser(),
		logger:  logger.With("component", "weather.service"),
	}
}

// Forecast never fails: generator errors and blank completions produce the
// fallback snapshot.
func (s *service) Forecast(ctx context.Context, req Request) Snapshot {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = s.cfg.DefaultLocation
	}
	raw, err := textgen.Complete(ctx, s.gen, textgen.Request{
		Prompt:      s.prompts.Weather(location, req.Telugu),
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Warn("weather generation failed, serving fallback", "location", location, "error", err)
		metrics.Fallbacks.WithLabelValues("weather", "generation").Inc()
		return s.parser.Fallback(location, req.Telugu)
	}
	snap := s.parser.Parse(raw, location, req.Telugu)
	if snap.CannedForecast {
		metrics.Fallbacks.WithLabelValues("weather", "forecast").Inc()
	}
	s.logger.Info("weather snapshot parsed", "location", location, "forecast_days", len(snap.FiveDayForecast), "canned_forecast", snap.CannedForecast)
	return snap
}
