package news

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultRefreshInterval matches the client's auto-refresh cadence.
const DefaultRefreshInterval = 3 * time.Minute

// Refresher periodically refreshes both language snapshots in the
// background. Manual refreshes run independently of it.
type Refresher struct {
	scheduler *gocron.Scheduler
	service   Service
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// NewRefresher builds a stopped refresher.
func NewRefresher(cfg Config, service Service, logger *slog.Logger) *Refresher {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		timeout:   time.Minute,
		logger:    logger.With("component", "news.refresher"),
	}
}

// Start schedules the job; the first run happens immediately.
func (r *Refresher) Start() error {
	if _, err := r.scheduler.Every(r.interval).Do(r.run); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	r.logger.Info("news refresher started", "interval", r.interval.String())
	return nil
}

// Stop cancels future runs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

func (r *Refresher) run() {
	for _, telugu := range []bool{false, true} {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		item := r.service.Refresh(ctx, telugu)
		cancel()
		r.logger.Debug("news refreshed", "telugu", telugu, "fallback", item.Fallback)
	}
}
