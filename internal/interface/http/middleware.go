package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yanqian/jeevamithra/internal/infra/config"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := fromAppError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		body := gin.H{"code": httpErr.Code, "message": message}
		if len(httpErr.Fields) > 0 {
			body["fields"] = httpErr.Fields
		}
		c.JSON(httpErr.Status, gin.H{"error": body})
	}
}

// rateLimitMiddleware gives every client IP its own token bucket refilled at
// RequestsPerMinute. Rejected requests learn when to retry.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newClientLimiters(cfg, time.Now)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		wait, ok := limiters.take(ip)
		if ok {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests, slow down", nil))
	}
}

const idleLimiterTTL = 5 * time.Minute

type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// clientLimiters holds one limiter per client and forgets clients idle for
// longer than idleLimiterTTL, sweeping at most once per TTL.
type clientLimiters struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	every     rate.Limit
	burst     int
	now       func() time.Time
	nextSweep time.Time
}

func newClientLimiters(cfg config.RateLimitConfig, now func() time.Time) *clientLimiters {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		every:   rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute)),
		burst:   burst,
		now:     now,
	}
}

// take spends one token for key, or reports how long until one is free.
func (l *clientLimiters) take(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.After(l.nextSweep) {
		for k, cl := range l.clients {
			if now.Sub(cl.lastSeen) > idleLimiterTTL {
				delete(l.clients, k)
			}
		}
		l.nextSweep = now.Add(idleLimiterTTL)
	}
	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{bucket: rate.NewLimiter(l.every, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now
	r := cl.bucket.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return delay, false
	}
	return 0, true
}
