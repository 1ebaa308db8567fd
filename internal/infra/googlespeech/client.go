// Package googlespeech talks to the Google Cloud Text-to-Speech and
// Speech-to-Text REST APIs with an API key.
package googlespeech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yanqian/jeevamithra/internal/domain/speech"
)

const (
	DefaultTTSURL = "https://texttospeech.googleapis.com/v1/text:synthesize"
	DefaultSTTURL = "https://speech.googleapis.com/v1/speech:recognize"
)

// Config holds the endpoints and credentials.
type Config struct {
	APIKey  string
	TTSURL  string
	STTURL  string
	Timeout time.Duration
	Breaker BreakerConfig
}

// BreakerConfig tunes the circuit breaker shared by both endpoints.
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures uint32
}

// Client implements speech.Synthesizer and speech.Recognizer.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient builds a client. Empty URLs take the public Google endpoints.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("google speech api key is required")
	}
	if cfg.TTSURL == "" {
		cfg.TTSURL = DefaultTTSURL
	}
	if cfg.STTURL == "" {
		cfg.STTURL = DefaultSTTURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	b := cfg.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 3
	}
	if b.Interval <= 0 {
		b.Interval = time.Minute
	}
	if b.Timeout <= 0 {
		b.Timeout = 30 * time.Second
	}
	if b.MaxFailures == 0 {
		b.MaxFailures = 5
	}
	log := logger.With("component", "googlespeech.client")
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google-speech",
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("speech breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
		logger:     log,
	}, nil
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// rejected carries a 4xx answer through the breaker without counting it as
// a backend failure.
type rejected struct {
	err *speech.RemoteError
}

// post sends body to endpoint and decodes a 2xx answer into out. statusText
// maps a status code to the user message; it may return "".
func (c *Client) post(ctx context.Context, endpoint string, body, out any, statusText func(int) string, label string) error {
	res, err := c.cb.Execute(func() (interface{}, error) {
		status, raw, err := c.do(ctx, endpoint, body)
		if err != nil {
			return nil, err
		}
		if status < 300 {
			return raw, nil
		}
		remote := &speech.RemoteError{Status: status, Message: statusText(status)}
		if remote.Message == "" {
			var apiErr apiErrorBody
			if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
				remote.Message = apiErr.Error.Message
			} else {
				remote.Message = fmt.Sprintf("%s Error: %d %s", label, status, http.StatusText(status))
			}
		}
		if status >= 500 || status == http.StatusTooManyRequests {
			return nil, remote
		}
		return rejected{err: remote}, nil
	})
	if err != nil {
		return err
	}
	switch v := res.(type) {
	case rejected:
		return v.err
	case []byte:
		if err := json.Unmarshal(v, out); err != nil {
			return fmt.Errorf("decode %s response: %w", label, err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", c.cfg.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call %s: %w", u.Host, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
