package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/jeevamithra/internal/bootstrap"
	"github.com/yanqian/jeevamithra/internal/domain/advisor"
	"github.com/yanqian/jeevamithra/internal/domain/auth"
	"github.com/yanqian/jeevamithra/internal/domain/chat"
	"github.com/yanqian/jeevamithra/internal/domain/news"
	"github.com/yanqian/jeevamithra/internal/domain/quiz"
	"github.com/yanqian/jeevamithra/internal/domain/rentals"
	"github.com/yanqian/jeevamithra/internal/domain/speech"
	"github.com/yanqian/jeevamithra/internal/domain/textgen"
	"github.com/yanqian/jeevamithra/internal/domain/weather"
	"github.com/yanqian/jeevamithra/internal/infra/blobstore"
	"github.com/yanqian/jeevamithra/internal/infra/config"
	"github.com/yanqian/jeevamithra/internal/infra/googlespeech"
	"github.com/yanqian/jeevamithra/internal/infra/kvstore"
	"github.com/yanqian/jeevamithra/internal/infra/llm"
	"github.com/yanqian/jeevamithra/internal/infra/llm/chatgpt"
	"github.com/yanqian/jeevamithra/internal/infra/llm/gemini"
	"github.com/yanqian/jeevamithra/internal/infra/rentalrepo"
	"github.com/yanqian/jeevamithra/internal/infra/userrepo"
	"github.com/yanqian/jeevamithra/pkg/metrics"
)

func provideTokenCounter(cfg *config.Config) *metrics.TokenCounter {
	return metrics.NewTokenCounter(cfg.LLM.TokenEncoding)
}

// provideGenerator picks the LLM backend. Without an API key every service
// serves its canned fallback.
func provideGenerator(cfg *config.Config, counter *metrics.TokenCounter, logger *slog.Logger) textgen.Generator {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, generation disabled")
		return textgen.Unavailable{}
	}
	var (
		next textgen.Generator
		err  error
	)
	switch cfg.LLM.Provider {
	case "gemini":
		next, err = gemini.NewGenerator(context.Background(), cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature, counter)
	default:
		var client *chatgpt.Client
		client, err = chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
		if err == nil {
			next = chatgpt.NewGenerator(client, cfg.LLM.Model, cfg.LLM.Temperature, counter)
		}
	}
	if err != nil {
		logger.Error("failed to build llm client, generation disabled", "provider", cfg.LLM.Provider, "error", err)
		return textgen.Unavailable{}
	}
	logger.Info("llm backend enabled", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	return llm.NewGuarded(cfg.LLM.Provider, next, llm.BreakerConfig{
		MaxRequests: cfg.LLM.Breaker.MaxRequests,
		Interval:    cfg.LLM.Breaker.Interval,
		Timeout:     cfg.LLM.Breaker.Timeout,
	}, logger)
}

// providePostgresPool returns nil when no DSN is set or the database is
// unreachable; repositories then fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func provideAuthRepository(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) auth.Repository {
	if cfg.Auth.Store != "postgres" {
		return userrepo.NewMemoryRepository()
	}
	if pool == nil {
		logger.Warn("auth store is postgres but no pool is available, using memory repository")
		return userrepo.NewMemoryRepository()
	}
	repo := userrepo.NewPostgresRepository(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("auth schema migration failed, using memory repository", "error", err)
		return userrepo.NewMemoryRepository()
	}
	logger.Info("auth postgres repository enabled")
	return repo
}

func provideRentalRepository(pool *pgxpool.Pool, logger *slog.Logger) rentals.Repository {
	catalog := rentals.DefaultCatalog()
	if pool == nil {
		return rentalrepo.NewMemoryRepository(catalog)
	}
	repo := rentalrepo.NewPostgresRepository(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Migrate(ctx, catalog); err != nil {
		logger.Error("rentals schema migration failed, using memory repository", "error", err)
		return rentalrepo.NewMemoryRepository(catalog)
	}
	logger.Info("rentals postgres repository enabled")
	return repo
}

// provideValkeyClient returns nil when valkey is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) valkey.Client {
	if !cfg.Valkey.Enabled {
		return nil
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return nil
	}
	return client
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Valkey.Addr, "://") {
		return valkey.ParseURL(cfg.Valkey.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}, nil
}

func provideKVStore(cfg *config.Config, client valkey.Client, logger *slog.Logger) kvstore.Store {
	opts := kvstore.Options{
		Prefix:     cfg.Valkey.Prefix,
		AudioTTL:   cfg.Speech.AudioCacheTTL,
		HistoryTTL: cfg.Chat.HistoryTTL,
	}
	if client == nil {
		return kvstore.NewMemoryStore(opts)
	}
	logger.Info("valkey store enabled", "addr", cfg.Valkey.Addr)
	return kvstore.NewValkeyStore(client, opts)
}

func provideImageStore(cfg *config.Config, logger *slog.Logger) chat.ImageStore {
	if !cfg.ObjectStorage.Enabled() {
		return blobstore.NewMemoryStorage()
	}
	store, err := blobstore.NewR2Storage(blobstore.R2Config{
		Endpoint:      cfg.ObjectStorage.Endpoint,
		AccessKey:     cfg.ObjectStorage.AccessKey,
		SecretKey:     cfg.ObjectStorage.SecretKey,
		Bucket:        cfg.ObjectStorage.Bucket,
		Region:        cfg.ObjectStorage.Region,
		PublicBaseURL: cfg.ObjectStorage.PublicBaseURL,
		PresignTTL:    cfg.ObjectStorage.PresignTTL,
	}, logger)
	if err != nil {
		logger.Error("failed to build object storage, keeping uploads in memory", "error", err)
		return blobstore.NewMemoryStorage()
	}
	logger.Info("object storage enabled", "bucket", cfg.ObjectStorage.Bucket)
	return store
}

// provideSpeechClient returns nil when no speech API key is configured.
func provideSpeechClient(cfg *config.Config, logger *slog.Logger) *googlespeech.Client {
	if strings.TrimSpace(cfg.Speech.APIKey) == "" {
		logger.Warn("speech api key not set, synthesis and transcription disabled")
		return nil
	}
	client, err := googlespeech.NewClient(googlespeech.Config{
		APIKey:  cfg.Speech.APIKey,
		TTSURL:  cfg.Speech.TTSURL,
		STTURL:  cfg.Speech.STTURL,
		Timeout: cfg.Speech.Timeout,
		Breaker: googlespeech.BreakerConfig{
			MaxRequests: cfg.Speech.Breaker.MaxRequests,
			Interval:    cfg.Speech.Breaker.Interval,
			Timeout:     cfg.Speech.Breaker.Timeout,
			MaxFailures: cfg.Speech.Breaker.MaxFailures,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to build speech client", "error", err)
		return nil
	}
	return client
}

func provideSynthesizer(client *googlespeech.Client) speech.Synthesizer {
	if client == nil {
		return nil
	}
	return client
}

func provideRecognizer(client *googlespeech.Client) speech.Recognizer {
	if client == nil {
		return nil
	}
	return client
}

func provideAudioCache(store kvstore.Store) speech.AudioCache {
	return store
}

func provideHistoryStore(store kvstore.Store) chat.HistoryStore {
	return store
}

func provideNewsStore(store kvstore.Store) news.Store {
	return store
}

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{
		Temperature:   cfg.LLM.Temperature,
		MaxImageBytes: cfg.Chat.MaxImageBytes,
		HistoryLimit:  cfg.Chat.HistoryLimit,
	}
}

func provideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{DefaultLocation: cfg.Weather.DefaultLocation, Temperature: cfg.LLM.Temperature}
}

func provideNewsConfig(cfg *config.Config) news.Config {
	return news.Config{
		Temperature:     cfg.LLM.NewsTemperature,
		RefreshEnabled:  cfg.News.RefreshEnabled,
		RefreshInterval: cfg.News.RefreshInterval,
	}
}

func provideQuizConfig(cfg *config.Config) quiz.Config {
	return quiz.Config{Temperature: cfg.LLM.Temperature}
}

func provideAdvisorConfig(cfg *config.Config) advisor.Config {
	return advisor.Config{Temperature: cfg.LLM.Temperature}
}

func provideSpeechConfig(cfg *config.Config) speech.Config {
	return speech.Config{
		SessionCacheSize: cfg.Speech.SessionCacheSize,
		MaxSessions:      cfg.Speech.MaxSessions,
		SessionIdleTTL:   cfg.Speech.SessionIdleTTL,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

func provideCleanup(pool *pgxpool.Pool, client valkey.Client) bootstrap.Cleanup {
	return func() {
		if client != nil {
			client.Close()
		}
		if pool != nil {
			pool.Close()
		}
	}
}
