package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	LLM           LLMConfig           `yaml:"llm"`
	Speech        SpeechConfig        `yaml:"speech"`
	Weather       WeatherConfig       `yaml:"weather"`
	News          NewsConfig          `yaml:"news"`
	Chat          ChatConfig          `yaml:"chat"`
	Auth          AuthConfig          `yaml:"auth"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Valkey        ValkeyConfig        `yaml:"valkey"`
	ObjectStorage ObjectStorageConfig `yaml:"objectStorage"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// BreakerConfig tunes a circuit breaker in front of a remote backend.
type BreakerConfig struct {
	MaxRequests uint32        `yaml:"maxRequests"`
	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxFailures uint32        `yaml:"maxFailures"`
}

// LLMConfig selects and configures the text generation backend.
type LLMConfig struct {
	Provider        string        `yaml:"provider"`
	APIKey          string        `yaml:"apiKey"`
	BaseURL         string        `yaml:"baseUrl"`
	Model           string        `yaml:"model"`
	Temperature     float32       `yaml:"temperature"`
	NewsTemperature float32       `yaml:"newsTemperature"`
	Timeout         time.Duration `yaml:"timeout"`
	TokenEncoding   string        `yaml:"tokenEncoding"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

// SpeechConfig holds the Google speech settings.
type SpeechConfig struct {
	APIKey           string        `yaml:"apiKey"`
	TTSURL           string        `yaml:"ttsUrl"`
	STTURL           string        `yaml:"sttUrl"`
	SessionCacheSize int           `yaml:"sessionCacheSize"`
	MaxSessions      int           `yaml:"maxSessions"`
	SessionIdleTTL   time.Duration `yaml:"sessionIdleTtl"`
	AudioCacheTTL    time.Duration `yaml:"audioCacheTtl"`
	Timeout          time.Duration `yaml:"timeout"`
	Breaker          BreakerConfig `yaml:"breaker"`
}

// WeatherConfig controls the weather advisory.
type WeatherConfig struct {
	DefaultLocation string `yaml:"defaultLocation"`
}

// NewsConfig controls the agriculture news feed.
type NewsConfig struct {
	RefreshEnabled  bool          `yaml:"refreshEnabled"`
	RefreshInterval time.Duration `yaml:"refreshInterval"`
}

// ChatConfig controls the chat orchestrator.
type ChatConfig struct {
	MaxImageBytes int           `yaml:"maxImageBytes"`
	HistoryLimit  int           `yaml:"historyLimit"`
	HistoryTTL    time.Duration `yaml:"historyTtl"`
}

// AuthConfig controls account storage and token issuance.
type AuthConfig struct {
	Store           string        `yaml:"store"`
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
	Google          GoogleConfig  `yaml:"google"`
}

// GoogleConfig holds Google sign-in settings.
type GoogleConfig struct {
	ClientID             string `yaml:"clientId"`
	ClientSecret         string `yaml:"clientSecret"`
	RedirectURL          string `yaml:"redirectUrl"`
	TokenEncryptionKey   string `yaml:"tokenEncryptionKey"`
	PostLoginRedirectURL string `yaml:"postLoginRedirectUrl"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the shared cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ObjectStorageConfig points at an S3-compatible bucket for uploads.
type ObjectStorageConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	AccessKey     string        `yaml:"accessKey"`
	SecretKey     string        `yaml:"secretKey"`
	Bucket        string        `yaml:"bucket"`
	Region        string        `yaml:"region"`
	PublicBaseURL string        `yaml:"publicBaseUrl"`
	PresignTTL    time.Duration `yaml:"presignTtl"`
}

// Enabled reports whether enough is set to reach a bucket.
func (o ObjectStorageConfig) Enabled() bool {
	return strings.TrimSpace(o.Endpoint) != "" && strings.TrimSpace(o.Bucket) != ""
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("PORT"); v != "" && os.Getenv("HTTP_ADDRESS") == "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_NEWS_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.NewsTemperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = parsed
		}
	}

	if v := os.Getenv("SPEECH_API_KEY"); v != "" {
		cfg.Speech.APIKey = v
	}
	if v := os.Getenv("SPEECH_TTS_URL"); v != "" {
		cfg.Speech.TTSURL = v
	}
	if v := os.Getenv("SPEECH_STT_URL"); v != "" {
		cfg.Speech.STTURL = v
	}
	if v := os.Getenv("SPEECH_SESSION_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Speech.SessionCacheSize = parsed
		}
	}
	if v := os.Getenv("SPEECH_MAX_SESSIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Speech.MaxSessions = parsed
		}
	}
	if v := os.Getenv("SPEECH_SESSION_IDLE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Speech.SessionIdleTTL = parsed
		}
	}
	if v := os.Getenv("SPEECH_AUDIO_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Speech.AudioCacheTTL = parsed
		}
	}

	if v := os.Getenv("WEATHER_DEFAULT_LOCATION"); v != "" {
		cfg.Weather.DefaultLocation = v
	}
	if v := os.Getenv("NEWS_REFRESH_ENABLED"); v != "" {
		cfg.News.RefreshEnabled = parseBool(v)
	}
	if v := os.Getenv("NEWS_REFRESH_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.News.RefreshInterval = parsed
		}
	}
	if v := os.Getenv("CHAT_MAX_IMAGE_BYTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.MaxImageBytes = parsed
		}
	}
	if v := os.Getenv("CHAT_HISTORY_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.HistoryLimit = parsed
		}
	}

	if v := os.Getenv("AUTH_STORE"); v != "" {
		cfg.Auth.Store = strings.ToLower(v)
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTokenTTL = parsed
		}
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.Google.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REDIRECT_URL"); v != "" {
		cfg.Auth.Google.RedirectURL = v
	}
	if v := os.Getenv("GOOGLE_TOKEN_ENCRYPTION_KEY"); v != "" {
		cfg.Auth.Google.TokenEncryptionKey = v
	}
	if v := os.Getenv("GOOGLE_POST_LOGIN_REDIRECT_URL"); v != "" {
		cfg.Auth.Google.PostLoginRedirectURL = v
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}

	if v := os.Getenv("OBJECT_STORAGE_ENDPOINT"); v != "" {
		cfg.ObjectStorage.Endpoint = v
	}
	if v := os.Getenv("OBJECT_STORAGE_ACCESS_KEY"); v != "" {
		cfg.ObjectStorage.AccessKey = v
	}
	if v := os.Getenv("OBJECT_STORAGE_SECRET_KEY"); v != "" {
		cfg.ObjectStorage.SecretKey = v
	}
	if v := os.Getenv("OBJECT_STORAGE_BUCKET"); v != "" {
		cfg.ObjectStorage.Bucket = v
	}
	if v := os.Getenv("OBJECT_STORAGE_REGION"); v != "" {
		cfg.ObjectStorage.Region = v
	}
	if v := os.Getenv("OBJECT_STORAGE_PUBLIC_BASE_URL"); v != "" {
		cfg.ObjectStorage.PublicBaseURL = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Provider:        "openai",
			Model:           "gpt-4o-mini",
			Temperature:     0.7,
			NewsTemperature: 0.8,
			Timeout:         60 * time.Second,
			TokenEncoding:   "cl100k_base",
			Breaker: BreakerConfig{
				MaxRequests: 5,
				Interval:    time.Minute,
				Timeout:     2 * time.Minute,
			},
		},
		Speech: SpeechConfig{
			SessionCacheSize: 50,
			MaxSessions:      1000,
			SessionIdleTTL:   30 * time.Minute,
			AudioCacheTTL:    24 * time.Hour,
			Timeout:          30 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests: 3,
				Interval:    time.Minute,
				Timeout:     30 * time.Second,
				MaxFailures: 5,
			},
		},
		Weather: WeatherConfig{
			DefaultLocation: "Hyderabad, India",
		},
		News: NewsConfig{
			RefreshEnabled:  true,
			RefreshInterval: 3 * time.Minute,
		},
		Chat: ChatConfig{
			MaxImageBytes: 10 * 1024 * 1024,
			HistoryLimit:  100,
			HistoryTTL:    7 * 24 * time.Hour,
		},
		Auth: AuthConfig{
			Store:           "memory",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Valkey: ValkeyConfig{
			Prefix: "jeevamithra",
		},
		ObjectStorage: ObjectStorageConfig{
			Region:     "auto",
			PresignTTL: time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be openai or gemini, got %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.NewsTemperature < 0 || c.LLM.NewsTemperature > 2 {
		return errors.New("llm.newsTemperature must be between 0 and 2")
	}
	if c.Speech.SessionCacheSize <= 0 {
		return errors.New("speech.sessionCacheSize must be positive")
	}
	if c.Speech.MaxSessions <= 0 {
		return errors.New("speech.maxSessions must be positive")
	}
	if c.Speech.SessionIdleTTL <= 0 {
		return errors.New("speech.sessionIdleTtl must be positive")
	}
	if c.Speech.AudioCacheTTL < 0 {
		return errors.New("speech.audioCacheTtl cannot be negative")
	}
	if strings.TrimSpace(c.Weather.DefaultLocation) == "" {
		return errors.New("weather.defaultLocation cannot be empty")
	}
	if c.News.RefreshEnabled && c.News.RefreshInterval < time.Second {
		return errors.New("news.refreshInterval must be at least 1s when refresh is enabled")
	}
	if c.Chat.MaxImageBytes <= 0 {
		return errors.New("chat.maxImageBytes must be positive")
	}
	if c.Chat.HistoryLimit <= 0 {
		return errors.New("chat.historyLimit must be positive")
	}
	switch c.Auth.Store {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return errors.New("postgres.dsn cannot be empty when auth.store is postgres")
		}
	default:
		return fmt.Errorf("auth.store must be memory or postgres, got %q", c.Auth.Store)
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	return nil
}
