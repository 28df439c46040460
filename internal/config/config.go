package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mr1hm/go-raid-alerts/internal/filter"
)

type Config struct {
	Server    ServerConfig
	Worker    WorkerConfig
	Filter    FilterConfig
	LLM       LLMConfig
	Telegram  TelegramConfig
	Retention RetentionConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
	// IngestRateLimit is requests per second on the ingest routes.
	IngestRateLimit int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type FilterConfig struct {
	District                 []string
	City                     []string
	Oblast                   []string
	DedupWindow              time.Duration
	ContextWindow            time.Duration
	UrgentSameSourceCooldown time.Duration
	NegativeStatusCooldown   time.Duration
	ForwardAll               bool
}

type LLMConfig struct {
	Enabled  bool
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

type TelegramConfig struct {
	BotToken string
	APIURL   string
}

type RetentionConfig struct {
	History  time.Duration
	Schedule string
}

// ReplayConfig drives the offline replay tool.
type ReplayConfig struct {
	InputPath string
	FromLine  int
	ToLine    int
	Limit     int
	Broadcast bool
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

var ErrNoLocation = errors.New("no location configured: set MY_DISTRICT, MY_CITY or MY_OBLAST, or FORWARD_ALL_THREATS=true")

// Load reads the configuration from the environment. Malformed values are
// reported instead of falling back to defaults.
func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "localhost"),
			Port:            p.getInt("SERVER_PORT", 8080),
			IngestRateLimit: p.getInt("INGEST_RATE_LIMIT", 20),
		},
		Worker: WorkerConfig{
			Count:      p.getInt("WORKER_COUNT", 4),
			BufferSize: p.getInt("WORKER_BUFFER_SIZE", 100),
		},
		Filter: FilterConfig{
			District:                 filter.ParseLocationList(os.Getenv("MY_DISTRICT")),
			City:                     filter.ParseLocationList(os.Getenv("MY_CITY")),
			Oblast:                   filter.ParseLocationList(os.Getenv("MY_OBLAST")),
			DedupWindow:              p.getDuration("DEDUP_WINDOW", 180*time.Second),
			ContextWindow:            p.getDuration("CONTEXT_WINDOW", 300*time.Second),
			UrgentSameSourceCooldown: p.getDuration("URGENT_SAME_SOURCE_COOLDOWN", 0),
			NegativeStatusCooldown:   p.getDuration("NEGATIVE_STATUS_COOLDOWN", 120*time.Second),
			ForwardAll:               p.getBool("FORWARD_ALL_THREATS", false),
		},
		LLM: LLMConfig{
			Enabled:  p.getBool("LLM_ENABLED", false),
			Endpoint: getEnv("LLM_ENDPOINT", "http://127.0.0.1:11434/v1"),
			Model:    getEnv("LLM_MODEL", "qwen2.5:7b"),
			APIKey:   getEnv("LLM_API_KEY", "ollama"),
			Timeout:  p.getDuration("LLM_TIMEOUT", 3*time.Second),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			APIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		},
		Retention: RetentionConfig{
			History:  p.getDuration("HISTORY_RETENTION", 72*time.Hour),
			Schedule: getEnv("RETENTION_SCHEDULE", "@hourly"),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/raid-alerts.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadReplay reads the REPLAY_* variables.
func LoadReplay() (*ReplayConfig, error) {
	p := &parser{}
	cfg := &ReplayConfig{
		InputPath: os.Getenv("REPLAY_INPUT_PATH"),
		FromLine:  p.getInt("REPLAY_FROM_LINE", 0),
		ToLine:    p.getInt("REPLAY_TO_LINE", 0),
		Limit:     p.getInt("REPLAY_LIMIT", 0),
		Broadcast: p.getBool("REPLAY_BROADCAST", false),
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}

	if cfg.InputPath == "" {
		return nil, errors.New("REPLAY_INPUT_PATH is required")
	}
	if cfg.FromLine < 0 || cfg.ToLine < 0 || cfg.Limit < 0 {
		return nil, errors.New("replay line bounds and limit must not be negative")
	}
	if cfg.FromLine > 0 && cfg.ToLine > 0 && cfg.FromLine > cfg.ToLine {
		return nil, fmt.Errorf("invalid replay line range: REPLAY_FROM_LINE (%d) > REPLAY_TO_LINE (%d)", cfg.FromLine, cfg.ToLine)
	}
	return cfg, nil
}

// EngineConfig converts the environment view into the engine's config.
func (c *Config) EngineConfig() filter.Config {
	return filter.Config{
		Location: filter.LocationConfig{
			District: c.Filter.District,
			City:     c.Filter.City,
			Oblast:   c.Filter.Oblast,
		},
		DedupWindow:              c.Filter.DedupWindow,
		ContextWindow:            c.Filter.ContextWindow,
		UrgentSameSourceCooldown: c.Filter.UrgentSameSourceCooldown,
		NegativeStatusCooldown:   c.Filter.NegativeStatusCooldown,
		ForwardAll:               c.Filter.ForwardAll,
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.IngestRateLimit < 1 {
		return fmt.Errorf("ingest rate limit must be positive: %d", c.Server.IngestRateLimit)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1: %d", c.Worker.Count)
	}
	if c.Worker.BufferSize < 0 {
		return fmt.Errorf("worker buffer size must not be negative: %d", c.Worker.BufferSize)
	}

	windows := map[string]time.Duration{
		"DEDUP_WINDOW":                c.Filter.DedupWindow,
		"CONTEXT_WINDOW":              c.Filter.ContextWindow,
		"URGENT_SAME_SOURCE_COOLDOWN": c.Filter.UrgentSameSourceCooldown,
		"NEGATIVE_STATUS_COOLDOWN":    c.Filter.NegativeStatusCooldown,
	}
	for name, d := range windows {
		if d < 0 {
			return fmt.Errorf("%s must not be negative: %s", name, d)
		}
	}

	if len(c.Filter.District) == 0 && len(c.Filter.City) == 0 && len(c.Filter.Oblast) == 0 && !c.Filter.ForwardAll {
		return ErrNoLocation
	}

	if c.LLM.Enabled && c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM timeout must be positive when the verifier is enabled: %s", c.LLM.Timeout)
	}
	if c.Retention.History <= 0 {
		return fmt.Errorf("history retention must be positive: %s", c.Retention.History)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// parser collects every malformed variable so one run reports them all.
type parser struct {
	errs []error
}

func (p *parser) getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("error parsing %s=%q as integer: %w", key, val, err))
		return fallback
	}
	return i
}

func (p *parser) getBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("error parsing %s=%q as boolean: %w", key, val, err))
		return fallback
	}
	return b
}

func (p *parser) getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("error parsing %s=%q as duration: %w", key, val, err))
		return fallback
	}
	return d
}
