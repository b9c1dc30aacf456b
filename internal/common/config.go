package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Queue       QueueConfig     `toml:"queue"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type QueueConfig struct {
	PollInterval      string `toml:"poll_interval"`      // e.g. "1s" - how often workers poll for messages
	Concurrency       int    `toml:"concurrency"`        // Number of concurrent scan workers
	VisibilityTimeout string `toml:"visibility_timeout"` // e.g. "5m" - message visibility timeout for redelivery
	MaxReceive        int    `toml:"max_receive"`        // Max times a message can be received before it is dropped
	QueueName         string `toml:"queue_name"`         // Queue name prefix in Badger
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// AnalysisConfig contains the external AI-analysis service configuration
type AnalysisConfig struct {
	BaseURL        string `toml:"base_url"`         // Analysis service base URL
	APIKey         string `toml:"api_key"`          // Bearer token for the analysis service
	RequestTimeout string `toml:"request_timeout"`  // HTTP request timeout as duration string
	RateLimit      int    `toml:"rate_limit"`       // Max requests per second
	MaxRetries     int    `toml:"max_retries"`      // Fixed retry count for failed submissions
	RetryBackoff   string `toml:"retry_backoff"`    // Delay between retries as duration string
}

// SchedulerConfig contains the maintenance sweep configuration
type SchedulerConfig struct {
	Enabled    bool   `toml:"enabled"`
	Schedule   string `toml:"schedule"`    // Cron schedule format
	StaleAfter string `toml:"stale_after"` // Running scans older than this are failed
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in housescanner.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Queue: QueueConfig{
			PollInterval:      "1s",
			Concurrency:       4,
			VisibilityTimeout: "5m",
			MaxReceive:        3,
			QueueName:         "housescanner_scans",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Analysis: AnalysisConfig{
			BaseURL:        "http://localhost:9090",
			RequestTimeout: "2m",
			RateLimit:      5,
			MaxRetries:     3,
			RetryBackoff:   "2s",
		},
		Scheduler: SchedulerConfig{
			Enabled:    true,
			Schedule:   "*/5 * * * *", // Every 5 minutes
			StaleAfter: "30m",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("HOUSESCANNER_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Queue configuration
	if pollInterval := os.Getenv("HOUSESCANNER_QUEUE_POLL_INTERVAL"); pollInterval != "" {
		config.Queue.PollInterval = pollInterval
	}
	if concurrency := os.Getenv("HOUSESCANNER_QUEUE_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Queue.Concurrency = c
		}
	}
	if visibilityTimeout := os.Getenv("HOUSESCANNER_QUEUE_VISIBILITY_TIMEOUT"); visibilityTimeout != "" {
		config.Queue.VisibilityTimeout = visibilityTimeout
	}
	if maxReceive := os.Getenv("HOUSESCANNER_QUEUE_MAX_RECEIVE"); maxReceive != "" {
		if mr, err := strconv.Atoi(maxReceive); err == nil {
			config.Queue.MaxReceive = mr
		}
	}
	if queueName := os.Getenv("HOUSESCANNER_QUEUE_NAME"); queueName != "" {
		config.Queue.QueueName = queueName
	}

	// Storage configuration
	if badgerPath := os.Getenv("HOUSESCANNER_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("HOUSESCANNER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("HOUSESCANNER_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("HOUSESCANNER_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Analysis service configuration
	if baseURL := os.Getenv("HOUSESCANNER_ANALYSIS_BASE_URL"); baseURL != "" {
		config.Analysis.BaseURL = baseURL
	}
	if apiKey := os.Getenv("HOUSESCANNER_ANALYSIS_API_KEY"); apiKey != "" {
		config.Analysis.APIKey = apiKey
	}
	if timeout := os.Getenv("HOUSESCANNER_ANALYSIS_REQUEST_TIMEOUT"); timeout != "" {
		config.Analysis.RequestTimeout = timeout
	}
	if rateLimit := os.Getenv("HOUSESCANNER_ANALYSIS_RATE_LIMIT"); rateLimit != "" {
		if rl, err := strconv.Atoi(rateLimit); err == nil {
			config.Analysis.RateLimit = rl
		}
	}
	if maxRetries := os.Getenv("HOUSESCANNER_ANALYSIS_MAX_RETRIES"); maxRetries != "" {
		if mr, err := strconv.Atoi(maxRetries); err == nil {
			config.Analysis.MaxRetries = mr
		}
	}

	// Scheduler configuration
	if enabled := os.Getenv("HOUSESCANNER_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
	if schedule := os.Getenv("HOUSESCANNER_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
	if staleAfter := os.Getenv("HOUSESCANNER_SCHEDULER_STALE_AFTER"); staleAfter != "" {
		config.Scheduler.StaleAfter = staleAfter
	}
}
