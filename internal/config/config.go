// Package config loads fpds settings from defaults, an optional YAML file
// and FPDS_* environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Sternrassler/fpds-client/pkg/client"
	"github.com/Sternrassler/fpds-client/pkg/logging"
	"github.com/Sternrassler/fpds-client/pkg/pagination"
	"github.com/Sternrassler/fpds-client/pkg/search"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration.
type Config struct {
	BaseURL           string        `yaml:"base_url"`
	UserAgent         string        `yaml:"user_agent"`
	MaxConcurrency    int           `yaml:"max_concurrency"`
	RecordsPerPage    int           `yaml:"records_per_page"`
	Timeout           time.Duration `yaml:"timeout"`
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	MetricsAddr       string        `yaml:"metrics_addr"`
	Log               LogConfig     `yaml:"log"`
}

// LogConfig selects the log level and console formatting.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:        search.DefaultBaseURL,
		UserAgent:      client.DefaultUserAgent,
		MaxConcurrency: 5,
		RecordsPerPage: pagination.DefaultRecordsPerPage,
		Timeout:        30 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     1 * time.Second,
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment. The result is not validated; callers
// apply their own overrides and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML overlays data onto cfg. Unknown keys are rejected.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	str("FPDS_BASE_URL", &cfg.BaseURL)
	str("FPDS_USER_AGENT", &cfg.UserAgent)
	str("FPDS_METRICS_ADDR", &cfg.MetricsAddr)
	str("FPDS_LOG_LEVEL", &cfg.Log.Level)

	ints := []struct {
		key string
		dst *int
	}{
		{"FPDS_MAX_CONCURRENCY", &cfg.MaxConcurrency},
		{"FPDS_RECORDS_PER_PAGE", &cfg.RecordsPerPage},
		{"FPDS_RETRY_ATTEMPTS", &cfg.RetryAttempts},
	}
	for _, e := range ints {
		if v, ok := os.LookupEnv(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"FPDS_TIMEOUT", &cfg.Timeout},
		{"FPDS_RETRY_DELAY", &cfg.RetryDelay},
	}
	for _, e := range durations {
		if v, ok := os.LookupEnv(e.key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = d
		}
	}

	if v, ok := os.LookupEnv("FPDS_REQUESTS_PER_SECOND"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FPDS_REQUESTS_PER_SECOND: %w", err)
		}
		cfg.RequestsPerSecond = f
	}
	if v, ok := os.LookupEnv("FPDS_LOG_PRETTY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FPDS_LOG_PRETTY: %w", err)
		}
		cfg.Log.Pretty = b
	}
	return nil
}

// Validate checks every setting and reports the first problem.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if _, err := search.BuildURL(c.BaseURL, nil, 1); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be >= 1 (got %d)", c.MaxConcurrency)
	}
	if c.RecordsPerPage < 1 {
		return fmt.Errorf("records_per_page must be >= 1 (got %d)", c.RecordsPerPage)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0 (got %g)", c.RequestsPerSecond)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	// Remaining transport checks live with the client.
	_, err := client.New(c.ClientConfig())
	return err
}

// ClientConfig returns the transport settings.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		UserAgent:         c.UserAgent,
		Timeout:           c.Timeout,
		RetryAttempts:     c.RetryAttempts,
		RetryDelay:        c.RetryDelay,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// FetcherConfig returns the orchestration settings.
func (c Config) FetcherConfig() pagination.Config {
	return pagination.Config{
		BaseURL:        c.BaseURL,
		MaxConcurrency: c.MaxConcurrency,
		RecordsPerPage: c.RecordsPerPage,
	}
}

// LoggingConfig returns the logger settings writing to out.
func (c Config) LoggingConfig(out io.Writer) logging.Config {
	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = level
	}
	lc.Pretty = c.Log.Pretty
	if out != nil {
		lc.Output = out
	}
	return lc
}
