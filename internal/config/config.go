// Package config loads xmlpo settings from an optional YAML file, a .env
// file and XMLPO_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/ZaguanLabs/xmlpo/mode"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no path is given and the file exists.
const DefaultFile = ".xmlpo.yaml"

// Config is the resolved configuration.
type Config struct {
	Mode             string `yaml:"mode"`
	KeepEntities     bool   `yaml:"keep_entities"`
	MarkUntranslated bool   `yaml:"mark_untranslated"`
	Workers          int    `yaml:"workers"`

	Memory   MemoryConfig   `yaml:"memory"`
	Provider ProviderConfig `yaml:"provider"`

	// Modes are user-defined table policies, selectable by name.
	Modes []mode.Spec `yaml:"modes"`
}

// MemoryConfig selects the translation memory backend.
type MemoryConfig struct {
	// RedisURL selects the Redis store; empty means in-process memory.
	RedisURL  string `yaml:"redis_url"`
	KeyPrefix string `yaml:"key_prefix"`
	TTL       int    `yaml:"ttl"` // seconds, 0 = no expiry
	// File is a JSON export loaded into the in-process memory at start
	// and written back on exit.
	File string `yaml:"file"`
}

// ProviderConfig configures machine pre-translation.
type ProviderConfig struct {
	APIKey            string            `yaml:"-"`
	BaseURL           string            `yaml:"base_url"`
	Model             string            `yaml:"model"`
	Temperature       float32           `yaml:"temperature"`
	BatchSize         int               `yaml:"batch_size"`
	RequestsPerMinute int               `yaml:"requests_per_minute"`
	MessagesPerMinute int               `yaml:"messages_per_minute"`
	MaxRetries        int               `yaml:"max_retries"`
	Style             string            `yaml:"style"`
	Context           string            `yaml:"context"`
	SourceLang        string            `yaml:"source_lang"`
	ExcludedTerms     []string          `yaml:"excluded_terms"`
	Glossary          map[string]string `yaml:"glossary"`
}

// Load reads path (or DefaultFile when path is empty and it exists), then
// applies .env and environment overrides and fills defaults. A missing
// explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	file := path
	if file == "" {
		file = DefaultFile
	}
	data, err := os.ReadFile(file) // #nosec G304 - path is intentionally user-provided
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
	case path == "" && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Ignoring unreadable .env file")
	}
	cfg.applyEnv()
	cfg.defaults()

	for i, s := range cfg.Modes {
		if s.Name == "" {
			return nil, fmt.Errorf("mode %d in %s has no name", i+1, file)
		}
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Mode = getEnv("XMLPO_MODE", c.Mode)
	c.KeepEntities = getEnvBool("XMLPO_KEEP_ENTITIES", c.KeepEntities)
	c.MarkUntranslated = getEnvBool("XMLPO_MARK_UNTRANSLATED", c.MarkUntranslated)
	c.Workers = getEnvInt("XMLPO_WORKERS", c.Workers)

	c.Memory.RedisURL = getEnv("XMLPO_REDIS_URL", c.Memory.RedisURL)
	c.Memory.TTL = getEnvInt("XMLPO_MEMORY_TTL", c.Memory.TTL)
	c.Memory.File = getEnv("XMLPO_MEMORY_FILE", c.Memory.File)

	c.Provider.APIKey = getEnv("OPENAI_API_KEY", c.Provider.APIKey)
	c.Provider.BaseURL = getEnv("OPENAI_BASE_URL", c.Provider.BaseURL)
	c.Provider.Model = getEnv("XMLPO_MODEL", c.Provider.Model)
	c.Provider.RequestsPerMinute = getEnvInt("XMLPO_RPM", c.Provider.RequestsPerMinute)
	c.Provider.MessagesPerMinute = getEnvInt("XMLPO_MPM", c.Provider.MessagesPerMinute)
}

func (c *Config) defaults() {
	if c.Mode == "" {
		c.Mode = "basic"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Memory.KeyPrefix == "" {
		c.Memory.KeyPrefix = "xmlpo:"
	}
	if c.Provider.Model == "" {
		c.Provider.Model = "gpt-4o-mini"
	}
	if c.Provider.BatchSize <= 0 {
		c.Provider.BatchSize = 50
	}
	if c.Provider.RequestsPerMinute <= 0 {
		c.Provider.RequestsPerMinute = 60
	}
	if c.Provider.MaxRetries <= 0 {
		c.Provider.MaxRetries = 3
	}
	if c.Provider.Style == "" {
		c.Provider.Style = "technical"
	}
	if c.Provider.SourceLang == "" {
		c.Provider.SourceLang = "en"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring invalid integer")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring invalid boolean")
		return fallback
	}
	return b
}
