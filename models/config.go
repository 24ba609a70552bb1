// Package models defines data structures for configuration and article records.
package models

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "summarizer.yaml"

type Config struct {
	TargetLanguage string           `yaml:"target_language"`
	Summarizer     SummarizerConfig `yaml:"summarizer"`
	Translator     TranslatorConfig `yaml:"translator"`
	History        HistoryConfig    `yaml:"history"`
	Log            LogConfig        `yaml:"log"`
}

type SummarizerConfig struct {
	Provider      string `yaml:"provider"` // "rapidapi" or "readability"
	BaseURL       string `yaml:"base_url"`
	Host          string `yaml:"host"`
	APIKey        string `yaml:"api_key"`
	Length        int    `yaml:"length"`
	MaxParagraphs int    `yaml:"max_paragraphs"`
	Timeout       string `yaml:"timeout"`
	CacheDir      string `yaml:"cache_dir"`
	CacheTTL      string `yaml:"cache_ttl"`
}

type TranslatorConfig struct {
	BaseURL           string   `yaml:"base_url"`
	Host              string   `yaml:"host"`
	APIKey            string   `yaml:"api_key"`
	Detector          string   `yaml:"detector"` // "remote" or "lingua"
	DetectorLanguages []string `yaml:"detector_languages"`
	Timeout           string   `yaml:"timeout"`
}

type HistoryConfig struct {
	Driver             string `yaml:"driver"` // "sqlite", "file" or "memory"
	Path               string `yaml:"path"`
	Slot               string `yaml:"slot"`
	RecordUntranslated bool   `yaml:"record_untranslated"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SummarizerTimeout returns the per-request timeout, defaulting to 30s.
func (c *Config) SummarizerTimeout() time.Duration {
	return parseDuration(c.Summarizer.Timeout, 30*time.Second)
}

// TranslatorTimeout returns the per-request timeout, defaulting to 30s.
func (c *Config) TranslatorTimeout() time.Duration {
	return parseDuration(c.Translator.Timeout, 30*time.Second)
}

// CacheTTL returns the summary cache TTL. Zero means caching is off.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Summarizer.CacheTTL, 0)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "es"
	}
	if cfg.Summarizer.Provider == "" {
		cfg.Summarizer.Provider = "rapidapi"
	}
	if cfg.Summarizer.BaseURL == "" {
		cfg.Summarizer.BaseURL = "https://article-extractor-and-summarizer.p.rapidapi.com"
	}
	if cfg.Summarizer.Host == "" {
		cfg.Summarizer.Host = "article-extractor-and-summarizer.p.rapidapi.com"
	}
	if cfg.Summarizer.APIKey == "" {
		cfg.Summarizer.APIKey = os.Getenv("RAPID_API_ARTICLE_KEY")
	}
	if cfg.Summarizer.Length == 0 {
		cfg.Summarizer.Length = 3
	}
	if cfg.Summarizer.MaxParagraphs == 0 {
		cfg.Summarizer.MaxParagraphs = 3
	}
	if cfg.Summarizer.CacheDir == "" {
		cfg.Summarizer.CacheDir = ".summarizer-cache"
	}
	if cfg.Translator.BaseURL == "" {
		cfg.Translator.BaseURL = "https://deep-translate1.p.rapidapi.com"
	}
	if cfg.Translator.Host == "" {
		cfg.Translator.Host = "deep-translate1.p.rapidapi.com"
	}
	if cfg.Translator.APIKey == "" {
		cfg.Translator.APIKey = os.Getenv("RAPID_API_TRANSLATE_KEY")
	}
	if cfg.Translator.Detector == "" {
		cfg.Translator.Detector = "remote"
	}
	if cfg.History.Driver == "" {
		cfg.History.Driver = "sqlite"
	}
	if cfg.History.Path == "" {
		switch cfg.History.Driver {
		case "file":
			cfg.History.Path = "articles.json"
		default:
			cfg.History.Path = "summarizer.db"
		}
	}
	if cfg.History.Slot == "" {
		cfg.History.Slot = "articles"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func validate(cfg *Config) error {
	if _, err := language.Parse(cfg.TargetLanguage); err != nil {
		return fmt.Errorf("config: invalid target_language %q: %w", cfg.TargetLanguage, err)
	}
	switch cfg.Summarizer.Provider {
	case "rapidapi", "readability":
	default:
		return fmt.Errorf("config: unsupported summarizer provider %q (supported: rapidapi, readability)", cfg.Summarizer.Provider)
	}
	for name, raw := range map[string]string{
		"summarizer.base_url": cfg.Summarizer.BaseURL,
		"translator.base_url": cfg.Translator.BaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: %s must be an http(s) URL, got %q", name, raw)
		}
	}
	switch cfg.Translator.Detector {
	case "remote", "lingua":
	default:
		return fmt.Errorf("config: unsupported translator detector %q (supported: remote, lingua)", cfg.Translator.Detector)
	}
	switch cfg.History.Driver {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("config: unsupported history driver %q (supported: sqlite, file, memory)", cfg.History.Driver)
	}
	if cfg.Summarizer.Length < 0 || cfg.Summarizer.MaxParagraphs < 0 {
		return fmt.Errorf("config: summarizer.length and summarizer.max_paragraphs must not be negative")
	}
	for key, raw := range map[string]string{
		"summarizer.timeout":   cfg.Summarizer.Timeout,
		"summarizer.cache_ttl": cfg.Summarizer.CacheTTL,
		"translator.timeout":   cfg.Translator.Timeout,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", key, raw, err)
		}
	}
	return nil
}

// LoadConfig reads the config file, expands environment variables, applies
// defaults and validates the result. A missing file yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return cfg, validate(cfg)
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
