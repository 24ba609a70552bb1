// Package app builds a workflow session from the loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dtnitsch/article-summarizer/models"
	"github.com/dtnitsch/article-summarizer/pkg/caching"
	"github.com/dtnitsch/article-summarizer/pkg/fetcher"
	"github.com/dtnitsch/article-summarizer/pkg/history"
	"github.com/dtnitsch/article-summarizer/pkg/summarizer"
	"github.com/dtnitsch/article-summarizer/pkg/translator"
	"github.com/dtnitsch/article-summarizer/pkg/workflow"
)

// NewLogger returns a JSON logger on w. quiet only lets errors through.
func NewLogger(w io.Writer, level string, quiet bool) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// NewStore opens the history store named by cfg. ephemeral forces an
// in-memory store. The returned close func is never nil.
func NewStore(cfg *models.Config, ephemeral bool) (history.Store, func() error, error) {
	noop := func() error { return nil }

	driver := cfg.History.Driver
	if ephemeral {
		driver = "memory"
	}

	switch driver {
	case "memory":
		return history.NewMemoryStore(), noop, nil
	case "file":
		return history.NewFileStore(cfg.History.Path), noop, nil
	case "sqlite":
		store, err := history.OpenSQLite(cfg.History.Path, cfg.History.Slot)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open history database: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown history driver: %s", driver)
	}
}

// NewSummarizer builds the configured summarizer, wrapped in a cache when
// cache_ttl is set.
func NewSummarizer(cfg *models.Config, logger *slog.Logger) (summarizer.Summarizer, error) {
	f := fetcher.NewFetcher(cfg.SummarizerTimeout())

	var s summarizer.Summarizer
	switch cfg.Summarizer.Provider {
	case "rapidapi":
		s = summarizer.NewRapidAPISummarizer(cfg.Summarizer.BaseURL, cfg.Summarizer.Host, cfg.Summarizer.APIKey, cfg.Summarizer.Length, f)
	case "readability":
		s = summarizer.NewReadabilitySummarizer(f, cfg.Summarizer.MaxParagraphs)
	default:
		return nil, fmt.Errorf("unknown summarizer provider: %s", cfg.Summarizer.Provider)
	}

	if ttl := cfg.CacheTTL(); ttl > 0 {
		cache, err := caching.NewCache(cfg.Summarizer.CacheDir, ttl)
		if err != nil {
			return nil, err
		}
		s = summarizer.NewCachedSummarizer(s, cache, logger)
	}
	return s, nil
}

// NewTranslation returns the detector and translator. Translation always
// goes through Deep Translate; detection may run locally.
func NewTranslation(cfg *models.Config) (translator.Detector, translator.Translator, error) {
	client := translator.NewDeepTranslate(cfg.Translator.BaseURL, cfg.Translator.Host, cfg.Translator.APIKey,
		fetcher.NewFetcher(cfg.TranslatorTimeout()))

	switch cfg.Translator.Detector {
	case "remote":
		return client, client, nil
	case "lingua":
		d, err := translator.NewLinguaDetector(cfg.Translator.DetectorLanguages...)
		if err != nil {
			return nil, nil, err
		}
		return d, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown translator detector: %s", cfg.Translator.Detector)
	}
}

// Build wires every component and opens the session. Call the returned
// close func when done.
func Build(ctx context.Context, cfg *models.Config, logger *slog.Logger, ephemeral bool, onChange func(workflow.State)) (*workflow.Session, func() error, error) {
	store, closeStore, err := NewStore(cfg, ephemeral)
	if err != nil {
		return nil, closeStore, err
	}

	s, err := NewSummarizer(cfg, logger)
	if err != nil {
		_ = closeStore()
		return nil, func() error { return nil }, err
	}

	detector, tr, err := NewTranslation(cfg)
	if err != nil {
		_ = closeStore()
		return nil, func() error { return nil }, err
	}

	session, err := workflow.Open(ctx, workflow.Deps{
		Summarizer: s,
		Detector:   detector,
		Translator: tr,
		Store:      store,
	}, workflow.Options{
		TargetLanguage:     cfg.TargetLanguage,
		RecordUntranslated: cfg.History.RecordUntranslated,
		Logger:             logger,
		OnChange:           onChange,
	})
	if err != nil {
		_ = closeStore()
		return nil, func() error { return nil }, err
	}
	return session, closeStore, nil
}

// ErrReadOnly is returned by the clients of a session opened with
// OpenHistory when something tries to submit through it.
var ErrReadOnly = errors.New("session is read-only")

// readOnly stands in for the remote clients when only the history is needed.
type readOnly struct{}

func (readOnly) Summarize(ctx context.Context, articleURL string) (string, error) {
	return "", ErrReadOnly
}

func (readOnly) Detect(ctx context.Context, text string) (string, error) {
	return "", ErrReadOnly
}

func (readOnly) Translate(ctx context.Context, text, source, target string) (string, error) {
	return "", ErrReadOnly
}

// OpenHistory opens a session over the configured store only. No remote
// client or language model is built, so listing and selecting history stays
// cheap whatever the translator settings are.
func OpenHistory(ctx context.Context, cfg *models.Config, logger *slog.Logger, ephemeral bool) (*workflow.Session, func() error, error) {
	store, closeStore, err := NewStore(cfg, ephemeral)
	if err != nil {
		return nil, closeStore, err
	}

	session, err := workflow.Open(ctx, workflow.Deps{
		Summarizer: readOnly{},
		Detector:   readOnly{},
		Translator: readOnly{},
		Store:      store,
	}, workflow.Options{
		TargetLanguage: cfg.TargetLanguage,
		Logger:         logger,
	})
	if err != nil {
		_ = closeStore()
		return nil, func() error { return nil }, err
	}
	return session, closeStore, nil
}
