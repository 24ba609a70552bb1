// Package workflow drives one "summarize a URL" operation: summarize, detect
// the summary's language, translate it when needed and record the result in
// the session history.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/dtnitsch/article-summarizer/models"
	"github.com/dtnitsch/article-summarizer/pkg/fetcher"
	"github.com/dtnitsch/article-summarizer/pkg/history"
	"github.com/dtnitsch/article-summarizer/pkg/summarizer"
	"github.com/dtnitsch/article-summarizer/pkg/translator"
	"golang.org/x/sync/semaphore"
)

const (
	// TranslationErrorMessage is shown for any detection or translation failure.
	TranslationErrorMessage = "Error al traducir el resumen."
	// SummaryErrorMessage is shown when a summarization failure carries no text.
	SummaryErrorMessage = "Ocurrió un error al procesar el resumen."
)

var (
	ErrBusy            = errors.New("a submission is already in flight")
	ErrInvalidURL      = errors.New("invalid article URL")
	ErrIndexOutOfRange = errors.New("history index out of range")
)

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseSummarizing Phase = "summarizing"
	PhaseDetecting   Phase = "detecting"
	PhaseTranslating Phase = "translating"
)

// State is what the presentation layer renders.
type State struct {
	Current          models.Article
	History          []models.Article
	Error            string
	InFlight         bool
	Phase            Phase
	DetectedLanguage string
}

// Deps are the remote clients and the store a Session works with.
type Deps struct {
	Summarizer summarizer.Summarizer
	Detector   translator.Detector
	Translator translator.Translator
	Store      history.Store
}

type Options struct {
	// TargetLanguage defaults to "es".
	TargetLanguage string
	// RecordUntranslated also records lookups whose summary is already in
	// the target language.
	RecordUntranslated bool
	Logger             *slog.Logger
	// OnChange receives a copy of the state after every transition.
	OnChange func(State)
}

// Session owns the current article and the history for one run of the
// client. Submissions are single-flight.
type Session struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
	sem    *semaphore.Weighted

	mu    sync.Mutex
	state State
}

// Open loads the history once and returns a ready Session. History that
// cannot be read is logged and treated as empty.
func Open(ctx context.Context, deps Deps, opts Options) (*Session, error) {
	if deps.Summarizer == nil || deps.Detector == nil || deps.Translator == nil || deps.Store == nil {
		return nil, fmt.Errorf("workflow: summarizer, detector, translator and store are required")
	}
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = "es"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	articles, err := deps.Store.Load(ctx)
	if err != nil {
		logger.Warn("failed to load history, starting empty", "error", err)
		articles = nil
	}
	if articles == nil {
		articles = []models.Article{}
	}
	logger.Debug("history loaded", "count", len(articles))

	return &Session{
		deps:   deps,
		opts:   opts,
		logger: logger,
		sem:    semaphore.NewWeighted(1),
		state: State{
			History: articles,
			Phase:   PhaseIdle,
		},
	}, nil
}

// FormatSummary turns every blank line of a remote summary into an explicit
// paragraph break. Nothing else is touched.
func FormatSummary(raw string) string {
	return strings.ReplaceAll(raw, "\n\n", models.ParagraphBreak)
}

// Submit runs the whole workflow for articleURL. User-facing failures end up
// in State.Error with a nil error; the returned error is reserved for
// rejected submissions (ErrInvalidURL, ErrBusy) and for a cancelled ctx, in
// which case the remaining effects are discarded.
func (s *Session) Submit(ctx context.Context, articleURL string) (State, error) {
	articleURL = strings.TrimSpace(articleURL)
	if err := validateURL(articleURL); err != nil {
		return s.Snapshot(), err
	}
	if !s.sem.TryAcquire(1) {
		return s.Snapshot(), ErrBusy
	}
	defer s.sem.Release(1)

	logger := s.logger.With("url", articleURL)

	s.update(func(st *State) {
		st.Error = ""
		st.Current = models.Article{URL: articleURL}
		st.DetectedLanguage = ""
		st.InFlight = true
		st.Phase = PhaseSummarizing
	})

	raw, err := s.deps.Summarizer.Summarize(ctx, articleURL)
	if ctx.Err() != nil {
		return s.abandon(ctx, logger)
	}
	if err != nil {
		logger.Error("summarization failed", "error", err)
		msg := userMessage(err)
		return s.finish(func(st *State) { st.Error = msg }), nil
	}
	if raw == "" {
		logger.Info("summarizer returned no summary")
		return s.finish(nil), nil
	}

	summary := FormatSummary(raw)
	s.update(func(st *State) {
		st.Current.Summary = summary
		st.Phase = PhaseDetecting
	})

	detected, err := s.deps.Detector.Detect(ctx, summary)
	if ctx.Err() != nil {
		return s.abandon(ctx, logger)
	}
	if err == nil && strings.TrimSpace(detected) == "" {
		err = translator.ErrNoLanguageDetected
	}
	if err != nil {
		logger.Error("language detection failed", "error", err)
		return s.finish(func(st *State) { st.Error = TranslationErrorMessage }), nil
	}
	logger.Info("language detected", "language", detected)

	if translator.SameLanguage(detected, s.opts.TargetLanguage) {
		s.update(func(st *State) { st.DetectedLanguage = detected })
		if s.opts.RecordUntranslated {
			s.record(ctx, logger)
		}
		return s.finish(nil), nil
	}

	s.update(func(st *State) {
		st.DetectedLanguage = detected
		st.Phase = PhaseTranslating
	})

	translated, err := s.deps.Translator.Translate(ctx, summary, detected, s.opts.TargetLanguage)
	if ctx.Err() != nil {
		return s.abandon(ctx, logger)
	}
	if err == nil && translated == "" {
		err = translator.ErrEmptyTranslation
	}
	if err != nil {
		logger.Error("translation failed", "error", err, "source", detected, "target", s.opts.TargetLanguage)
		return s.finish(func(st *State) { st.Error = TranslationErrorMessage }), nil
	}

	s.update(func(st *State) { st.Current.TranslatedSummary = translated })
	s.record(ctx, logger)
	return s.finish(nil), nil
}

// record prepends the current article to the history and persists the whole
// collection. A failed write is logged and otherwise ignored.
func (s *Session) record(ctx context.Context, logger *slog.Logger) {
	var snapshot []models.Article
	s.update(func(st *State) {
		updated := make([]models.Article, 0, len(st.History)+1)
		updated = append(updated, st.Current)
		updated = append(updated, st.History...)
		st.History = updated
		snapshot = append([]models.Article(nil), updated...)
	})

	if err := s.deps.Store.SaveAll(ctx, snapshot); err != nil {
		logger.Error("failed to persist history", "error", err, "count", len(snapshot))
		return
	}
	logger.Debug("history persisted", "count", len(snapshot))
}

// finish applies fn and leaves the in-flight state.
func (s *Session) finish(fn func(st *State)) State {
	return s.update(func(st *State) {
		if fn != nil {
			fn(st)
		}
		st.InFlight = false
		st.Phase = PhaseIdle
	})
}

func (s *Session) abandon(ctx context.Context, logger *slog.Logger) (State, error) {
	logger.Warn("submission abandoned", "error", ctx.Err())
	return s.finish(nil), ctx.Err()
}

// Select makes the history entry at index the current article.
func (s *Session) Select(index int) (models.Article, error) {
	var (
		selected models.Article
		err      error
	)
	s.update(func(st *State) {
		if index < 0 || index >= len(st.History) {
			err = fmt.Errorf("%w: %d (history has %d entries)", ErrIndexOutOfRange, index, len(st.History))
			return
		}
		selected = st.History[index]
		st.Current = selected
		st.Error = ""
	})
	return selected, err
}

// History returns a copy of the session history, newest first.
func (s *Session) History() []models.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Article{}, s.state.History...)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

func (s *Session) copyState() State {
	st := s.state
	st.History = append([]models.Article{}, s.state.History...)
	return st
}

func (s *Session) update(fn func(st *State)) State {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.copyState()
	s.mu.Unlock()

	if s.opts.OnChange != nil {
		s.opts.OnChange(snapshot)
	}
	return snapshot
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

func userMessage(err error) string {
	var remote *fetcher.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return SummaryErrorMessage
}
