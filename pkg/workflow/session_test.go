package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dtnitsch/article-summarizer/models"
	"github.com/dtnitsch/article-summarizer/pkg/fetcher"
	"github.com/dtnitsch/article-summarizer/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSummarizer struct{ mock.Mock }

func (m *mockSummarizer) Summarize(ctx context.Context, articleURL string) (string, error) {
	args := m.Called(ctx, articleURL)
	return args.String(0), args.Error(1)
}

type mockDetector struct{ mock.Mock }

func (m *mockDetector) Detect(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

type mockTranslator struct{ mock.Mock }

func (m *mockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	args := m.Called(ctx, text, source, target)
	return args.String(0), args.Error(1)
}

type summarizeFunc func(ctx context.Context, articleURL string) (string, error)

func (f summarizeFunc) Summarize(ctx context.Context, articleURL string) (string, error) {
	return f(ctx, articleURL)
}

type brokenStore struct {
	loadErr error
	saveErr error
}

func (b *brokenStore) Load(ctx context.Context) ([]models.Article, error) {
	return []models.Article{}, b.loadErr
}

func (b *brokenStore) SaveAll(ctx context.Context, articles []models.Article) error {
	return b.saveErr
}

type fixture struct {
	summarizer *mockSummarizer
	detector   *mockDetector
	translator *mockTranslator
	store      *history.MemoryStore
}

func newFixture(t *testing.T, existing ...models.Article) *fixture {
	t.Helper()
	store := history.NewMemoryStore()
	if len(existing) > 0 {
		require.NoError(t, store.SaveAll(context.Background(), existing))
	}
	return &fixture{
		summarizer: &mockSummarizer{},
		detector:   &mockDetector{},
		translator: &mockTranslator{},
		store:      store,
	}
}

func (f *fixture) open(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s, err := Open(context.Background(), Deps{
		Summarizer: f.summarizer,
		Detector:   f.detector,
		Translator: f.translator,
		Store:      f.store,
	}, opts)
	require.NoError(t, err)
	return s
}

func (f *fixture) stored(t *testing.T) []models.Article {
	t.Helper()
	articles, err := f.store.Load(context.Background())
	require.NoError(t, err)
	return articles
}

var earlier = models.Article{URL: "https://example.com/old", Summary: "Old", TranslatedSummary: "Viejo"}

func TestSubmit_TranslatesAndRecords(t *testing.T) {
	f := newFixture(t)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("Para1\n\nPara2", nil)
	f.detector.On("Detect", mock.Anything, "Para1<br /><br />Para2").Return("en", nil)
	f.translator.On("Translate", mock.Anything, "Para1<br /><br />Para2", "en", "es").Return("TraA", nil)

	s := f.open(t, Options{})
	state, err := s.Submit(context.Background(), "https://example.com/a")
	require.NoError(t, err)

	want := models.Article{
		URL:               "https://example.com/a",
		Summary:           "Para1<br /><br />Para2",
		TranslatedSummary: "TraA",
	}
	assert.Equal(t, want, state.Current)
	assert.Empty(t, state.Error)
	assert.False(t, state.InFlight)
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Equal(t, "en", state.DetectedLanguage)
	assert.Equal(t, []models.Article{want}, state.History)
	assert.Equal(t, []models.Article{want}, f.stored(t))

	f.summarizer.AssertExpectations(t)
	f.detector.AssertExpectations(t)
	f.translator.AssertExpectations(t)
}

func TestSubmit_SameLanguageSkipsTranslation(t *testing.T) {
	tests := []struct {
		name     string
		detected string
	}{
		{name: "exact code", detected: "es"},
		{name: "regional tag", detected: "es-419"},
		{name: "upper case", detected: "ES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, earlier)
			f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("Hola\n\nMundo", nil)
			f.detector.On("Detect", mock.Anything, "Hola<br /><br />Mundo").Return(tt.detected, nil)

			s := f.open(t, Options{})
			state, err := s.Submit(context.Background(), "https://example.com/a")
			require.NoError(t, err)

			assert.Equal(t, "Hola<br /><br />Mundo", state.Current.Summary)
			assert.Empty(t, state.Current.TranslatedSummary)
			assert.Empty(t, state.Error)
			assert.False(t, state.InFlight)
			assert.Equal(t, []models.Article{earlier}, state.History)
			assert.Equal(t, []models.Article{earlier}, f.stored(t))
			f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_RecordUntranslated(t *testing.T) {
	f := newFixture(t, earlier)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/es").Return("Hola", nil)
	f.detector.On("Detect", mock.Anything, "Hola").Return("es", nil)

	s := f.open(t, Options{RecordUntranslated: true})
	state, err := s.Submit(context.Background(), "https://example.com/es")
	require.NoError(t, err)

	want := []models.Article{{URL: "https://example.com/es", Summary: "Hola"}, earlier}
	assert.Equal(t, want, state.History)
	assert.Equal(t, want, f.stored(t))
	f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_SummarizationFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "remote error payload",
			err:     &fetcher.RemoteError{Service: "summarizer", StatusCode: 400, Message: "The provided URL is not an article"},
			wantMsg: "The provided URL is not an article",
		},
		{
			name:    "network error",
			err:     errors.New("dial tcp: connection refused"),
			wantMsg: "dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, earlier)
			f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("", tt.err)

			s := f.open(t, Options{})
			state, err := s.Submit(context.Background(), "https://example.com/a")
			require.NoError(t, err)

			assert.Equal(t, tt.wantMsg, state.Error)
			assert.False(t, state.InFlight)
			assert.Empty(t, state.Current.Summary)
			assert.Equal(t, []models.Article{earlier}, state.History)
			assert.Equal(t, []models.Article{earlier}, f.stored(t))
			f.detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)
			f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_EmptySummaryIsSilent(t *testing.T) {
	f := newFixture(t)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("", nil)

	s := f.open(t, Options{})
	state, err := s.Submit(context.Background(), "https://example.com/a")
	require.NoError(t, err)

	assert.Empty(t, state.Error)
	assert.False(t, state.InFlight)
	assert.Empty(t, state.History)
	f.detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)
}

func TestSubmit_DetectionFailureKeepsSummary(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		err      error
	}{
		{name: "detector error", err: errors.New("401 Unauthorized")},
		{name: "no language", detected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("Text", nil)
			f.detector.On("Detect", mock.Anything, "Text").Return(tt.detected, tt.err)

			s := f.open(t, Options{})
			state, err := s.Submit(context.Background(), "https://example.com/a")
			require.NoError(t, err)

			assert.Equal(t, TranslationErrorMessage, state.Error)
			assert.Equal(t, "Text", state.Current.Summary)
			assert.Empty(t, state.Current.TranslatedSummary)
			assert.False(t, state.InFlight)
			assert.Empty(t, state.History)
			assert.Empty(t, f.stored(t))
		})
	}
}

func TestSubmit_TranslationFailureKeepsSummary(t *testing.T) {
	tests := []struct {
		name       string
		translated string
		err        error
	}{
		{name: "translator error", err: &fetcher.RemoteError{StatusCode: 500, Message: "boom"}},
		{name: "empty translation", translated: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("Text", nil)
			f.detector.On("Detect", mock.Anything, "Text").Return("en", nil)
			f.translator.On("Translate", mock.Anything, "Text", "en", "es").Return(tt.translated, tt.err)

			s := f.open(t, Options{})
			state, err := s.Submit(context.Background(), "https://example.com/a")
			require.NoError(t, err)

			assert.Equal(t, TranslationErrorMessage, state.Error)
			assert.Equal(t, "Text", state.Current.Summary)
			assert.Empty(t, state.Current.TranslatedSummary)
			assert.Empty(t, state.History)
			assert.Empty(t, f.stored(t))
		})
	}
}

func TestSubmit_NewestFirst(t *testing.T) {
	f := newFixture(t)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/1").Return("One", nil)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/2").Return("Two", nil)
	f.detector.On("Detect", mock.Anything, mock.Anything).Return("en", nil)
	f.translator.On("Translate", mock.Anything, "One", "en", "es").Return("Uno", nil)
	f.translator.On("Translate", mock.Anything, "Two", "en", "es").Return("Dos", nil)

	s := f.open(t, Options{})
	_, err := s.Submit(context.Background(), "https://example.com/1")
	require.NoError(t, err)
	state, err := s.Submit(context.Background(), "https://example.com/2")
	require.NoError(t, err)

	want := []models.Article{
		{URL: "https://example.com/2", Summary: "Two", TranslatedSummary: "Dos"},
		{URL: "https://example.com/1", Summary: "One", TranslatedSummary: "Uno"},
	}
	assert.Equal(t, want, state.History)
	assert.Equal(t, want, f.stored(t))
}

func TestSubmit_SameURLTwiceIsNotDeduplicated(t *testing.T) {
	f := newFixture(t)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("Text", nil)
	f.detector.On("Detect", mock.Anything, "Text").Return("en", nil)
	f.translator.On("Translate", mock.Anything, "Text", "en", "es").Return("Texto", nil)

	s := f.open(t, Options{})
	for i := 0; i < 2; i++ {
		_, err := s.Submit(context.Background(), "https://example.com/a")
		require.NoError(t, err)
	}
	assert.Len(t, s.History(), 2)
}

func TestSubmit_ResetsPreviousTranslation(t *testing.T) {
	f := newFixture(t)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/1").Return("One", nil)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/2").Return("Two", nil)
	f.detector.On("Detect", mock.Anything, "One").Return("en", nil)
	f.detector.On("Detect", mock.Anything, "Two").Return("", errors.New("detector down"))
	f.translator.On("Translate", mock.Anything, "One", "en", "es").Return("Uno", nil)

	s := f.open(t, Options{})
	_, err := s.Submit(context.Background(), "https://example.com/1")
	require.NoError(t, err)
	state, err := s.Submit(context.Background(), "https://example.com/2")
	require.NoError(t, err)

	assert.Equal(t, models.Article{URL: "https://example.com/2", Summary: "Two"}, state.Current)
	assert.Equal(t, TranslationErrorMessage, state.Error)
}

func TestSubmit_ClearsPreviousError(t *testing.T) {
	f := newFixture(t)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/bad").Return("", errors.New("nope"))
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/good").Return("Hola", nil)
	f.detector.On("Detect", mock.Anything, "Hola").Return("es", nil)

	s := f.open(t, Options{})
	state, err := s.Submit(context.Background(), "https://example.com/bad")
	require.NoError(t, err)
	require.Equal(t, "nope", state.Error)

	state, err = s.Submit(context.Background(), "https://example.com/good")
	require.NoError(t, err)
	assert.Empty(t, state.Error)
}

func TestSubmit_InvalidURL(t *testing.T) {
	tests := []string{"", "   ", "not a url", "ftp://example.com/file", "https://", "/relative/path"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			f := newFixture(t)
			s := f.open(t, Options{})

			_, err := s.Submit(context.Background(), raw)
			assert.ErrorIs(t, err, ErrInvalidURL)
			f.summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	f := newFixture(t)
	s, err := Open(context.Background(), Deps{
		Summarizer: summarizeFunc(func(ctx context.Context, articleURL string) (string, error) {
			close(started)
			<-release
			return "", nil
		}),
		Detector:   f.detector,
		Translator: f.translator,
		Store:      f.store,
	}, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Submit(context.Background(), "https://example.com/first")
		assert.NoError(t, err)
	}()

	<-started
	assert.True(t, s.Snapshot().InFlight)

	_, err = s.Submit(context.Background(), "https://example.com/second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()
	assert.False(t, s.Snapshot().InFlight)
	assert.Equal(t, "https://example.com/first", s.Snapshot().Current.URL)
}

func TestSubmit_CancelDiscardsEffects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t, earlier)
	s, err := Open(context.Background(), Deps{
		Summarizer: summarizeFunc(func(_ context.Context, articleURL string) (string, error) {
			cancel()
			return "Too late", nil
		}),
		Detector:   f.detector,
		Translator: f.translator,
		Store:      f.store,
	}, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	state, err := s.Submit(ctx, "https://example.com/a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, state.InFlight)
	assert.Empty(t, state.Current.Summary)
	assert.Empty(t, state.Error)
	assert.Equal(t, []models.Article{earlier}, f.stored(t))
	f.detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)
}

func TestSubmit_PersistFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("Text", nil)
	f.detector.On("Detect", mock.Anything, "Text").Return("en", nil)
	f.translator.On("Translate", mock.Anything, "Text", "en", "es").Return("Texto", nil)

	s, err := Open(context.Background(), Deps{
		Summarizer: f.summarizer,
		Detector:   f.detector,
		Translator: f.translator,
		Store:      &brokenStore{saveErr: errors.New("disk full")},
	}, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	state, err := s.Submit(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.Empty(t, state.Error)
	assert.Len(t, state.History, 1)
}

func TestSubmit_ReportsPhases(t *testing.T) {
	f := newFixture(t)
	f.summarizer.On("Summarize", mock.Anything, "https://example.com/a").Return("Text", nil)
	f.detector.On("Detect", mock.Anything, "Text").Return("en", nil)
	f.translator.On("Translate", mock.Anything, "Text", "en", "es").Return("Texto", nil)

	var phases []Phase
	s := f.open(t, Options{OnChange: func(st State) {
		if len(phases) == 0 || phases[len(phases)-1] != st.Phase {
			phases = append(phases, st.Phase)
		}
	}})
	_, err := s.Submit(context.Background(), "https://example.com/a")
	require.NoError(t, err)

	assert.Equal(t, []Phase{PhaseSummarizing, PhaseDetecting, PhaseTranslating, PhaseIdle}, phases)
}

func TestOpen_UnreadableHistoryStartsEmpty(t *testing.T) {
	f := newFixture(t)
	s, err := Open(context.Background(), Deps{
		Summarizer: f.summarizer,
		Detector:   f.detector,
		Translator: f.translator,
		Store:      &brokenStore{loadErr: history.ErrCorrupt},
	}, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	assert.Empty(t, s.History())
	assert.NotNil(t, s.History())
}

func TestOpen_RequiresDeps(t *testing.T) {
	_, err := Open(context.Background(), Deps{}, Options{})
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	second := models.Article{URL: "https://example.com/second", Summary: "Second"}
	f := newFixture(t, earlier, second)
	s := f.open(t, Options{})

	got, err := s.Select(1)
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Equal(t, second, s.Snapshot().Current)

	_, err = s.Select(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.Select(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, second, s.Snapshot().Current)
}

func TestHistoryReturnsCopy(t *testing.T) {
	f := newFixture(t, earlier)
	s := f.open(t, Options{})

	h := s.History()
	h[0].Summary = "mutated"
	assert.Equal(t, earlier, s.History()[0])
}

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"single paragraph", "single paragraph"},
		{"a\nb", "a\nb"},
		{"a\n\nb", "a<br /><br />b"},
		{"a\n\nb\n\nc", "a<br /><br />b<br /><br />c"},
		{"a\n\n\nb", "a<br /><br />\nb"},
		{"a\n\n\n\nb", "a<br /><br /><br /><br />b"},
		{"  keep  spacing\t\n\n", "  keep  spacing\t<br /><br />"},
	}

	for _, tt := range tests {
		if got := FormatSummary(tt.in); got != tt.want {
			t.Errorf("FormatSummary(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
