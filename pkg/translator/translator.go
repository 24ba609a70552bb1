// Package translator detects the language of a text and translates it.
package translator

import (
	"context"
	"errors"
)

var (
	// ErrNoLanguageDetected is returned when detection yields no language code.
	ErrNoLanguageDetected = errors.New("no language detected")
	// ErrEmptyTranslation is returned when the provider answers with no text.
	ErrEmptyTranslation = errors.New("empty translation")
)

// Detector returns the ISO 639-1 code of the language text is written in.
type Detector interface {
	Detect(ctx context.Context, text string) (string, error)
}

// Translator translates text from source to target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}
