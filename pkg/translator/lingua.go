package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LinguaDetector detects languages locally with lingua-go, without a
// network round trip.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector restricted to the given ISO 639-1
// codes. With fewer than two codes every supported language is considered.
func NewLinguaDetector(codes ...string) (*LinguaDetector, error) {
	languages := make([]lingua.Language, 0, len(codes))
	for _, code := range codes {
		iso := lingua.GetIsoCode639_1FromValue(strings.ToUpper(NormalizeCode(code)))
		lang := lingua.GetLanguageFromIsoCode639_1(iso)
		if lang == lingua.Unknown {
			return nil, fmt.Errorf("lingua: unsupported language code %q", code)
		}
		languages = append(languages, lang)
	}

	builder := lingua.NewLanguageDetectorBuilder()
	var detector lingua.LanguageDetector
	if len(languages) < 2 {
		detector = builder.FromAllLanguages().Build()
	} else {
		detector = builder.FromLanguages(languages...).Build()
	}
	return &LinguaDetector{detector: detector}, nil
}

func (d *LinguaDetector) Detect(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", ErrNoLanguageDetected
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}
