package translator

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeCode reduces a language tag such as "en-US" or "ES" to its
// lowercase base code ("en", "es"). Codes x/text cannot parse are only
// lowercased and trimmed.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// SameLanguage reports whether a and b name the same base language.
func SameLanguage(a, b string) bool {
	return NormalizeCode(a) == NormalizeCode(b)
}
