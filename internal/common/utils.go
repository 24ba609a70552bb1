package common

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// terseFieldNames maps article field names to their short output form.
var terseFieldNames = map[string]string{
	"index":             "i",
	"url":               "u",
	"summary":           "s",
	"translatedSummary": "t",
}

// [text](url); the URL group is greedy so parentheses inside it survive.
var markdownLinkPattern = regexp.MustCompile(`^\[[^\]]*\]\((https?://\S+)\)$`)

// FilterFields converts v to a map keeping only the comma separated fields.
// In terse mode keys are shortened; callers may name fields either way.
func FilterFields(v interface{}, fieldsStr string, isTerse bool) map[string]interface{} {
	full := structToMap(v)

	include := map[string]bool{}
	for _, field := range strings.Split(fieldsStr, ",") {
		field = strings.TrimSpace(field)
		if field != "" {
			include[field] = true
		}
	}

	out := make(map[string]interface{}, len(full))
	for key, value := range full {
		if len(include) > 0 && !include[key] && !include[terseFieldNames[key]] {
			continue
		}
		if isTerse {
			if short, ok := terseFieldNames[key]; ok {
				key = short
			}
		}
		out[key] = value
	}
	return out
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(obj interface{}) map[string]interface{} {
	data, _ := json.Marshal(obj)
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	return result
}

// wrapperPairs are the quote and bracket pairs a pasted URL is often
// wrapped in.
var wrapperPairs = [][2]string{
	{"<", ">"},
	{"\"", "\""},
	{"'", "'"},
	{"(", ")"},
}

// SanitizeURL undoes common copy-paste wrapping: surrounding whitespace,
// markdown links, and matching quotes or brackets around the whole URL.
// A trailing ")" or "]" is dropped only when it has no opening partner, so
// URLs like .../Go_(programming_language) survive. Nothing else is touched.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	for _, pair := range wrapperPairs {
		if len(cleaned) >= 2 && strings.HasPrefix(cleaned, pair[0]) && strings.HasSuffix(cleaned, pair[1]) {
			cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
		}
	}

	cleaned = trimUnbalanced(cleaned, "(", ")")
	cleaned = trimUnbalanced(cleaned, "[", "]")
	return cleaned
}

func trimUnbalanced(s, open, close string) string {
	for strings.HasSuffix(s, close) && strings.Count(s, close) > strings.Count(s, open) {
		s = strings.TrimSuffix(s, close)
	}
	return s
}

// ValidateURL sanitizes rawURL and checks it is a usable http(s) article URL.
// The returned URL is otherwise exactly what the user gave.
func ValidateURL(rawURL string) (string, error) {
	cleaned := SanitizeURL(rawURL)
	if cleaned == "" {
		return "", fmt.Errorf("URL is empty")
	}

	// Spaces must be pre-encoded as %20
	if strings.ContainsAny(cleaned, " \t\n") {
		return "", fmt.Errorf("URL %q contains spaces", rawURL)
	}

	parsed, err := url.ParseRequestURI(cleaned)
	if err != nil {
		return "", fmt.Errorf("URL %q is malformed: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("URL %q must use http or https", rawURL)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("URL %q has no host", rawURL)
	}
	if strings.ContainsAny(parsed.Hostname(), "{}[]<>\"'") {
		return "", fmt.Errorf("URL %q has invalid characters in its host", rawURL)
	}

	return cleaned, nil
}
