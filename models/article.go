package models

// ParagraphBreak replaces every blank line of a remote summary.
const ParagraphBreak = "<br /><br />"

// Article is one summarize-and-translate result tied to one input URL.
// The JSON shape is the persisted history layout.
type Article struct {
	URL               string `json:"url"`
	Summary           string `json:"summary"`
	TranslatedSummary string `json:"translatedSummary,omitempty"`
}

// Translated reports whether a translation is attached.
func (a Article) Translated() bool {
	return a.TranslatedSummary != ""
}

// DisplayText returns the text a reader should see: the translation when
// there is one, the summary otherwise.
func (a Article) DisplayText() string {
	if a.Translated() {
		return a.TranslatedSummary
	}
	return a.Summary
}
