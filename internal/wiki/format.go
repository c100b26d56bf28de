package wiki

import (
	"log/slog"
	"strings"
)

// Format converts wiki markup into an HTML fragment by applying every
// formatting rule in order. The fragment is meant to be embedded in a host
// document; it carries no <html> or <body> wrapper.
//
// Header lines render as "</ol><h2>TITLE</h2><ol>", which leaves a stray
// closing tag at the start and an open list at the end. Callers embed each
// result inside a list context that absorbs both.
//
// Returns false when the input is empty or nothing but whitespace remains
// after formatting. Malformed markup never fails; it is left as text or
// stripped.
func Format(wikiText string) (string, bool) {
	if wikiText == "" {
		return "", false
	}

	// line-anchored rules expect bare "\n" line ends
	wikiText = strings.ReplaceAll(wikiText, "\r\n", "\n")

	for i, rule := range formatRules() {
		formatted, err := rule.Apply(wikiText)
		if err != nil {
			// keep the previous text rather than failing the whole document
			slog.Debug("Format rule skipped", "index", i, "rule", rule.String(), "error", err)
			continue
		}
		wikiText = formatted
	}

	if strings.TrimSpace(wikiText) == "" {
		return "", false
	}

	slog.Debug("Wiki text formatted", "htmlLength", len(wikiText))
	return StyleSheet + wikiText, true
}
