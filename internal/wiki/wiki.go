// Package wiki turns raw wiki markup into HTML fragments.
//
// The package has two stages that compose into the definition pipeline:
//  1. FilterSections keeps only the part-of-speech sections of a page
//  2. Format rewrites the remaining markup into HTML with an ordered rule table
//
// Usage Example:
//
//	html, ok := wiki.Render(pageContent)
//	if !ok {
//		// nothing worth showing survived filtering and formatting
//	}
//
// All functions are pure and safe for concurrent use; the rule table is
// compiled once and never modified afterwards.
package wiki

import (
	"fmt"
	"iter"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dlclark/regexp2"
)

const (
	// Authority is the URI scheme used for internal lookup links.
	Authority = "wiktionary"

	// LookupHost is the URI host used for internal lookup links.
	LookupHost = "lookup"

	// MimeType describes the output of Format.
	MimeType = "text/html"
)

// StyleSheet is prepended to every non-empty Format result. It keeps headers
// small, tightens list spacing and hides content boxes meant for print.
const StyleSheet = "<style>h2 {font-size:1.2em;font-weight:normal;} " +
	"a {color:#6688cc;} ol {padding-left:1.5em;} blockquote {margin-left:0em;} " +
	".interProject, .noprint {display:none;} " +
	"li, blockquote {margin-top:0.5em;margin-bottom:0.5em;}</style>"

// Render runs the full definition pipeline: section filtering followed by
// formatting. It reports false when nothing is left to show.
func Render(document string) (string, bool) {
	return Format(FilterSections(document))
}

// lookupPrefix starts every internal lookup link
var lookupPrefix = Authority + "://" + LookupHost + "/"

// LookupURI builds the internal link for term, in the same shape the link
// rules produce.
func LookupURI(term string) string {
	return fmt.Sprintf("%s://%s/%s", Authority, LookupHost, term)
}

// ParseLookupURI extracts the lookup term from an internal link.
// Both the scheme and the host must match; anything else is not a lookup.
// The term is everything after the host, unescaped when it holds valid
// escapes and taken verbatim otherwise, so links the formatter writes for
// terms like "100%" or "C#" resolve back to those terms.
func ParseLookupURI(raw string) (string, bool) {
	rest, found := strings.CutPrefix(raw, lookupPrefix)
	if !found {
		return "", false
	}

	term := rest
	if unescaped, err := url.PathUnescape(rest); err == nil {
		term = unescaped
	}
	if term == "" {
		return "", false
	}
	return term, true
}

// Matches returns a lazy sequence over the non-overlapping matches of re in s.
// Each call to the returned sequence restarts the scan from the beginning.
// An engine error (such as a match timeout) ends the sequence early.
func Matches(re *regexp2.Regexp, s string) iter.Seq[*regexp2.Match] {
	return func(yield func(*regexp2.Match) bool) {
		m, err := re.FindStringMatch(s)
		for m != nil && err == nil {
			if !yield(m) {
				return
			}
			m, err = re.FindNextMatch(m)
		}
		if err != nil {
			slog.Debug("Match scan stopped", "pattern", re.String(), "error", err)
		}
	}
}

// NthMatch returns the n-th (1-indexed) match of re in s, or nil when there
// are fewer than n matches.
func NthMatch(re *regexp2.Regexp, s string, n int) *regexp2.Match {
	if n < 1 {
		return nil
	}
	i := 0
	for m := range Matches(re, s) {
		i++
		if i == n {
			return m
		}
	}
	return nil
}
