package wiki

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/dlclark/regexp2"
)

// StubSection is appended to a document before splitting so that the last
// real section is followed by a header and gets picked up.
const StubSection = "\n=Stub section="

// sectionSplit matches a header line and everything up to the next line
// that starts with "=". Child sections are not treated differently.
var sectionSplit = regexp2.MustCompile(`^=+(.+?)=+.+?(?=^=)`, regexp2.Multiline|regexp2.Singleline)

// TitlePattern matches section titles as a whole: "noun" accepts "Noun"
// (given IgnoreCase) but not "Proper noun".
type TitlePattern struct {
	re *regexp2.Regexp
}

// NewTitlePattern anchors pattern to both ends of the title and compiles it.
func NewTitlePattern(pattern string, opts regexp2.RegexOptions) (TitlePattern, error) {
	re, err := regexp2.Compile(`\A(?:`+pattern+`)\z`, opts)
	if err != nil {
		return TitlePattern{}, fmt.Errorf("failed to compile title pattern %q: %w", pattern, err)
	}
	return TitlePattern{re: re}, nil
}

// MustTitlePattern is like NewTitlePattern but panics on a bad pattern.
func MustTitlePattern(pattern string, opts regexp2.RegexOptions) TitlePattern {
	tp, err := NewTitlePattern(pattern, opts)
	if err != nil {
		panic(err)
	}
	return tp
}

// Matches reports whether the whole title matches.
func (tp TitlePattern) Matches(title string) (bool, error) {
	if tp.re == nil {
		return false, nil
	}
	return tp.re.MatchString(title)
}

// AllowedTitles matches the section titles worth showing: the grammatical
// categories. Other sections (etymology, translations, ...) are dropped.
var AllowedTitles = MustTitlePattern(`verb|noun|adjective|pronoun|interjection|adverb`, regexp2.IgnoreCase)

// Section is one titled block of a wiki document.
type Section struct {
	Title string // header label, without the "=" runs
	Text  string // header line plus body, up to the next header
}

// Sections returns a lazy sequence of the sections in document. A section
// is only produced when another header line follows it.
func Sections(document string) iter.Seq[Section] {
	return func(yield func(Section) bool) {
		for m := range Matches(sectionSplit, document) {
			section := Section{
				Title: m.GroupByNumber(1).String(),
				Text:  m.String(),
			}
			if !yield(section) {
				return
			}
		}
	}
}

// FilterSections keeps the first occurrence of every part-of-speech section
// of document, in document order. See FilterSectionsWith.
func FilterSections(document string) string {
	return FilterSectionsWith(document, AllowedTitles, StubSection)
}

// FilterSectionsWith appends stub to document, splits it into sections and
// returns the concatenated text of the sections whose whole title matches allowed
// and has not been seen before. Titles are compared by exact string equality.
//
// An empty document returns "" without any pattern work; a document with no
// allowed sections also returns "".
func FilterSectionsWith(document string, allowed TitlePattern, stub string) string {
	if document == "" {
		return ""
	}

	seen := make(map[string]struct{})
	var builder strings.Builder

	for section := range Sections(document + stub) {
		if _, dup := seen[section.Title]; dup {
			continue
		}

		ok, err := allowed.Matches(section.Title)
		if err != nil {
			slog.Debug("Section title check failed", "title", section.Title, "error", err)
			continue
		}
		if !ok {
			continue
		}

		seen[section.Title] = struct{}{}
		builder.WriteString(section.Text)
	}

	slog.Debug("Sections filtered", "documentLength", len(document), "keptSections", len(seen))
	return builder.String()
}
