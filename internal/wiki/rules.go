package wiki

import (
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// ruleMatchTimeout bounds a single rule application on pathological input
const ruleMatchTimeout = 5 * time.Second

// FormatRule is one step of the formatting pipeline: a compiled pattern and
// the template that replaces every match of it. The template may refer to
// the pattern's own capture groups as $1, $2, ...
type FormatRule struct {
	pattern     *regexp2.Regexp
	replaceWith string
}

// newFormatRule compiles pattern with the given options. The rule table is
// static, so a bad pattern is a programming error and panics.
func newFormatRule(pattern, replaceWith string, opts regexp2.RegexOptions) FormatRule {
	re := regexp2.MustCompile(pattern, opts)
	re.MatchTimeout = ruleMatchTimeout
	return FormatRule{
		pattern:     re,
		replaceWith: replaceWith,
	}
}

// Apply replaces every non-overlapping match in input and returns the result.
func (r FormatRule) Apply(input string) (string, error) {
	return r.pattern.Replace(input, r.replaceWith, -1, -1)
}

// String returns the rule's source pattern (for logging)
func (r FormatRule) String() string {
	return r.pattern.String()
}

var (
	rules     []FormatRule
	rulesOnce sync.Once
)

// formatRules returns the shared, read-only rule table
func formatRules() []FormatRule {
	rulesOnce.Do(func() {
		rules = newFormatRules()
	})
	return rules
}

// newFormatRules builds the ordered rule table. The order is load-bearing:
// headers become list breaks before list items are recognised, links are
// rewritten before bold/italic, and leftover markup is stripped last.
func newFormatRules() []FormatRule {
	link := fmt.Sprintf(`<a href="%s://%s/$1">`, Authority, LookupHost)

	return []FormatRule{
		// headers close the surrounding list and open a new one
		newFormatRule(`^=+(.+?)=+`, "</ol><h2>$1</h2><ol>", regexp2.Multiline),

		// quoted blocks, bullet lists, then ordered lists
		newFormatRule(`^#+\*?:(.+?)$`, "<blockquote>$1</blockquote>", regexp2.Multiline),
		newFormatRule(`^#+:?\*(.+?)$`, "<ul><li>$1</li></ul>", regexp2.Multiline),
		newFormatRule(`^#+(.+?)$`, "<li>$1</li>", regexp2.Multiline),

		// internal links, plain and piped
		newFormatRule(`\[\[([^:\|\]]+)\]\]`, link+"$1</a>", regexp2.None),
		newFormatRule(`\[\[([^:\|\]]+)\|([^\]]+)\]\]`, link+"$2</a>", regexp2.None),

		// bold, then italic guarded against bold quote runs
		newFormatRule(`'''(.+?)'''`, "<b>$1</b>", regexp2.None),
		newFormatRule(`([^'])''([^'].*?[^'])''([^'])`, "$1<i>$2</i>$3", regexp2.None),

		// templates, namespaced links, external links and categories
		newFormatRule(`(\{+.+?\}+|\[\[[^:]+:[^\\|\]]+\]\]|\[http.+?\]|\[\[Category:.+?\]\])`, "",
			regexp2.Multiline|regexp2.Singleline),

		// anything still in brackets becomes its display text
		newFormatRule(`\[\[([^\|\]]+\|)?(.+?)\]\]`, "$2", regexp2.Multiline),
	}
}
