package wiki

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text is unchanged",
			input:    "just some plain words.",
			expected: "just some plain words.",
		},
		{
			name:     "header converts before bold",
			input:    "=Verb=\n'''run'''",
			expected: "</ol><h2>Verb</h2><ol>\n<b>run</b>",
		},
		{
			name:     "deeper header",
			input:    "===Noun===",
			expected: "</ol><h2>Noun</h2><ol>",
		},
		{
			name:     "ordered list item",
			input:    "# to move fast",
			expected: "<li> to move fast</li>",
		},
		{
			name:     "quoted block",
			input:    "#: he runs daily",
			expected: "<blockquote> he runs daily</blockquote>",
		},
		{
			name:     "quoted block after bullet marker",
			input:    "#*: a citation",
			expected: "<blockquote> a citation</blockquote>",
		},
		{
			name:     "bullet list item",
			input:    "#* 1850, a quote",
			expected: "<ul><li> 1850, a quote</li></ul>",
		},
		{
			name:     "internal link",
			input:    "[[cat]]",
			expected: `<a href="wiktionary://lookup/cat">cat</a>`,
		},
		{
			name:     "piped internal link",
			input:    "[[cat|feline]]",
			expected: `<a href="wiktionary://lookup/cat">feline</a>`,
		},
		{
			name:     "italic keeps guard characters",
			input:    "a ''quick'' fox",
			expected: "a <i>quick</i> fox",
		},
		{
			name:     "bold inside sentence",
			input:    "the '''word''' here",
			expected: "the <b>word</b> here",
		},
		{
			name:     "templates and namespaced links are stripped in place",
			input:    "see [[Wikipedia:Cat]] and {{m|en|x}} here",
			expected: "see  and  here",
		},
		{
			name:     "multi-line template is stripped",
			input:    "before{{quote\n|text}}after",
			expected: "beforeafter",
		},
		{
			name:     "namespaced piped link falls back to display text",
			input:    "[[w:foo|bar]]",
			expected: "bar",
		},
		{
			name:     "list item with link",
			input:    "# to [[move]] quickly",
			expected: `<li> to <a href="wiktionary://lookup/move">move</a> quickly</li>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := Format(tt.input)
			require.True(t, ok)
			assert.Equal(t, StyleSheet+tt.expected, result)
		})
	}
}

func TestFormatCRLF(t *testing.T) {
	result, ok := Format("# item\r\nnext")
	require.True(t, ok)
	assert.Equal(t, StyleSheet+"<li> item</li>\nnext", result)

	result, ok = Format("==Noun==\r\n#: quoted\r\n")
	require.True(t, ok)
	assert.Equal(t, StyleSheet+"</ol><h2>Noun</h2><ol>\n<blockquote> quoted</blockquote>\n", result)
}

func TestFormatAbsent(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"whitespace only", "   \n\t "},
		{"template", "{{template}}"},
		{"category link", "[[Category:Animals]]"},
		{"external link", "[http://example.com link]"},
		{"only stripped constructs", "{{a}}\n[[Category:B]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := Format(tt.input)
			assert.False(t, ok)
			assert.Empty(t, result)
		})
	}
}

func TestFormatRulesOrder(t *testing.T) {
	table := formatRules()
	require.Len(t, table, 10)

	// headers come first, flattening of leftover links comes last
	assert.Equal(t, `^=+(.+?)=+`, table[0].String())
	assert.Equal(t, `\[\[([^\|\]]+\|)?(.+?)\]\]`, table[len(table)-1].String())

	// the shared table is built once
	again := formatRules()
	assert.Same(t, &table[0], &again[0])
}

func TestFormatRuleApply(t *testing.T) {
	rule := newFormatRule(`(\w+)@(\w+)`, "$2 at $1", 0)

	result, err := rule.Apply("me@home and you@work")
	require.NoError(t, err)
	assert.Equal(t, "home at me and work at you", result)
}

func TestFormatConcurrent(t *testing.T) {
	input := "=Noun=\n# a [[cat|feline]] ''pet''s name"
	want, ok := Format(input)
	require.True(t, ok)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Format(input)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestRender(t *testing.T) {
	doc := "==English==\n===Etymology===\nOld English.\n===Verb===\n'''run'''\n# to move [[fast]]\n===Verb===\nignored\n[[Category:English verbs]]"

	result, ok := Render(doc)
	require.True(t, ok)

	assert.Contains(t, result, "</ol><h2>Verb</h2><ol>")
	assert.Contains(t, result, "<b>run</b>")
	assert.Contains(t, result, `<a href="wiktionary://lookup/fast">fast</a>`)
	assert.NotContains(t, result, "Etymology")
	assert.NotContains(t, result, "ignored")
	assert.NotContains(t, result, "Category")
}

func TestRenderNothingAllowed(t *testing.T) {
	result, ok := Render("==Etymology==\nOld English.")
	assert.False(t, ok)
	assert.Empty(t, result)
}
