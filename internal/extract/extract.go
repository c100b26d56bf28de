// Package extract converts rendered definition HTML into terminal output.
// It handles the list-wrapped fragments produced by the wiki formatter and
// turns them into Markdown or plain text.
package extract

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/chriscorrea/wikiword/internal/wiki"
)

// lookupPrefix starts every internal lookup link
var lookupPrefix = wiki.Authority + "://" + wiki.LookupHost + "/"

// wrapFragment closes the formatter's unbalanced list tags by placing the
// fragment inside an outer list, as a host page would.
func wrapFragment(fragment string) string {
	return "<ol>" + fragment + "</ol>"
}

// ToMarkdown converts a formatted HTML fragment to Markdown. The style sheet
// is dropped and internal lookup links are reduced to their display text;
// other links are kept.
func ToMarkdown(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	converter := md.NewConverter("", true, nil)
	converter.Remove("style")

	converter.Use(md.Plugin(func(c *md.Converter) []md.Rule {
		return []md.Rule{
			// lookup links only make sense inside the app
			{
				Filter: []string{"a"},
				Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
					if !strings.HasPrefix(selec.AttrOr("href", ""), lookupPrefix) {
						return nil // default link rule
					}
					return md.String(content)
				},
			},
		}
	}))

	markdown, err := converter.ConvertString(wrapFragment(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return tidy(markdown), nil
}

// ToText converts a formatted HTML fragment to plain text, one block per
// line: headings, list items prefixed with "- " and quotes prefixed with "> ".
func ToText(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(wrapFragment(fragment)))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("style, script").Remove()

	// give each block its own line before flattening to text
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		s.BeforeHtml("\n")
		s.AfterHtml("\n")
	})
	doc.Find("li").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("- ")
		s.AfterHtml("\n")
	})
	doc.Find("blockquote").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("&gt; ")
		s.AfterHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		// collapse runs of whitespace left over from the markup
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// tidy trims the converter output and removes extra blank lines
func tidy(markdown string) string {
	cleaned := strings.TrimSpace(markdown)
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}
	return cleaned
}
