// Package app contains the core application logic for the wikiword CLI.
// It wires the fetch client, the wiki renderer and the picker together and
// keeps that wiring separate from CLI concerns.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/chriscorrea/wikiword/internal/config"
	"github.com/chriscorrea/wikiword/internal/counter"
	"github.com/chriscorrea/wikiword/internal/extract"
	"github.com/chriscorrea/wikiword/internal/fetch"
	"github.com/chriscorrea/wikiword/internal/picker"
	"github.com/chriscorrea/wikiword/internal/spinner"
	"github.com/chriscorrea/wikiword/internal/wiki"
)

// OutputFormat defines the output format for results
type OutputFormat int

const (
	// HTML is the formatter's own output, style sheet included (default)
	HTML OutputFormat = iota
	// Markdown output format
	Markdown
	// Text is plain text output
	Text
)

// String returns the string representation of the output
func (f OutputFormat) String() string {
	switch f {
	case HTML:
		return "HTML"
	case Markdown:
		return "Markdown"
	case Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// ErrNoDefinition is returned when a page holds no section worth showing.
var ErrNoDefinition = errors.New("no definition found")

// ErrNoWord is returned by Random when no try produced a valid word.
var ErrNoWord = errors.New("no valid word found")

// Config holds all options for one wikiword invocation.
type Config struct {
	Settings       *config.Config // file and environment settings
	OutputFormat   OutputFormat
	MaxUnits       int            // max output units (tokens/words/characters), 0 for no limit
	CountingMethod counter.Method // method for counting output units
	Quiet          bool           // suppress progress display
}

// validate checks option combinations cobra cannot express
func (c Config) validate() error {
	if c.Settings == nil {
		return fmt.Errorf("missing settings")
	}
	if c.MaxUnits > 0 && c.OutputFormat == HTML {
		return fmt.Errorf("output limits require Markdown or text output")
	}
	return nil
}

// Define fetches the page for term, renders its part-of-speech sections and
// returns them in the configured output format. term may be a plain word or
// an internal lookup link.
func Define(ctx context.Context, cfg Config, term string) (string, error) {
	if err := cfg.validate(); err != nil {
		return "", err
	}

	term = strings.TrimSpace(term)
	if linked, ok := wiki.ParseLookupURI(term); ok {
		term = linked
	}
	if term == "" {
		return "", fmt.Errorf("no word provided")
	}

	client := newClient(cfg.Settings)

	content, err := client.ExpandedPageContent(ctx, term)
	if errors.Is(err, fetch.ErrParse) {
		// inflected forms often have no page of their own
		if stem, ok := stemOf(term); ok {
			slog.Debug("Page missing, trying stem", "term", term, "stem", stem)
			if stemContent, stemErr := client.ExpandedPageContent(ctx, stem); stemErr == nil {
				content, err, term = stemContent, nil, stem
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch definition of %q: %w", term, err)
	}

	html, ok := wiki.Render(content)
	if !ok {
		return "", fmt.Errorf("%w for %q", ErrNoDefinition, term)
	}

	slog.Debug("Rendered definition", "term", term, "htmlLength", len(html))
	return present(cfg, html)
}

// Today returns the current word of the day with its definition in the
// configured output format.
func Today(ctx context.Context, cfg Config) (string, error) {
	if err := cfg.validate(); err != nil {
		return "", err
	}

	p, err := newPicker(cfg.Settings, newClient(cfg.Settings), nil)
	if err != nil {
		return "", err
	}

	entry, err := p.Today(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get word of the day: %w", err)
	}

	html, ok := wiki.Format(entryMarkup(entry))
	if !ok {
		return "", fmt.Errorf("%w for %q", ErrNoDefinition, entry.Word)
	}

	return present(cfg, html)
}

// entryMarkup lays an entry out as a one-item wiki page, so it renders
// like any other definition
func entryMarkup(e picker.Entry) string {
	definition := strings.TrimSpace(e.Definition)
	if e.PartOfSpeech != "" {
		definition = fmt.Sprintf("(%s) %s", e.PartOfSpeech, definition)
	}
	return fmt.Sprintf("=%s=\n# %s", e.Word, definition)
}

// stemOf returns the English stem of a single lowercase word, when it differs
func stemOf(term string) (string, bool) {
	if strings.ContainsAny(term, " _") || strings.ToLower(term) != term {
		return "", false
	}
	stem, err := snowball.Stem(term, "english", true)
	if err != nil || stem == "" || stem == term {
		return "", false
	}
	return stem, true
}

// present converts rendered HTML to the output format and applies the size limit
func present(cfg Config, html string) (string, error) {
	var (
		out string
		err error
	)

	switch cfg.OutputFormat {
	case HTML:
		return html, nil
	case Markdown:
		out, err = extract.ToMarkdown(html)
	case Text:
		out, err = extract.ToText(html)
	default:
		return "", fmt.Errorf("unknown output format %d", int(cfg.OutputFormat))
	}
	if err != nil {
		return "", err
	}

	if cfg.MaxUnits > 0 {
		out, err = counter.Truncate(out, cfg.MaxUnits, cfg.CountingMethod)
		if err != nil {
			return "", fmt.Errorf("failed to apply output limit: %w", err)
		}
	}

	return out, nil
}

func newClient(settings *config.Config) *fetch.Client {
	return fetch.NewClient(fetch.Options{
		Endpoint:  settings.API.Endpoint,
		UserAgent: settings.API.UserAgent,
		Timeout:   settings.API.Timeout,
	})
}

// newPicker builds a picker from the random settings; hook may be nil
func newPicker(settings *config.Config, fetcher picker.Fetcher, hook func(picker.Attempt)) (*picker.Picker, error) {
	opts := []picker.Option{
		picker.WithMaxTries(settings.Random.MaxTries),
	}
	if settings.Random.ArchiveTitle != "" {
		opts = append(opts, picker.WithArchiveTitle(settings.Random.ArchiveTitle))
	}
	if settings.Random.DayTitle != "" {
		opts = append(opts, picker.WithDayTitle(settings.Random.DayTitle))
	}
	if settings.Random.EntryPattern != "" {
		opts = append(opts, picker.WithEntryPattern(settings.Random.EntryPattern))
	}
	if hook != nil {
		opts = append(opts, picker.WithAttemptHook(hook))
	}

	p, err := picker.New(fetcher, settings.Random.MonthNames, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create picker: %w", err)
	}
	return p, nil
}

// showProgress reports whether a spinner should be drawn on stderr
func showProgress(cfg Config) bool {
	return !cfg.Quiet && spinner.IsTerminal(os.Stderr)
}
