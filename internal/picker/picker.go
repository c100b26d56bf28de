// Package picker chooses a random word-of-the-day entry from the monthly
// archive pages of a wiki.
//
// A Picker samples a calendar day, fetches the archive page for a recent
// year and that day's month, and takes the entry listed for that day. Tries
// that fail (fetch errors, missing entries, words with punctuation) are
// retried up to a fixed bound; running out of tries is not an error.
package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/chriscorrea/wikiword/internal/wiki"
	"github.com/dlclark/regexp2"
)

const (
	// DefaultMaxTries is the number of archive pages tried by Pick.
	DefaultMaxTries = 5

	// DefaultArchiveTitle formats an archive page title from (year, month name).
	DefaultArchiveTitle = "Wiktionary:Word of the day/Archive/%[1]d/%[2]s"

	// DefaultDayTitle formats a single day's page title from (month name, day).
	DefaultDayTitle = "Wiktionary:Word of the day/%[1]s %[2]d"

	// DefaultEntryPattern matches one dated entry; group 1 is the word,
	// group 2 the part of speech and group 3 the definition.
	DefaultEntryPattern = `(?s)\{\{wotd\|(.+?)\|(.+?)\|([^#\|]+).*?\}\}`
)

const (
	// day-of-year is drawn from [1, sampledDays]; the last day of the year
	// (and leap days past it) are never picked
	sampledDays = 364

	// years back from the current year, drawn from [0, yearsBack)
	yearsBack = 4
)

// ErrNoEntry is returned by Today when the page holds no entry.
var ErrNoEntry = errors.New("no entry found")

// invalidWord flags special articles and templates, which usually carry ":"
// or other punctuation
var invalidWord = regexp2.MustCompile(`[^A-Za-z0-9 ]`, regexp2.None)

// Fetcher returns the raw wiki text of the page with the given title.
type Fetcher interface {
	PageContent(ctx context.Context, title string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, title string) (string, error)

// PageContent calls f(ctx, title).
func (f FetcherFunc) PageContent(ctx context.Context, title string) (string, error) {
	return f(ctx, title)
}

// Entry is a single word-of-the-day entry.
type Entry struct {
	Word         string
	PartOfSpeech string
	Definition   string // raw wiki markup
}

// Attempt describes one try of Pick, reported before the page is fetched.
type Attempt struct {
	Try      int // 1-indexed
	MaxTries int
	Title    string
}

// Picker picks random entries from archive pages. It holds no mutable
// state, so one Picker may serve concurrent calls as long as its Fetcher
// and random source allow it (the defaults do).
type Picker struct {
	fetcher      Fetcher
	monthNames   []string
	maxTries     int
	archiveTitle string
	dayTitle     string
	entryExpr    string
	entryPattern *regexp2.Regexp
	intN         func(n int) int
	now          func() time.Time
	onAttempt    func(Attempt)
}

// Option configures a Picker.
type Option func(*Picker)

// WithMaxTries sets how many archive pages Pick tries before giving up.
func WithMaxTries(n int) Option {
	return func(p *Picker) { p.maxTries = n }
}

// WithArchiveTitle sets the archive title template; it receives the year
// (int) and the month name (string).
func WithArchiveTitle(template string) Option {
	return func(p *Picker) { p.archiveTitle = template }
}

// WithDayTitle sets the single-day title template; it receives the month
// name (string) and the day of month (int).
func WithDayTitle(template string) Option {
	return func(p *Picker) { p.dayTitle = template }
}

// WithEntryPattern sets the dated-entry pattern. Group 1 must capture the word.
func WithEntryPattern(pattern string) Option {
	return func(p *Picker) { p.entryExpr = pattern }
}

// WithIntN replaces the random source. intN(n) must return a value in [0, n).
func WithIntN(intN func(n int) int) Option {
	return func(p *Picker) { p.intN = intN }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Picker) { p.now = now }
}

// WithAttemptHook registers a callback invoked at the start of every try.
func WithAttemptHook(fn func(Attempt)) Option {
	return func(p *Picker) { p.onAttempt = fn }
}

// New creates a Picker that reads pages through fetcher. monthNames must
// hold exactly 12 names, January first.
func New(fetcher Fetcher, monthNames []string, opts ...Option) (*Picker, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if len(monthNames) != 12 {
		return nil, fmt.Errorf("expected 12 month names, got %d", len(monthNames))
	}

	p := &Picker{
		fetcher:      fetcher,
		monthNames:   append([]string(nil), monthNames...),
		maxTries:     DefaultMaxTries,
		archiveTitle: DefaultArchiveTitle,
		dayTitle:     DefaultDayTitle,
		entryExpr:    DefaultEntryPattern,
		intN:         rand.IntN,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.maxTries < 1 {
		return nil, fmt.Errorf("max tries must be positive, got %d", p.maxTries)
	}

	pattern, err := regexp2.Compile(p.entryExpr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile entry pattern: %w", err)
	}
	if len(pattern.GetGroupNumbers()) < 2 {
		return nil, fmt.Errorf("entry pattern %q has no capture group for the word", p.entryExpr)
	}
	p.entryPattern = pattern

	return p, nil
}

// Pick returns a random entry word, or "" when no valid word turned up in
// the allowed number of tries. Fetch failures only end the current try.
// The only error returned is the context's, when it is done between tries.
func (p *Picker) Pick(ctx context.Context) (string, error) {
	for try := 1; try <= p.maxTries; try++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		year, month, day := p.sampleDate()
		title := fmt.Sprintf(p.archiveTitle, year, p.monthNames[month-1])

		if p.onAttempt != nil {
			p.onAttempt(Attempt{Try: try, MaxTries: p.maxTries, Title: title})
		}

		content, err := p.fetcher.PageContent(ctx, title)
		if err != nil {
			slog.Warn("Failed to fetch archive page", "title", title, "try", try, "error", err)
			continue
		}

		m := wiki.NthMatch(p.entryPattern, content, day)
		if m == nil {
			slog.Debug("No entry for day", "title", title, "day", day)
			continue
		}

		word := group(m, 1)
		if !isValidWord(word) {
			slog.Debug("Rejected entry word", "title", title, "word", word)
			continue
		}

		slog.Debug("Picked entry", "title", title, "day", day, "word", word, "try", try)
		return word, nil
	}

	slog.Debug("No valid word found", "tries", p.maxTries)
	return "", nil
}

// Today fetches the current day's page and returns its first entry.
// Unlike Pick it makes a single attempt and reports fetch errors.
func (p *Picker) Today(ctx context.Context) (Entry, error) {
	now := p.now()
	title := fmt.Sprintf(p.dayTitle, p.monthNames[now.Month()-1], now.Day())

	content, err := p.fetcher.PageContent(ctx, title)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to fetch %q: %w", title, err)
	}

	m := wiki.NthMatch(p.entryPattern, content, 1)
	if m == nil {
		return Entry{}, fmt.Errorf("%w on page %q", ErrNoEntry, title)
	}

	return Entry{
		Word:         group(m, 1),
		PartOfSpeech: group(m, 2),
		Definition:   group(m, 3),
	}, nil
}

// sampleDate draws a day of year, maps it to a month and day of month in
// the current year, then moves the year back by up to three years. The day
// of month is kept from the first draw.
func (p *Picker) sampleDate() (year int, month time.Month, day int) {
	doy := sampleDayOfYear(p.intN)

	now := p.now()
	ref := time.Date(now.Year(), time.January, doy, 0, 0, 0, 0, now.Location())

	return now.Year() - p.intN(yearsBack), ref.Month(), ref.Day()
}

// sampleDayOfYear returns a day of year in [1, 364]
func sampleDayOfYear(intN func(n int) int) int {
	return intN(sampledDays) + 1
}

func isValidWord(word string) bool {
	if word == "" {
		return false
	}
	found, err := invalidWord.MatchString(word)
	return err == nil && !found
}

// group returns capture group n of m, or "" when the pattern has no such group
func group(m *regexp2.Match, n int) string {
	g := m.GroupByNumber(n)
	if g == nil {
		return ""
	}
	return g.String()
}
