package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/chriscorrea/wikiword/internal/picker"
	"github.com/chriscorrea/wikiword/internal/spinner"
)

// maxConcurrentPicks bounds the number of pickers fetching at once
const maxConcurrentPicks = 4

// Random picks count words from the word-of-the-day archive. Picks run
// concurrently; those that come back empty are dropped, and ErrNoWord is
// returned only when every pick came back empty.
func Random(ctx context.Context, cfg Config, count int) ([]string, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	var hook func(picker.Attempt)
	if showProgress(cfg) {
		sp := spinner.New(os.Stderr, "Picking a word...")
		sp.Start(ctx)
		defer sp.Stop()

		hook = func(a picker.Attempt) {
			sp.Updatef("Trying archive page %d of %d: %s", a.Try, a.MaxTries, a.Title)
		}
	}

	p, err := newPicker(cfg.Settings, newClient(cfg.Settings), hook)
	if err != nil {
		return nil, err
	}

	return pickMany(ctx, p, count)
}

// pickMany runs count picks on p and returns the non-empty words in pick order
func pickMany(ctx context.Context, p *picker.Picker, count int) ([]string, error) {
	results := make([]string, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPicks)

	for i := range results {
		g.Go(func() error {
			word, err := p.Pick(gctx)
			if err != nil {
				return err
			}
			results[i] = word
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("random pick canceled: %w", err)
	}

	words := make([]string, 0, count)
	for _, word := range results {
		if word != "" {
			words = append(words, word)
		}
	}

	if len(words) == 0 {
		return nil, ErrNoWord
	}
	if len(words) < count {
		slog.Warn("Some picks found no valid word", "requested", count, "found", len(words))
	}

	return words, nil
}
