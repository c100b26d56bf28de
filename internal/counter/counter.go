// Package counter measures and limits the size of rendered output.
//
// Three counting methods are available: tokens (tiktoken cl100k_base),
// whitespace-separated words, and Unicode characters. Truncate cuts text
// to a budget in any of them without splitting words.
//
// Usage Example:
//
//	short, err := counter.Truncate(definition, 40, counter.Words)
package counter

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts units of text.
type Counter interface {
	// Count returns the number of units (tokens, words, or characters) in text.
	Count(text string) int

	// Name returns a human-readable name for the method (for logging)
	Name() string
}

// Method selects a counting strategy.
type Method int

const (
	// Tokens uses tiktoken with cl100k_base encoding
	Tokens Method = iota
	// Words counts whitespace-separated words
	Words
	// Characters counts runes, whitespace included
	Characters
)

// String returns the string representation of the counting method.
func (m Method) String() string {
	switch m {
	case Tokens:
		return "tokens"
	case Words:
		return "words"
	case Characters:
		return "characters"
	default:
		return "unknown"
	}
}

// New returns the Counter for method. Only token counting can fail, when
// the encoding cannot be loaded.
func New(method Method) (Counter, error) {
	switch method {
	case Tokens:
		return newTokenCounter()
	case Words:
		return wordCounter{}, nil
	case Characters:
		return charCounter{}, nil
	default:
		return nil, fmt.Errorf("unknown counting method %d", int(method))
	}
}

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func (wordCounter) Name() string { return "words" }

type charCounter struct{}

func (charCounter) Count(text string) int { return utf8.RuneCountInString(text) }

func (charCounter) Name() string { return "characters" }

// tokenCounter wraps the shared cl100k_base encoding
type tokenCounter struct {
	encoding *tiktoken.Tiktoken
}

var (
	encoding     *tiktoken.Tiktoken
	encodingErr  error
	encodingOnce sync.Once
	encodingMu   sync.Mutex // tiktoken's encoder caches are not documented as goroutine-safe
)

func newTokenCounter() (Counter, error) {
	encodingOnce.Do(func() {
		slog.Debug("Loading cl100k_base encoding")
		encoding, encodingErr = tiktoken.GetEncoding("cl100k_base")
	})
	if encodingErr != nil {
		return nil, fmt.Errorf("failed to initialize cl100k_base encoding: %w", encodingErr)
	}
	return tokenCounter{encoding: encoding}, nil
}

func (tc tokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	encodingMu.Lock()
	defer encodingMu.Unlock()
	return len(tc.encoding.Encode(text, nil, nil))
}

func (tokenCounter) Name() string { return "tokens (cl100k_base)" }
