package counter

import (
	"log/slog"
	"strings"
	"unicode"
)

// Truncate returns the longest prefix of text, cut at a word boundary, that
// fits in maxUnits as measured by method. Line breaks inside the kept prefix
// are preserved and trailing whitespace is trimmed. maxUnits <= 0 means no limit.
func Truncate(text string, maxUnits int, method Method) (string, error) {
	if maxUnits <= 0 || text == "" {
		return text, nil
	}

	c, err := New(method)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	used := 0

	for _, piece := range splitKeepingSpace(text) {
		units := c.Count(piece)
		if used+units > maxUnits {
			break
		}
		result.WriteString(piece)
		used += units
	}

	slog.Debug("Output truncated", "method", c.Name(), "maxUnits", maxUnits, "usedUnits", used)
	return strings.TrimRightFunc(result.String(), unicode.IsSpace), nil
}

// splitKeepingSpace splits text into pieces that each hold leading
// whitespace followed by one word, so concatenating them restores text
func splitKeepingSpace(text string) []string {
	var pieces []string
	start := 0
	inWord := false

	for i, r := range text {
		space := unicode.IsSpace(r)
		if space && inWord {
			pieces = append(pieces, text[start:i])
			start = i
		}
		inWord = !space
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}

	return pieces
}
