package llmjson

import (
	"errors"
	"fmt"
)

// ErrParseFailure is matched by every *ParseFailure via errors.Is.
var ErrParseFailure = errors.New("llm output is not parseable JSON")

const previewRunes = 200

// ParseFailure reports that no extraction strategy produced valid JSON.
type ParseFailure struct {
	Reason  string
	Preview string // raw text, truncated
	Length  int    // length of the raw text in bytes
}

func newParseFailure(raw, reason string) *ParseFailure {
	preview := raw
	if r := []rune(raw); len(r) > previewRunes {
		preview = string(r[:previewRunes]) + "..."
	}
	return &ParseFailure{
		Reason:  reason,
		Preview: preview,
		Length:  len(raw),
	}
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("failed to parse LLM output (%d bytes): %s: %q", e.Length, e.Reason, e.Preview)
}

// Is reports whether target is ErrParseFailure.
func (e *ParseFailure) Is(target error) bool {
	return target == ErrParseFailure
}
