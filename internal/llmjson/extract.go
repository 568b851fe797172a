// Package llmjson extracts JSON values from free-form LLM text output.
//
// Models are asked for JSON only but often wrap the answer in prose or
// markdown code fences. Extract tries, in order, a direct parse, the first
// fenced block, and the span between the first '{' and the last '}'.
package llmjson

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Strategy names the extraction step that produced a value.
type Strategy string

const (
	// StrategyDirect means the whole text parsed as JSON.
	StrategyDirect Strategy = "direct"
	// StrategyFenced means the interior of the first code fence parsed.
	StrategyFenced Strategy = "fenced"
	// StrategyBraces means the first '{' to last '}' span parsed.
	StrategyBraces Strategy = "braces"
	// StrategyRepaired means the text only parsed after jsonrepair.
	StrategyRepaired Strategy = "repaired"
)

// fencePattern matches the first fenced block, lazily up to the first closing fence.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Extraction is a successfully parsed value along with the step that produced it.
type Extraction struct {
	Value    any
	Strategy Strategy
}

// Extractor holds extraction options. The zero value is the strict extractor.
type Extractor struct {
	repair bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRepair enables a final jsonrepair pass after the strict steps fail.
func WithRepair() Option {
	return func(e *Extractor) {
		e.repair = true
	}
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var strict = &Extractor{}

// Extract parses raw using the strict three-step strategy.
func Extract(raw string) (Extraction, error) {
	return strict.Extract(raw)
}

// ExtractObject parses raw and requires a JSON object at the top level.
func ExtractObject(raw string) (map[string]any, error) {
	return strict.ExtractObject(raw)
}

// Extract converts raw model output into a parsed JSON value.
// It returns a *ParseFailure when no strategy yields valid JSON.
func (e *Extractor) Extract(raw string) (Extraction, error) {
	if v, ok := parse(raw); ok {
		return Extraction{Value: v, Strategy: StrategyDirect}, nil
	}

	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		if v, ok := parse(m[1]); ok {
			return Extraction{Value: v, Strategy: StrategyFenced}, nil
		}
	}

	span, hasSpan := braceSpan(raw)
	if hasSpan {
		if v, ok := parse(span); ok {
			return Extraction{Value: v, Strategy: StrategyBraces}, nil
		}
	}

	if e.repair {
		candidate := raw
		if hasSpan {
			candidate = span
		}
		if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
			if v, ok := parse(repaired); ok {
				return Extraction{Value: v, Strategy: StrategyRepaired}, nil
			}
		}
	}

	return Extraction{}, newParseFailure(raw, "no JSON value found")
}

// ExtractObject is Extract restricted to JSON objects.
func (e *Extractor) ExtractObject(raw string) (map[string]any, error) {
	ex, err := e.Extract(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := ex.Value.(map[string]any)
	if !ok {
		return nil, newParseFailure(raw, "top-level value is not an object")
	}
	return obj, nil
}

// braceSpan returns the text from the first '{' through the last '}'.
func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func parse(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}
