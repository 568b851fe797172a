// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rizzrioo06/careermate/internal/llmjson"
	"github.com/rizzrioo06/careermate/internal/shape"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintExtraction summarizes which strategy parsed the model output and
// what the top-level value looks like.
func (p *Printer) PrintExtraction(ex llmjson.Extraction, rawBytes int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Input:    %d bytes\n", rawBytes))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", ex.Strategy))

	switch v := ex.Value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(fmt.Sprintf("Value:    object with %d keys\n", len(keys)))
		writeList(&sb, keys)
	case []any:
		sb.WriteString(fmt.Sprintf("Value:    array of %d items\n", len(v)))
	default:
		sb.WriteString(fmt.Sprintf("Value:    %T\n", v))
	}

	p.printBox("EXTRACTED JSON", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintShapeReport lists the repairs normalization made, grouped by action.
func (p *Printer) PrintShapeReport(report shape.Report) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:     %s\n", report.Kind))

	if report.Clean() {
		sb.WriteString("No repairs needed")
		p.printBox("SHAPE NORMALIZATION", sb.String())
		return
	}

	sb.WriteString(fmt.Sprintf("Repairs:  %d\n", len(report.Repairs)))
	byAction := make(map[shape.Action][]string)
	for _, r := range report.Repairs {
		byAction[r.Action] = append(byAction[r.Action], r.Path)
	}
	for _, action := range []shape.Action{shape.ActionDefaulted, shape.ActionReplaced, shape.ActionCoerced} {
		paths := byAction[action]
		if len(paths) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s (%d):\n", action, len(paths)))
		writeList(&sb, paths)
	}

	p.printBox("SHAPE NORMALIZATION", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
