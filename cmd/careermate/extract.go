package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rizzrioo06/careermate/internal/llmjson"
	"github.com/rizzrioo06/careermate/internal/observability"
	"github.com/rizzrioo06/careermate/internal/shape"
	"github.com/rizzrioo06/careermate/internal/types"
	"github.com/spf13/cobra"
)

var (
	extractFile    string
	extractKind    string
	extractRepair  bool
	extractVerbose bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract and normalize JSON from raw model output",
	Long: `Read raw model output from --file (or stdin), extract the JSON value the way the
server does, and print it to stdout. With --kind the value is also normalized to the
stored shape of that record kind and the repairs are reported on stderr.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "File containing raw model output (default stdin)")
	extractCmd.Flags().StringVarP(&extractKind, "kind", "k", "", "Record kind to normalize to (guidance, interview, jobs, discovery, stories)")
	extractCmd.Flags().BoolVar(&extractRepair, "repair", false, "Allow jsonrepair as a last resort (also LLM_JSON_REPAIR)")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print extraction and normalization summaries")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	in := cmd.InOrStdin()
	if extractFile != "" {
		f, err := os.Open(extractFile)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	repair := extractRepair
	if !repair {
		if v, err := strconv.ParseBool(os.Getenv("LLM_JSON_REPAIR")); err == nil {
			repair = v
		}
	}

	var printer *observability.Printer
	if extractVerbose {
		printer = observability.NewPrinter(cmd.ErrOrStderr())
	}
	return extract(in, cmd.OutOrStdout(), cmd.ErrOrStderr(), extractKind, repair, printer)
}

// extract reads raw model output from in and writes the indented JSON value
// to out. Diagnostics go to diag, and to printer when it is non-nil.
func extract(in io.Reader, out, diag io.Writer, kind string, repair bool, printer *observability.Printer) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var opts []llmjson.Option
	if repair {
		opts = append(opts, llmjson.WithRepair())
	}
	ex, err := llmjson.NewExtractor(opts...).Extract(string(raw))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(diag, "strategy: %s\n", ex.Strategy)
	if printer != nil {
		printer.PrintExtraction(ex, len(raw))
	}

	value := ex.Value
	if kind != "" {
		recordKind, err := types.ParseRecordKind(kind)
		if err != nil {
			return err
		}
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%s content must be a JSON object", recordKind)
		}
		normalized, report := shape.NormalizeWithReport(recordKind, obj)
		_, _ = fmt.Fprintf(diag, "shape: %s\n", report)
		if printer != nil {
			printer.PrintShapeReport(report)
		}
		value = normalized
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
