package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/compliance-readiness/internal/compliance"
	"alfredoptarigan/compliance-readiness/internal/config"
	"alfredoptarigan/compliance-readiness/internal/services"
)

var version = "1.0.0"

type options struct {
	rulesPath     string
	resourcesPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "assess",
		Short: "Fintech compliance readiness assessor",
		Long: `Assess scores applicant documents against the licensing rule set.

It extracts regulatory signals from the documents, reports the failed
checks with a weighted readiness score, and maps every gap to programs
and experts that can help close it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "Rule set YAML (default: embedded rules)")
	rootCmd.PersistentFlags().StringVar(&opts.resourcesPath, "resources", "", "Resource directory JSON (default: embedded directory)")

	rootCmd.AddCommand(scoreCmd(opts))
	rootCmd.AddCommand(extractCmd(opts))
	rootCmd.AddCommand(accuracyCmd())

	return rootCmd
}

func scoreCmd(opts *options) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "score [files...]",
		Short: "Score documents and print the readiness report",
		Long: `Score documents and print the readiness report as JSON.

Text comes from --text, from the given files (.pdf, .docx, .txt), or
from standard input when neither is set.

Example:
  assess score business-plan.pdf aoa.docx
  assess score --text "Paid-Up Capital: QAR 8,000,000"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			assessor, err := opts.assessor()
			if err != nil {
				return err
			}
			input, err := readInput(cmd, text, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), assessor.Assess(input))
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Document text to score")
	return cmd
}

func extractCmd(opts *options) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Print the extracted profile without scoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			assessor, err := opts.assessor()
			if err != nil {
				return err
			}
			input, err := readInput(cmd, text, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), assessor.Extract(input))
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Document text to extract from")
	return cmd
}

func accuracyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "accuracy",
		Short: "Measure extraction accuracy on the labelled regression corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := compliance.MeasureAccuracy(compliance.NewExtractor(nil), compliance.RegressionCorpus)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printAccuracy(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func (o *options) assessor() (*compliance.Assessor, error) {
	rules, err := config.LoadRuleSet(o.rulesPath)
	if err != nil {
		return nil, err
	}
	directory, err := config.LoadDirectory(o.resourcesPath)
	if err != nil {
		return nil, err
	}
	return compliance.NewAssessor(compliance.NewExtractor(nil), rules, directory), nil
}

func readInput(cmd *cobra.Command, text string, files []string) (string, error) {
	if text != "" && len(files) > 0 {
		return "", fmt.Errorf("use either --text or files, not both")
	}
	if text != "" {
		return text, nil
	}

	if len(files) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}

	sources := make([]services.SourceFile, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		sources = append(sources, services.SourceFile{Name: path, Data: data})
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.NewTextExtractor(4).ExtractAll(ctx, sources)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAccuracy(w io.Writer, report compliance.AccuracyReport) {
	o := report.Overall
	fmt.Fprintln(w, "Extraction accuracy")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Accuracy:  %.1f%% (%d/%d fields)\n", o.Accuracy*100, o.Correct, o.Total)
	fmt.Fprintf(w, "Precision: %.3f\n", o.Precision)
	fmt.Fprintf(w, "Recall:    %.3f\n", o.Recall)
	fmt.Fprintf(w, "F1:        %.3f\n", o.F1)

	fmt.Fprintln(w, "\nPer field")
	fields := make([]string, 0, len(report.PerField))
	for field := range report.PerField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "  %-28s %5.1f%%\n", field, report.PerField[field]*100)
	}

	fmt.Fprintln(w, "\nPer case")
	for _, c := range report.Cases {
		fmt.Fprintf(w, "  %-40s %5.1f%%\n", c.Name, c.Metrics.Accuracy*100)
		for _, f := range c.Fields {
			if f.Correct {
				continue
			}
			fmt.Fprintf(w, "    ✗ %s: got %s, want %s\n", f.Field, f.Predicted, f.Expected)
		}
	}
}
