package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/parser/cfdi"
	"github.com/rezonia/cfdi-reader/internal/processor"
)

var outputFile string

var readCmd = &cobra.Command{
	Use:   "read [files...]",
	Short: "Read invoice files",
	Long: `Read one or more CFDI 4.0 invoices and print their summaries.

Arguments may be files, directories (searched recursively for .xml files)
or glob patterns. Files that fail are reported with the stage and kind of
error; the others are still read.

Examples:
  cfdi-reader read factura.xml
  cfdi-reader read facturas/ -f table
  cfdi-reader read "2024/*.xml" -f csv -o resumen.csv
  cfdi-reader read facturas/ -f yaml --concurrency 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	readCmd.Flags().StringP("format", "f", "json", "Output format (json, yaml, table, csv)")
	readCmd.Flags().Int("concurrency", processor.DefaultConcurrency, "Number of files read at once")
}

func runRead(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to read")
	}

	printVerbose("Found %d files to read\n", len(files))

	results := extractFiles(cmd, files)
	for _, r := range results {
		if r.Error != "" {
			printVerbose("  %s: %s\n", r.File, r.Error)
		}
	}

	return outputResults(results)
}

// extractFiles reads files concurrently and converts each outcome to a ReadResult
func extractFiles(cmd *cobra.Command, files []string) []*ReadResult {
	pipeline := processor.NewPipeline(
		processor.WithLogger(logger),
		processor.WithConcurrency(cfg.Read.Concurrency),
	)

	batch := pipeline.ExtractBatch(cmd.Context(), files)

	results := make([]*ReadResult, 0, len(batch))
	for _, b := range batch {
		results = append(results, newReadResult(b))
	}
	return results
}

func newReadResult(b *processor.Result) *ReadResult {
	result := &ReadResult{File: b.Path}
	if b.Error != nil {
		result.Error = b.Error.Error()
		result.Stage = string(model.StageOf(b.Error))
		result.Kind = model.Kind(b.Error)
		return result
	}

	total := b.Summary.GrandTotal()
	result.Summary = b.Summary
	result.GrandTotal = &total
	return result
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil {
			if info.IsDir() {
				found, err := walkInvoices(arg)
				if err != nil {
					return nil, err
				}
				files = append(files, found...)
			} else {
				// named explicitly: the loader reports anything it cannot read
				files = append(files, arg)
			}
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("file not found: %s", arg)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() && isInvoiceFile(match) {
				files = append(files, match)
			}
		}
	}

	return files, nil
}

// walkInvoices returns every .xml file below dir in lexical order
func walkInvoices(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isInvoiceFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isInvoiceFile(path string) bool {
	return strings.HasSuffix(path, cfdi.FileExtension)
}

func outputResults(results []*ReadResult) error {
	var writer io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	return writeResults(writer, cfg.Read.Format, results)
}

// ReadResult holds the result of reading a single file
type ReadResult struct {
	File       string                `json:"file" yaml:"file"`
	Summary    *model.InvoiceSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	GrandTotal *decimal.Decimal      `json:"grandTotal,omitempty" yaml:"grandTotal,omitempty"`
	Error      string                `json:"error,omitempty" yaml:"error,omitempty"`
	Stage      string                `json:"stage,omitempty" yaml:"stage,omitempty"`
	Kind       string                `json:"kind,omitempty" yaml:"kind,omitempty"`
}
