package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/cfdi-reader/internal/processor"
	"github.com/rezonia/cfdi-reader/internal/report"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [files...]",
	Short: "Export invoices to an xlsx workbook",
	Long: `Read invoices and write them to a spreadsheet with two sheets:

  Invoices   one row per invoice with its grand total
  LineItems  one row per line item with tax, retention and total

Files that fail to read are reported on stderr and left out.

Examples:
  cfdi-reader export facturas/ -o reporte.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "cfdi-report.xlsx", "Output workbook")
	exportCmd.Flags().Int("concurrency", processor.DefaultConcurrency, "Number of files read at once")
}

func runExport(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to export")
	}

	results := extractFiles(cmd, files)

	entries := make([]report.Entry, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipping %s: %s\n", r.File, r.Error)
			continue
		}
		entries = append(entries, report.Entry{Source: r.File, Summary: r.Summary})
	}

	if err := report.NewExporter(logger).Save(entries, exportOutput); err != nil {
		return err
	}

	logger.Debug("Export finished", zap.Int("exported", len(entries)), zap.Int("failed", failed))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d invoices to %s\n", len(entries), exportOutput)
	return nil
}
