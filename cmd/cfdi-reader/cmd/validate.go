package cmd

import (
	"fmt"
	"io"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/rezonia/cfdi-reader/internal/model"
)

var strictValidation bool

// rfcPattern matches RFCs of legal (12 chars) and natural (13 chars) persons
var rfcPattern = regexp.MustCompile(`^[A-ZÑ&]{3,4}[0-9]{6}[A-Z0-9]{3}$`)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice files",
	Long: `Check that invoices can be read and flag fields that were recovered
with defaults.

A file is INVALID when it cannot be read. Warnings are reported for:
  - Missing folio
  - Missing or malformed receptor RFC, missing receptor name
  - Invoices without line items
  - Line items whose quantity could not be read (reported as 0)

With --strict, warnings also make the file invalid.

Examples:
  cfdi-reader validate factura.xml
  cfdi-reader validate facturas/ --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictValidation, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().StringP("format", "f", "table", "Output format (json, table)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	results := make([]*ValidationResult, 0, len(files))
	allValid := true
	for _, r := range extractFiles(cmd, files) {
		result := validateResult(r, strictValidation)
		results = append(results, result)
		if !result.Valid {
			allValid = false
		}
	}

	out := cmd.OutOrStdout()
	if cfg.Validate.Format == "json" {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		printValidation(out, results)
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateResult(r *ReadResult, strict bool) *ValidationResult {
	result := &ValidationResult{
		File:     r.File,
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	if r.Error != "" {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("%s error: %s", r.Kind, r.Error))
		return result
	}

	result.Warnings = summaryWarnings(r.Summary)
	if strict && len(result.Warnings) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, result.Warnings...)
		result.Warnings = []string{}
	}
	return result
}

func summaryWarnings(s *model.InvoiceSummary) []string {
	warnings := []string{}

	if s.Folio == "" {
		warnings = append(warnings, "missing folio")
	}
	if s.ReceptorTaxID == "" {
		warnings = append(warnings, "missing receptor RFC")
	} else if !rfcPattern.MatchString(s.ReceptorTaxID) {
		warnings = append(warnings, fmt.Sprintf("receptor RFC format may be invalid: %s", s.ReceptorTaxID))
	}
	if s.ReceptorName == "" {
		warnings = append(warnings, "missing receptor name")
	}

	if len(s.LineItems) == 0 {
		warnings = append(warnings, "invoice has no line items")
	}
	for i, item := range s.LineItems {
		if item.Quantity == 0 {
			warnings = append(warnings, fmt.Sprintf("line %d: quantity is 0", i+1))
		}
	}

	return warnings
}

func printValidation(w io.Writer, results []*ValidationResult) {
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s: VALID\n", r.File)
		} else {
			fmt.Fprintf(w, "✗ %s: INVALID\n", r.File)
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warning)
		}
	}
}

// ValidationResult holds the validation outcome of a single file
type ValidationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
