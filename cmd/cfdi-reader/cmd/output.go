package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	money "github.com/rezonia/cfdi-reader/internal/decimal"
)

var mxPrinter = message.NewPrinter(language.MustParse("es-MX"))

func writeResults(w io.Writer, format string, results []*ReadResult) error {
	switch format {
	case "json":
		return outputJSON(w, results)
	case "yaml":
		return outputYAML(w, results)
	case "table":
		return outputTable(w, results)
	case "csv":
		return outputCSV(w, results)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputJSON(w io.Writer, results []*ReadResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func outputYAML(w io.Writer, results []*ReadResult) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(results); err != nil {
		return err
	}
	return encoder.Close()
}

func outputTable(w io.Writer, results []*ReadResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tFOLIO\tDATE\tRECEPTOR\tRFC\tITEMS\tORDER\tDELIVERY\tTOTAL")
	fmt.Fprintln(tw, "----\t-----\t----\t--------\t---\t-----\t-----\t--------\t-----")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR (%s/%s): %s\t\t\t\t\t\t\t\n", r.File, r.Stage, r.Kind, r.Error)
			continue
		}

		s := r.Summary
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.File,
			s.Folio,
			s.Date,
			s.ReceptorName,
			s.ReceptorTaxID,
			len(s.LineItems),
			strings.Join(s.OrderNumber, ","),
			strings.Join(s.DeliveryNoteNumber, ","),
			formatMXN(*r.GrandTotal),
		)
	}

	return tw.Flush()
}

func outputCSV(w io.Writer, results []*ReadResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"file", "folio", "date", "receptor_name", "receptor_tax_id", "line_items",
		"order_number", "delivery_note_number", "grand_total", "stage", "error",
	}); err != nil {
		return err
	}

	for _, r := range results {
		if r.Error != "" {
			if err := cw.Write([]string{r.File, "", "", "", "", "", "", "", "", r.Stage, r.Error}); err != nil {
				return err
			}
			continue
		}

		s := r.Summary
		if err := cw.Write([]string{
			r.File,
			s.Folio,
			s.Date,
			s.ReceptorName,
			s.ReceptorTaxID,
			strconv.Itoa(len(s.LineItems)),
			strings.Join(s.OrderNumber, " "),
			strings.Join(s.DeliveryNoteNumber, " "),
			r.GrandTotal.String(),
			"",
			"",
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatMXN renders an amount rounded to centavos for display only
func formatMXN(d decimal.Decimal) string {
	amount := currency.MXN.Amount(money.RoundCurrency(d).InexactFloat64())
	return mxPrinter.Sprint(currency.Symbol(amount))
}
