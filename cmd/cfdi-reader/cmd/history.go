package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/cfdi-reader/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show stored extractions",
	Long: `List the extractions stored by "serve --db", or show one by id.

Examples:
  cfdi-reader history --db history.db
  cfdi-reader history --db history.db 01912f3c-6a7b-7c0d-8e9f-0a1b2c3d4e5f`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("db", "", "Extraction history database (env: CFDI_READER_SERVER_DB)")
	historyCmd.Flags().StringP("format", "f", "table", "Output format for listings (json, table)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Server.DBPath == "" {
		return fmt.Errorf("no history database configured (use --db)")
	}

	st, err := store.Open(cfg.Server.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		record, err := st.Get(args[0])
		if err != nil {
			return err
		}
		return writeJSON(out, record)
	}

	records, err := st.List()
	if err != nil {
		return err
	}

	if cfg.History.Format == "json" {
		return writeJSON(out, records)
	}
	return writeHistoryTable(out, records)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeHistoryTable(w io.Writer, records []*store.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEXTRACTED\tSOURCE\tFOLIO\tRECEPTOR\tTOTAL")
	fmt.Fprintln(tw, "--\t---------\t------\t-----\t--------\t-----")

	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.ExtractedAt.Format("2006-01-02 15:04:05"),
			r.Source,
			r.Summary.Folio,
			r.Summary.ReceptorName,
			formatMXN(r.Summary.GrandTotal()),
		)
	}

	return tw.Flush()
}
