package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/cfdi-reader/internal/parser/cfdi"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about invoice files",
	Long: `Display information about XML files without extracting them.

Shows:
  - File size and modification time
  - Root element, namespace and version
  - Whether the file is a CFDI 4.0 invoice
  - Number of line items and known addenda blocks

Examples:
  cfdi-reader info factura.xml
  cfdi-reader info facturas/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	out := cmd.OutOrStdout()
	for _, file := range files {
		printFileInfo(out, file)
		fmt.Fprintln(out)
	}

	return nil
}

func printFileInfo(w io.Writer, filePath string) {
	fmt.Fprintf(w, "File: %s\n", filePath)

	stat, err := os.Stat(filePath)
	if err != nil {
		fmt.Fprintf(w, "  Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "  Size: %d bytes\n", stat.Size())
	fmt.Fprintf(w, "  Modified: %s\n", stat.ModTime().Format("2006-01-02 15:04:05"))

	f, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(w, "  Error reading file: %v\n", err)
		return
	}
	defer f.Close()

	info, err := cfdi.Inspect(filePath, f, nil)
	if err != nil {
		fmt.Fprintf(w, "  Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "  Root: %s\n", info.Root)
	if info.Namespace != "" {
		fmt.Fprintf(w, "  Namespace: %s\n", info.Namespace)
	}
	if info.Version != "" {
		fmt.Fprintf(w, "  Version: %s\n", info.Version)
	}
	fmt.Fprintf(w, "  CFDI 4.0: %s\n", yesNo(info.IsCFDI4))
	if !info.IsCFDI4 {
		return
	}

	fmt.Fprintf(w, "  Line items: %d\n", info.ConceptCount)
	if len(info.AddendaVendors) > 0 {
		fmt.Fprintf(w, "  Addenda: %s\n", strings.Join(info.AddendaVendors, ", "))
	} else {
		fmt.Fprintf(w, "  Addenda: none\n")
	}
	if !isInvoiceFile(filePath) {
		fmt.Fprintf(w, "  Warning: file name does not end in %s and will be rejected by read\n", cfdi.FileExtension)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
