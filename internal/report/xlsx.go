package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rezonia/cfdi-reader/internal/model"
)

// Sheet names
const (
	InvoicesSheet  = "Invoices"
	LineItemsSheet = "LineItems"
)

var (
	invoiceHeader = []any{
		"Source", "Folio", "Date", "Receptor", "RFC", "Line Items",
		"Order Number", "Delivery Note", "Grand Total",
	}
	lineItemHeader = []any{
		"Source", "Folio", "Line", "Code", "Description", "Quantity",
		"Unit Value", "Subtotal", "Tax", "Retention", "Total",
	}
)

// Entry is one extracted invoice and the file it came from
type Entry struct {
	Source  string
	Summary *model.InvoiceSummary
}

// Exporter writes invoice summaries to an xlsx workbook with one sheet of
// invoices and one sheet of line items
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new exporter
func NewExporter(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{logger: logger}
}

// Save writes the workbook to outputPath
func (e *Exporter) Save(entries []Entry, outputPath string) error {
	file, err := e.build(entries)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Report written",
		zap.String("output_path", outputPath),
		zap.Int("invoice_count", len(entries)))
	return nil
}

// Write writes the workbook to w
func (e *Exporter) Write(entries []Entry, w io.Writer) error {
	file, err := e.build(entries)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *Exporter) build(entries []Entry) (*excelize.File, error) {
	file := excelize.NewFile()

	if err := file.SetSheetName("Sheet1", InvoicesSheet); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := file.NewSheet(LineItemsSheet); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := e.fillInvoices(file, entries); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to fill invoices: %w", err)
	}
	if err := e.fillLineItems(file, entries); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to fill line items: %w", err)
	}

	return file, nil
}

func (e *Exporter) fillInvoices(file *excelize.File, entries []Entry) error {
	if err := writeHeader(file, InvoicesSheet, invoiceHeader); err != nil {
		return err
	}

	row := 2
	for _, entry := range entries {
		s := entry.Summary
		if s == nil {
			continue
		}

		values := []any{
			entry.Source, s.Folio, s.Date, s.ReceptorName, s.ReceptorTaxID, len(s.LineItems),
			strings.Join(s.OrderNumber, ", "), strings.Join(s.DeliveryNoteNumber, ", "),
		}
		if err := setRow(file, InvoicesSheet, row, values); err != nil {
			return err
		}
		if err := setNumber(file, InvoicesSheet, len(values)+1, row, s.GrandTotal().String()); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (e *Exporter) fillLineItems(file *excelize.File, entries []Entry) error {
	if err := writeHeader(file, LineItemsSheet, lineItemHeader); err != nil {
		return err
	}

	row := 2
	for _, entry := range entries {
		if entry.Summary == nil {
			continue
		}
		for i, item := range entry.Summary.LineItems {
			values := []any{
				entry.Source, entry.Summary.Folio, i + 1, item.Code, item.Description,
				item.Quantity, item.UnitValue,
			}
			if err := setRow(file, LineItemsSheet, row, values); err != nil {
				return err
			}

			// exact decimal text, stored as numbers
			amounts := []string{item.Subtotal.String(), item.Tax.String(), item.Retention.String(), item.Total.String()}
			for j, amount := range amounts {
				if err := setNumber(file, LineItemsSheet, len(values)+j+1, row, amount); err != nil {
					return err
				}
			}
			row++
		}
	}

	e.logger.Debug("Filled line items sheet", zap.Int("rows", row-2))
	return nil
}

func writeHeader(file *excelize.File, sheet string, header []any) error {
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to set header: %w", err)
	}

	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := file.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	return file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(file *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to set row %d: %w", row, err)
	}
	return nil
}

func setNumber(file *excelize.File, sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := file.SetCellDefault(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", cell, err)
	}
	return nil
}
