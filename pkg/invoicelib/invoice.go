// Package invoicelib provides a public API for reading CFDI 4.0 invoices.
//
// This package exposes the summary types, the error taxonomy and a reader
// that turns a CFDI 4.0 XML document into an InvoiceSummary with per-line
// tax, retention and totals computed in exact decimal arithmetic.
//
// Example usage:
//
//	summary, err := invoicelib.Read("factura.xml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(summary.Folio, summary.GrandTotal())
package invoicelib

import (
	money "github.com/rezonia/cfdi-reader/internal/decimal"
	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/parser/cfdi"
)

// Re-export core types for public API
type (
	InvoiceSummary = model.InvoiceSummary
	Concept        = model.Concept
	Receptor       = model.Receptor
	GeneralData    = model.GeneralData
	AddendaInfo    = model.AddendaInfo
	DocumentInfo   = cfdi.Info
)

// Re-export document markers
const (
	Namespace = cfdi.Namespace
	RootTag   = cfdi.RootTag
)

// Fixed line rates
var (
	TaxRate       = money.TaxRate
	RetentionRate = money.RetentionRate
)

// Re-export error types
type (
	FormatError      = model.FormatError
	ParseError       = model.ParseError
	ValidationError  = model.ValidationError
	LookupError      = model.LookupError
	ExtractionError  = model.ExtractionError
	AggregationError = model.AggregationError
	Stage            = model.Stage
)

// Re-export extraction stages
const (
	StageLoad     = model.StageLoad
	StageGeneral  = model.StageGeneral
	StageReceptor = model.StageReceptor
	StageConcepts = model.StageConcepts
)

// Re-export error kinds
const (
	KindFormat      = model.KindFormat
	KindParse       = model.KindParse
	KindValidation  = model.KindValidation
	KindLookup      = model.KindLookup
	KindExtraction  = model.KindExtraction
	KindAggregation = model.KindAggregation
	KindUnknown     = model.KindUnknown
)

// ErrorKind returns the taxonomy name of err, e.g. "parse" or "lookup"
func ErrorKind(err error) string {
	return model.Kind(err)
}
