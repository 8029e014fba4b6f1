package invoicelib

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/rezonia/cfdi-reader/internal/parser/addenda"
	"github.com/rezonia/cfdi-reader/internal/processor"
)

// Reader reads CFDI 4.0 invoices into summaries
type Reader interface {
	// Read extracts the invoice at path
	Read(path string) (*InvoiceSummary, error)

	// ReadFrom extracts an invoice from r; name must end in .xml
	ReadFrom(name string, r io.Reader) (*InvoiceSummary, error)

	// ReadBatch extracts several invoices concurrently
	ReadBatch(ctx context.Context, paths []string) []*BatchResult
}

// BatchResult is the outcome of one document in ReadBatch
type BatchResult = processor.Result

// AddendaParser recovers order and delivery-note identifiers from one
// vendor's addenda block
type AddendaParser = addenda.Parser

// AddendaLocation names the element and attribute holding the addenda text
type AddendaLocation = addenda.Location

// Options configures the reader
type Options struct {
	// Concurrency limits ReadBatch (default: 4)
	Concurrency int

	// AddendaParsers are tried before the built-in 4gfactura parser
	AddendaParsers []AddendaParser

	// Logger receives debug and warning events; nil disables logging
	Logger *zap.Logger
}

// DefaultOptions returns default reader options
func DefaultOptions() Options {
	return Options{
		Concurrency: processor.DefaultConcurrency,
	}
}
