package invoicelib

import (
	"context"
	"io"

	"github.com/rezonia/cfdi-reader/internal/parser/addenda"
	"github.com/rezonia/cfdi-reader/internal/parser/cfdi"
	"github.com/rezonia/cfdi-reader/internal/processor"
)

// Processor implements Reader using the internal pipeline
type Processor struct {
	pipeline *processor.Pipeline
	registry *addenda.Registry
}

// NewProcessor creates a new invoice reader with the given options
func NewProcessor(opts Options) *Processor {
	registry := addenda.NewRegistry()
	for _, p := range opts.AddendaParsers {
		registry.RegisterParser(p)
	}

	pipeline := processor.NewPipeline(
		processor.WithLogger(opts.Logger),
		processor.WithAddendaRegistry(registry),
		processor.WithConcurrency(opts.Concurrency),
	)

	return &Processor{
		pipeline: pipeline,
		registry: registry,
	}
}

// NewDefaultProcessor creates a reader with default options
func NewDefaultProcessor() *Processor {
	return NewProcessor(DefaultOptions())
}

// Read extracts the invoice at path
func (p *Processor) Read(path string) (*InvoiceSummary, error) {
	return p.pipeline.Extract(path)
}

// ReadFrom extracts an invoice from r
func (p *Processor) ReadFrom(name string, r io.Reader) (*InvoiceSummary, error) {
	return p.pipeline.ExtractReader(name, r)
}

// ReadBatch extracts several invoices concurrently; results keep input order
func (p *Processor) ReadBatch(ctx context.Context, paths []string) []*BatchResult {
	return p.pipeline.ExtractBatch(ctx, paths)
}

// Inspect describes any XML document without extracting it
func (p *Processor) Inspect(name string, r io.Reader) (*DocumentInfo, error) {
	return cfdi.Inspect(name, r, p.registry)
}

var defaultProcessor = NewDefaultProcessor()

// Read extracts the invoice at path with default options
func Read(path string) (*InvoiceSummary, error) {
	return defaultProcessor.Read(path)
}

// ReadFrom extracts an invoice from r with default options
func ReadFrom(name string, r io.Reader) (*InvoiceSummary, error) {
	return defaultProcessor.ReadFrom(name, r)
}
