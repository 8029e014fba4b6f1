package processor

import (
	"context"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/cfdi-reader/internal/model"
	"github.com/rezonia/cfdi-reader/internal/parser/addenda"
	"github.com/rezonia/cfdi-reader/internal/parser/cfdi"
)

// DefaultConcurrency is the number of documents ExtractBatch reads at once
const DefaultConcurrency = 4

// Pipeline composes the loader and extractors into one InvoiceSummary.
// It holds no per-document state and is safe for concurrent use.
type Pipeline struct {
	logger      *zap.Logger
	addenda     *addenda.Registry
	concurrency int
}

// Option configures the pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithAddendaRegistry replaces the default vendor addenda parsers
func WithAddendaRegistry(r *addenda.Registry) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.addenda = r
		}
	}
}

// WithConcurrency limits how many documents ExtractBatch reads at once
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewPipeline creates a new pipeline
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:      zap.NewNop(),
		addenda:     addenda.NewRegistry(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract reads the invoice at path
func (p *Pipeline) Extract(path string) (*model.InvoiceSummary, error) {
	doc, err := cfdi.Load(path, cfdi.WithLogger(p.logger))
	if err != nil {
		return nil, model.NewAggregationError(model.StageLoad, path, err)
	}
	return p.summarize(doc)
}

// ExtractReader reads an invoice from r; name is the logical file name and
// must end in .xml
func (p *Pipeline) ExtractReader(name string, r io.Reader) (*model.InvoiceSummary, error) {
	doc, err := cfdi.Decode(name, r, cfdi.WithLogger(p.logger))
	if err != nil {
		return nil, model.NewAggregationError(model.StageLoad, name, err)
	}
	return p.summarize(doc)
}

func (p *Pipeline) summarize(doc *cfdi.Document) (*model.InvoiceSummary, error) {
	general, err := cfdi.ExtractGeneral(doc)
	if err != nil {
		return nil, model.NewAggregationError(model.StageGeneral, doc.Path, err)
	}

	receptor, err := cfdi.ExtractReceptor(doc)
	if err != nil {
		return nil, model.NewAggregationError(model.StageReceptor, doc.Path, err)
	}

	concepts, err := cfdi.ExtractConcepts(doc)
	if err != nil {
		return nil, model.NewAggregationError(model.StageConcepts, doc.Path, err)
	}

	info := cfdi.ExtractAddenda(doc, p.addenda)

	p.logger.Debug("Invoice extracted",
		zap.String("path", doc.Path),
		zap.String("folio", general.Folio),
		zap.Int("line_items", len(concepts)),
		zap.Bool("addenda", info != nil))

	return model.NewInvoiceSummary(general, receptor, concepts, info), nil
}

// Result is the outcome of reading one document in a batch
type Result struct {
	Path    string
	Summary *model.InvoiceSummary
	Error   error
}

// ExtractBatch reads every path, at most Concurrency at a time. Results keep
// the input order; one document failing does not affect the others. Paths not
// started before ctx is done get ctx's error.
func (p *Pipeline) ExtractBatch(ctx context.Context, paths []string) []*Result {
	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, path := range paths {
		results[i] = &Result{Path: path}
		if err := ctx.Err(); err != nil {
			results[i].Error = err
			continue
		}

		res := results[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				res.Error = err
				return nil
			}
			res.Summary, res.Error = p.Extract(res.Path)
			if res.Error != nil {
				p.logger.Warn("Invoice extraction failed", zap.String("path", res.Path), zap.Error(res.Error))
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Concurrency returns the batch concurrency limit
func (p *Pipeline) Concurrency() int {
	return p.concurrency
}
