package tagspan

import (
	"context"
	"errors"
	"fmt"

	"github.com/cognicore/tagspan/internal/logger"
	"github.com/cognicore/tagspan/pkg/tagspan/aggregate"
	"github.com/cognicore/tagspan/pkg/tagspan/annotate"
	"github.com/cognicore/tagspan/pkg/tagspan/batch"
	"github.com/cognicore/tagspan/pkg/tagspan/document"
	"github.com/cognicore/tagspan/pkg/tagspan/format"
	"github.com/cognicore/tagspan/pkg/tagspan/store"
	"github.com/cognicore/tagspan/pkg/tagspan/token"
)

// Pipeline drives one document at a time through aggregation, annotation,
// optional persistence, formatting and the batched writer.
type Pipeline struct {
	agg    aggregate.Aggregator
	sink   *annotate.Sink
	writer *batch.Writer
	store  store.Store
	log    logger.Logger

	processed int
	rejected  int
}

// Options configures a Pipeline. Store and Logger are optional.
type Options struct {
	Aggregator aggregate.Aggregator
	Sink       *annotate.Sink
	Writer     *batch.Writer
	Store      store.Store
	Logger     logger.Logger
}

// Input is one classified document: its text and metadata plus the tagged
// tokens in document order
type Input struct {
	Document document.Document
	Tokens   []token.Tagged
}

// Summary reports what a pipeline has done so far
type Summary struct {
	Processed int
	Rejected  int
	Writer    batch.Stats
}

// New creates a pipeline with the given dependencies
func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Pipeline{
		agg:    opts.Aggregator,
		sink:   opts.Sink,
		writer: opts.Writer,
		store:  opts.Store,
		log:    log,
	}
}

// Process aggregates, annotates, stores, formats and appends one document.
// Invalid input is rejected before anything is written.
func (p *Pipeline) Process(ctx context.Context, in Input) (*document.Document, error) {
	doc := in.Document
	doc.Annotations = nil

	if err := doc.Validate(); err != nil {
		p.rejected++
		return nil, err
	}
	if err := token.Validate(in.Tokens, len(doc.Text)); err != nil {
		p.rejected++
		return nil, fmt.Errorf("document %s: %w", doc.ID, err)
	}

	spans := p.agg.Aggregate(token.Seq(in.Tokens))
	n, err := p.sink.RecordAll(&doc, spans)
	if err != nil {
		p.rejected++
		return nil, err
	}

	block, err := format.Format(&doc)
	if err != nil {
		p.rejected++
		return nil, err
	}

	if p.store != nil {
		if err := p.store.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("store document %s: %w", doc.ID, err)
		}
	}

	if err := p.writer.Append(ctx, []byte(block)); err != nil {
		return nil, fmt.Errorf("write document %s: %w", doc.ID, err)
	}

	p.processed++
	p.log.Debug("Document processed", "id", doc.ID, "tokens", len(in.Tokens), "annotations", n)
	return &doc, nil
}

// Summary returns counters and writer progress
func (p *Pipeline) Summary() Summary {
	return Summary{
		Processed: p.processed,
		Rejected:  p.rejected,
		Writer:    p.writer.Stats(),
	}
}

// Close completes the writer and closes the store. It is safe to call twice.
func (p *Pipeline) Close() error {
	err := p.writer.Complete()
	if p.store != nil {
		if serr := p.store.Close(); serr != nil {
			err = errors.Join(err, serr)
		}
		p.store = nil
	}
	return err
}
