package annotate

import (
	"crypto/rand"
	"fmt"
	"iter"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/tagspan/pkg/tagspan/aggregate"
	"github.com/cognicore/tagspan/pkg/tagspan/document"
	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
)

// Sink materializes entity spans as annotations on their document
type Sink struct {
	source   string
	registry *Registry
	entropy  *ulid.MonotonicEntropy
}

// Option configures a Sink
type Option func(*Sink)

// WithRegistry replaces the default kind registry
func WithRegistry(r *Registry) Option {
	return func(s *Sink) {
		if r != nil {
			s.registry = r
		}
	}
}

// New creates a sink that stamps source on every annotation
func New(source string, opts ...Option) *Sink {
	s := &Sink{
		source:   source,
		registry: NewRegistry(DefaultKinds...),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the component identifier stamped on annotations
func (s *Sink) Source() string {
	return s.source
}

// Registry returns the kind registry used to classify types
func (s *Sink) Registry() *Registry {
	return s.registry
}

// Record builds the annotation for span and appends it to doc.
func (s *Sink) Record(doc *document.Document, span aggregate.EntitySpan) (document.Annotation, error) {
	if span.Start < 0 || span.End <= span.Start || span.End > len(doc.Text) {
		return document.Annotation{}, fmt.Errorf("span %s [%d,%d) outside document %s: %w",
			span.Type, span.Start, span.End, doc.ID, internalerr.ErrInvalidInput)
	}

	_, known := s.registry.Lookup(span.Type)
	ann := document.Annotation{
		ID:          ulid.MustNew(ulid.Now(), s.entropy).String(),
		DocumentID:  doc.ID,
		Type:        span.Type,
		Start:       span.Start,
		End:         span.End,
		CoveredText: doc.Text[span.Start:span.End],
		Source:      s.source,
		Generic:     !known,
	}
	doc.Annotations = append(doc.Annotations, ann)
	return ann, nil
}

// RecordAll records every span of an aggregated stream and returns how many
// annotations were added. It stops at the first invalid span.
func (s *Sink) RecordAll(doc *document.Document, spans iter.Seq[aggregate.EntitySpan]) (int, error) {
	n := 0
	for span := range spans {
		if _, err := s.Record(doc, span); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
