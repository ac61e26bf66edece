package aggregate

import (
	"iter"
	"slices"

	"github.com/cognicore/tagspan/pkg/tagspan/token"
)

// EntitySpan is a finalized entity: a type over the byte range [Start, End).
type EntitySpan struct {
	Type  string
	Start int
	End   int
}

// Aggregator turns a per-document stream of tagged tokens into maximal
// contiguous entity spans. Consecutive tokens with identical labels merge;
// any label change closes the open span, even without an outside token
// in between.
type Aggregator struct {
	// Outside is the label meaning "no entity". Empty means token.Outside.
	Outside string
}

// New creates an aggregator with the given outside label
func New(outside string) Aggregator {
	return Aggregator{Outside: outside}
}

func (a Aggregator) outside() string {
	if a.Outside == "" {
		return token.Outside
	}
	return a.Outside
}

// state is either noOpenSpan or openSpan.
type state interface{ isState() }

type noOpenSpan struct{}

type openSpan EntitySpan

func (noOpenSpan) isState() {}
func (openSpan) isState()   {}

// Aggregate walks tokens once and yields spans in increasing Start order.
// Every call starts from fresh state, so the returned sequence can be
// ranged over once per document.
func (a Aggregator) Aggregate(tokens iter.Seq[token.Tagged]) iter.Seq[EntitySpan] {
	outside := a.outside()
	return func(yield func(EntitySpan) bool) {
		var cur state = noOpenSpan{}
		prev := outside

		for tok := range tokens {
			label := tok.Label
			isEntity := label != outside

			if label == prev {
				if open, ok := cur.(openSpan); ok && isEntity {
					open.End = tok.End
					cur = open
				}
				continue
			}

			switch open := cur.(type) {
			case openSpan:
				if !yield(EntitySpan(open)) {
					return
				}
				if isEntity {
					cur = openSpan{Type: label, Start: tok.Start, End: tok.End}
				} else {
					cur = noOpenSpan{}
				}
			case noOpenSpan:
				if isEntity {
					cur = openSpan{Type: label, Start: tok.Start, End: tok.End}
				}
			}
			prev = label
		}

		// A span may run to the end of the document.
		if open, ok := cur.(openSpan); ok {
			yield(EntitySpan(open))
		}
	}
}

// Collect aggregates a token slice into a span slice.
func (a Aggregator) Collect(tokens []token.Tagged) []EntitySpan {
	return slices.Collect(a.Aggregate(token.Seq(tokens)))
}
