package token

import (
	"fmt"
	"iter"
	"slices"

	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
)

// Outside is the default label for tokens that belong to no entity.
const Outside = "O"

// Tagged is one classifier-labelled token. Start and End are byte offsets
// into the owning document's text.
type Tagged struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// Seq yields the tokens of a slice in order.
func Seq(tokens []Tagged) iter.Seq[Tagged] {
	return slices.Values(tokens)
}

// Validate checks offsets against a text of length textLen: every token must
// have 0 <= Start <= End <= textLen and tokens must not go backwards.
func Validate(tokens []Tagged, textLen int) error {
	prev := 0
	for i, t := range tokens {
		if t.Start < 0 || t.End < t.Start {
			return fmt.Errorf("token %d [%d,%d): %w", i, t.Start, t.End, internalerr.ErrInvalidInput)
		}
		if t.End > textLen {
			return fmt.Errorf("token %d ends at %d past text length %d: %w", i, t.End, textLen, internalerr.ErrInvalidInput)
		}
		if t.Start < prev {
			return fmt.Errorf("token %d starts at %d before previous token: %w", i, t.Start, internalerr.ErrInvalidInput)
		}
		prev = t.Start
	}
	return nil
}
