package document

import (
	"fmt"
	"strings"

	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
)

// Metadata describes where a document came from
type Metadata struct {
	Host  string `json:"host" yaml:"host"`
	Date  string `json:"date" yaml:"date"`
	URI   string `json:"uri" yaml:"uri"`
	Title string `json:"title" yaml:"title"`
}

// Annotation is one entity mention materialized on a document.
// Start and End are byte offsets into the document text.
type Annotation struct {
	ID          string
	DocumentID  string
	Type        string
	Start       int
	End         int
	CoveredText string
	Source      string
	Generic     bool // type is not a registered kind
}

// Document is a text plus the annotations recorded on it, in start order
type Document struct {
	ID          string
	Metadata    Metadata
	Text        string
	Annotations []Annotation
}

// Validate checks the document id and that every annotation fits the text
// and follows the previous one without overlap.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("document id is required: %w", internalerr.ErrInvalidInput)
	}

	prevEnd := 0
	for i, a := range d.Annotations {
		if a.Start < 0 || a.End <= a.Start || a.End > len(d.Text) {
			return fmt.Errorf("document %s annotation %d [%d,%d) out of range: %w",
				d.ID, i, a.Start, a.End, internalerr.ErrInvalidInput)
		}
		if a.Start < prevEnd {
			return fmt.Errorf("document %s annotation %d overlaps previous: %w",
				d.ID, i, internalerr.ErrInvalidInput)
		}
		prevEnd = a.End
	}

	return nil
}

// Reset drops the annotations so the document can be reprocessed.
func (d *Document) Reset() {
	d.Annotations = d.Annotations[:0]
}
