package store

import (
	"context"

	"github.com/cognicore/tagspan/pkg/tagspan/document"
)

// Store persists processed documents and their annotations
type Store interface {
	Close() error

	// SaveDocument inserts or replaces a document together with all of its
	// annotations. Annotations from a previous save of the same id are dropped.
	SaveDocument(ctx context.Context, d document.Document) error

	// Document loads a document and its annotations in start order.
	// Missing ids return internalerr.ErrNotFound.
	Document(ctx context.Context, id string) (document.Document, error)

	// Annotations returns the annotations of one document in start order
	Annotations(ctx context.Context, documentID string) ([]document.Annotation, error)

	// CountByType returns how many annotations each entity type has
	CountByType(ctx context.Context) (map[string]int, error)

	// CountDocuments returns the number of stored documents
	CountDocuments(ctx context.Context) (int, error)
}
