package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/tagspan/pkg/tagspan/document"
	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
	"github.com/cognicore/tagspan/pkg/tagspan/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	docs map[string]document.Document
}

var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{docs: make(map[string]document.Document)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveDocument stores a copy of d, keyed by ID.
func (s *Store) SaveDocument(ctx context.Context, d document.Document) error {
	if d.ID == "" {
		return internalerr.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = copyDoc(d)
	return nil
}

// Document returns a copy of the stored document.
func (s *Store) Document(ctx context.Context, id string) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return document.Document{}, internalerr.ErrNotFound
	}
	return copyDoc(d), nil
}

// Annotations returns the annotations of one document.
func (s *Store) Annotations(ctx context.Context, documentID string) ([]document.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[documentID]
	if !ok {
		return nil, nil
	}
	return append([]document.Annotation(nil), d.Annotations...), nil
}

// CountByType tallies annotations per type across all documents.
func (s *Store) CountByType(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, d := range s.docs {
		for _, a := range d.Annotations {
			counts[a.Type]++
		}
	}
	return counts, nil
}

// CountDocuments returns the number of stored documents.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func copyDoc(d document.Document) document.Document {
	out := d
	out.Annotations = append([]document.Annotation(nil), d.Annotations...)
	return out
}
