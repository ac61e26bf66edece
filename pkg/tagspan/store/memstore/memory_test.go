package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/tagspan/pkg/tagspan/document"
	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
)

func TestMemStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	st := New()

	doc := document.Document{
		ID:   "d1",
		Text: "Rome",
		Annotations: []document.Annotation{
			{ID: "a1", DocumentID: "d1", Type: "LOCATION", Start: 0, End: 4, CoveredText: "Rome"},
		},
	}
	if err := st.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	doc.Annotations[0].Type = "PERSON"

	got, err := st.Document(ctx, "d1")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if got.Annotations[0].Type != "LOCATION" {
		t.Errorf("Stored annotation changed to %q", got.Annotations[0].Type)
	}

	anns, _ := st.Annotations(ctx, "d1")
	if len(anns) != 1 {
		t.Errorf("Expected 1 annotation, got %d", len(anns))
	}

	n, _ := st.CountDocuments(ctx)
	if n != 1 {
		t.Errorf("Expected 1 document, got %d", n)
	}
}

func TestMemStoreReplace(t *testing.T) {
	ctx := context.Background()
	st := New()

	st.SaveDocument(ctx, document.Document{ID: "d", Annotations: []document.Annotation{{Type: "A"}, {Type: "B"}}})
	st.SaveDocument(ctx, document.Document{ID: "d", Annotations: []document.Annotation{{Type: "A"}}})

	counts, _ := st.CountByType(ctx)
	if counts["A"] != 1 || counts["B"] != 0 {
		t.Errorf("Replace should drop old annotations, got %v", counts)
	}
}

func TestMemStoreErrors(t *testing.T) {
	ctx := context.Background()
	st := New()

	if err := st.SaveDocument(ctx, document.Document{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if _, err := st.Document(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	anns, err := st.Annotations(ctx, "missing")
	if err != nil || len(anns) != 0 {
		t.Errorf("Missing document should have no annotations, got %v, %v", anns, err)
	}
}
