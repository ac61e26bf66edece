package annotate

import (
	"errors"
	"testing"

	"github.com/cognicore/tagspan/pkg/tagspan/aggregate"
	"github.com/cognicore/tagspan/pkg/tagspan/document"
	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
	"github.com/cognicore/tagspan/pkg/tagspan/token"
)

func TestRecord(t *testing.T) {
	sink := New("stanford-ner")
	doc := &document.Document{ID: "doc-1", Text: "Angela Merkel visited Paris."}

	ann, err := sink.Record(doc, aggregate.EntitySpan{Type: "PERSON", Start: 0, End: 13})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if ann.CoveredText != "Angela Merkel" {
		t.Errorf("Expected covered text 'Angela Merkel', got %q", ann.CoveredText)
	}
	if ann.Source != "stanford-ner" {
		t.Errorf("Expected source stanford-ner, got %q", ann.Source)
	}
	if ann.DocumentID != "doc-1" {
		t.Errorf("Expected document id doc-1, got %q", ann.DocumentID)
	}
	if ann.Generic {
		t.Error("PERSON should be a known kind")
	}
	if ann.ID == "" {
		t.Error("Annotation should have an id")
	}
	if len(doc.Annotations) != 1 || doc.Annotations[0] != ann {
		t.Errorf("Annotation should be appended to document, got %+v", doc.Annotations)
	}
}

func TestRecordUnknownTypeIsGeneric(t *testing.T) {
	sink := New("ner")
	doc := &document.Document{ID: "d", Text: "Take aspirin daily"}

	ann, err := sink.Record(doc, aggregate.EntitySpan{Type: "DRUG", Start: 5, End: 12})
	if err != nil {
		t.Fatalf("Unknown type should not fail: %v", err)
	}
	if !ann.Generic {
		t.Error("DRUG should be recorded as generic")
	}
	if ann.Type != "DRUG" {
		t.Errorf("Type should be preserved, got %q", ann.Type)
	}
}

func TestRecordCustomRegistry(t *testing.T) {
	sink := New("ner", WithRegistry(NewRegistry(Kind{Name: "DRUG"})))
	doc := &document.Document{ID: "d", Text: "aspirin"}

	ann, err := sink.Record(doc, aggregate.EntitySpan{Type: "DRUG", Start: 0, End: 7})
	if err != nil {
		t.Fatal(err)
	}
	if ann.Generic {
		t.Error("Registered kind should not be generic")
	}

	ann, err = sink.Record(doc, aggregate.EntitySpan{Type: "PERSON", Start: 0, End: 7})
	if err != nil {
		t.Fatal(err)
	}
	if !ann.Generic {
		t.Error("PERSON is not in the custom registry")
	}
}

func TestRecordOutOfRange(t *testing.T) {
	sink := New("ner")
	doc := &document.Document{ID: "d", Text: "short"}

	_, err := sink.Record(doc, aggregate.EntitySpan{Type: "MISC", Start: 2, End: 40})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if len(doc.Annotations) != 0 {
		t.Error("Invalid span should not be appended")
	}
}

func TestRecordAllKeepsOrderAndUniqueIDs(t *testing.T) {
	sink := New("ner")
	text := "Acme Corp opened in Berlin and Rome"
	doc := &document.Document{ID: "d", Text: text}
	tokens := []token.Tagged{
		{Text: "Acme", Start: 0, End: 4, Label: "ORGANIZATION"},
		{Text: "Corp", Start: 5, End: 9, Label: "ORGANIZATION"},
		{Text: "opened", Start: 10, End: 16, Label: "O"},
		{Text: "in", Start: 17, End: 19, Label: "O"},
		{Text: "Berlin", Start: 20, End: 26, Label: "LOCATION"},
		{Text: "and", Start: 27, End: 30, Label: "O"},
		{Text: "Rome", Start: 31, End: 35, Label: "LOCATION"},
	}

	n, err := sink.RecordAll(doc, aggregate.New("O").Aggregate(token.Seq(tokens)))
	if err != nil {
		t.Fatalf("RecordAll: %v", err)
	}
	if n != 3 {
		t.Fatalf("Expected 3 annotations, got %d", n)
	}

	want := []string{"Acme Corp", "Berlin", "Rome"}
	seen := make(map[string]bool)
	for i, a := range doc.Annotations {
		if a.CoveredText != want[i] {
			t.Errorf("annotation %d: got %q, want %q", i, a.CoveredText, want[i])
		}
		if seen[a.ID] {
			t.Errorf("duplicate annotation id %s", a.ID)
		}
		seen[a.ID] = true
	}
	if err := doc.Validate(); err != nil {
		t.Errorf("Recorded document should validate: %v", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultKinds...)
	if r.Len() != 4 {
		t.Errorf("Expected 4 default kinds, got %d", r.Len())
	}

	k, ok := r.Lookup("LOCATION")
	if !ok || k.Label != "Location" {
		t.Errorf("Lookup(LOCATION) = %+v, %v", k, ok)
	}

	k, ok = r.Lookup("EVENT")
	if ok || k.Name != "EVENT" {
		t.Errorf("Lookup(EVENT) = %+v, %v", k, ok)
	}

	r.Add(Kind{Name: "  "})
	if r.Len() != 4 {
		t.Error("Blank kind should be ignored")
	}
	r.Add(Kind{Name: "EVENT"})
	if k, ok := r.Lookup("EVENT"); !ok || k.Label != "EVENT" {
		t.Errorf("Added kind should default label to name, got %+v", k)
	}
}
