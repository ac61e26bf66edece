package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/tagspan/pkg/tagspan/document"
	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
)

// Scanned is a document recovered from formatted output
type Scanned struct {
	document.Document
	Encoding string
}

type openEntity struct {
	typ     string
	generic bool
	start   int
}

// scanner holds the state for one pass over a formatted stream
type scanner struct {
	docs   []Scanned
	cur    *Scanned
	field  string
	value  strings.Builder
	inText bool
	body   strings.Builder
	entity *openEntity
}

// Scan reads concatenated document blocks and recovers each document's
// metadata, text and annotations. Offsets are recomputed from the text, so
// Scan(Format(doc)) returns the annotations Format was given.
func Scan(r io.Reader) ([]Scanned, error) {
	z := html.NewTokenizer(r)
	s := &scanner{}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				if s.cur != nil {
					return s.docs, fmt.Errorf("unterminated document %q: %w", s.cur.ID, internalerr.ErrInvalidInput)
				}
				return s.docs, nil
			}
			return s.docs, z.Err()
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			attrs := readAttrs(z, hasAttr)
			if err := s.start(string(name), attrs); err != nil {
				return s.docs, err
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if err := s.end(string(name)); err != nil {
				return s.docs, err
			}
		case html.TextToken:
			s.text(string(z.Text()))
		}
	}
}

func readAttrs(z *html.Tokenizer, more bool) map[string]string {
	attrs := make(map[string]string)
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return attrs
}

func (s *scanner) start(name string, attrs map[string]string) error {
	if name == tagDoc {
		if s.cur != nil {
			return fmt.Errorf("nested document inside %q: %w", s.cur.ID, internalerr.ErrInvalidInput)
		}
		s.cur = &Scanned{}
		s.cur.ID = attrs[attrID]
		return nil
	}
	if s.cur == nil {
		return fmt.Errorf("<%s> outside document: %w", name, internalerr.ErrInvalidInput)
	}

	switch name {
	case tagHost, tagDate, tagURI, tagTitle, tagEncoding:
		s.field = name
		s.value.Reset()
	case tagText:
		s.inText = true
		s.body.Reset()
	case tagEntity:
		if !s.inText {
			return fmt.Errorf("entity outside text of %q: %w", s.cur.ID, internalerr.ErrInvalidInput)
		}
		if s.entity != nil {
			return fmt.Errorf("nested entity in %q: %w", s.cur.ID, internalerr.ErrInvalidInput)
		}
		s.entity = &openEntity{
			typ:     attrs[attrType],
			generic: attrs[attrGeneric] == "true",
			start:   s.body.Len(),
		}
	}
	return nil
}

func (s *scanner) end(name string) error {
	if s.cur == nil {
		return fmt.Errorf("</%s> outside document: %w", name, internalerr.ErrInvalidInput)
	}

	switch name {
	case tagHost:
		s.cur.Metadata.Host = s.value.String()
	case tagDate:
		s.cur.Metadata.Date = s.value.String()
	case tagURI:
		s.cur.Metadata.URI = s.value.String()
	case tagTitle:
		s.cur.Metadata.Title = s.value.String()
	case tagEncoding:
		s.cur.Encoding = s.value.String()
	case tagText:
		if s.entity != nil {
			return fmt.Errorf("unterminated entity in %q: %w", s.cur.ID, internalerr.ErrInvalidInput)
		}
		s.inText = false
		s.cur.Text = s.body.String()
	case tagEntity:
		if s.entity == nil {
			return fmt.Errorf("unmatched entity close in %q: %w", s.cur.ID, internalerr.ErrInvalidInput)
		}
		body := s.body.String()
		s.cur.Annotations = append(s.cur.Annotations, document.Annotation{
			DocumentID:  s.cur.ID,
			Type:        s.entity.typ,
			Start:       s.entity.start,
			End:         len(body),
			CoveredText: body[s.entity.start:],
			Generic:     s.entity.generic,
		})
		s.entity = nil
	case tagDoc:
		s.docs = append(s.docs, *s.cur)
		s.cur = nil
	}
	if name != tagEntity && name != tagText {
		s.field = ""
	}
	return nil
}

func (s *scanner) text(t string) {
	switch {
	case s.inText:
		s.body.WriteString(t)
	case s.field != "":
		s.value.WriteString(t)
	}
}
