package format

import (
	"fmt"
	"strings"

	"github.com/cognicore/tagspan/pkg/tagspan/document"
)

// SourceEncoding is declared in every metadata block
const SourceEncoding = "UTF-8"

// Element and attribute names of the output format
const (
	tagDoc      = "doc"
	tagMeta     = "meta"
	tagHost     = "host"
	tagDate     = "date"
	tagURI      = "uri"
	tagTitle    = "title"
	tagEncoding = "source-encoding"
	tagText     = "text"
	tagEntity   = "ne"

	attrID      = "id"
	attrType    = "type"
	attrGeneric = "generic"
)

// Carriage returns are escaped so readers that normalize newlines keep offsets intact.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
	"\r", "&#13;",
)

// Format renders a document as one self-delimited block: the id, a metadata
// block, and the text with every annotation marked inline. The annotations
// must be in start order and must not overlap.
func Format(doc *document.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}

	var b strings.Builder
	b.Grow(len(doc.Text) + 256 + 32*len(doc.Annotations))

	fmt.Fprintf(&b, "<%s %s=\"%s\">\n", tagDoc, attrID, escaper.Replace(doc.ID))
	b.WriteString("<" + tagMeta + ">\n")
	writeField(&b, tagHost, doc.Metadata.Host)
	writeField(&b, tagDate, doc.Metadata.Date)
	writeField(&b, tagURI, doc.Metadata.URI)
	writeField(&b, tagTitle, doc.Metadata.Title)
	writeField(&b, tagEncoding, SourceEncoding)
	b.WriteString("</" + tagMeta + ">\n")

	b.WriteString("<" + tagText + ">")
	pos := 0
	for _, a := range doc.Annotations {
		b.WriteString(escaper.Replace(doc.Text[pos:a.Start]))
		fmt.Fprintf(&b, "<%s %s=\"%s\"", tagEntity, attrType, escaper.Replace(a.Type))
		if a.Generic {
			fmt.Fprintf(&b, " %s=\"true\"", attrGeneric)
		}
		b.WriteString(">")
		b.WriteString(escaper.Replace(doc.Text[a.Start:a.End]))
		b.WriteString("</" + tagEntity + ">")
		pos = a.End
	}
	b.WriteString(escaper.Replace(doc.Text[pos:]))
	b.WriteString("</" + tagText + ">\n")
	b.WriteString("</" + tagDoc + ">\n")

	return b.String(), nil
}

func writeField(b *strings.Builder, tag, value string) {
	b.WriteString("<" + tag + ">")
	b.WriteString(escaper.Replace(value))
	b.WriteString("</" + tag + ">\n")
}
