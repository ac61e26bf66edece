package input

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cognicore/tagspan/internal/logger"
	"github.com/cognicore/tagspan/pkg/tagspan/document"
	"github.com/cognicore/tagspan/pkg/tagspan/token"
)

// maxLine bounds a single JSONL record
const maxLine = 64 * 1024 * 1024

// Item is one classified document as produced by the upstream classifier
type Item struct {
	ID     string         `json:"id"`
	Host   string         `json:"host"`
	Date   string         `json:"date"`
	URI    string         `json:"uri"`
	Title  string         `json:"title"`
	Text   string         `json:"text"`
	Tokens []token.Tagged `json:"tokens"`
}

// Document converts the item into an unannotated document
func (it Item) Document() document.Document {
	return document.Document{
		ID: it.ID,
		Metadata: document.Metadata{
			Host:  it.Host,
			Date:  it.Date,
			URI:   it.URI,
			Title: it.Title,
		},
		Text: it.Text,
	}
}

// Expand resolves glob patterns (with ** support) into a sorted, de-duplicated
// file list. A pattern without meta characters must name an existing file.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		pattern = filepath.Clean(pattern)
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("input %q: %w", pattern, err)
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			if st, err := os.Stat(m); err != nil || st.IsDir() {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Each streams the items of a JSONL file to fn in file order. Malformed
// lines are logged and skipped; an error from fn stops the scan.
func Each(ctx context.Context, path string, log logger.Logger, fn func(Item) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(ctx, f, path, log, fn)
}

// Read is Each over an open reader; name is used in log messages
func Read(ctx context.Context, r io.Reader, name string, log logger.Logger, fn func(Item) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}

		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			log.Warn("Skipping malformed JSON", "file", name, "line", line, "err", err)
			continue
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}
