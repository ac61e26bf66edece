package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/cognicore/tagspan/pkg/tagspan/document"
	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
	"github.com/cognicore/tagspan/pkg/tagspan/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	host TEXT,
	date TEXT,
	uri TEXT,
	title TEXT,
	body TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS annotations (
	id TEXT PRIMARY KEY,
	doc_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	type TEXT NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	covered_text TEXT NOT NULL,
	source TEXT,
	generic INTEGER NOT NULL DEFAULT 0,
	UNIQUE(doc_id, seq),
	FOREIGN KEY(doc_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_annotations_type ON annotations(type);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveDocument upserts the document and replaces its annotations in one transaction
func (s *sqliteStore) SaveDocument(ctx context.Context, d document.Document) error {
	if d.ID == "" {
		return internalerr.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO documents (id, host, date, uri, title, body)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	host=excluded.host,
	date=excluded.date,
	uri=excluded.uri,
	title=excluded.title,
	body=excluded.body;
`
	_, err = tx.ExecContext(ctx, stmt,
		d.ID,
		d.Metadata.Host,
		d.Metadata.Date,
		d.Metadata.URI,
		d.Metadata.Title,
		d.Text,
	)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", d.ID, err)
	}

	if err := replaceAnnotations(ctx, tx, d.ID, d.Annotations); err != nil {
		return fmt.Errorf("annotations of %s: %w", d.ID, err)
	}

	return tx.Commit()
}

func replaceAnnotations(ctx context.Context, tx *sql.Tx, docID string, anns []document.Annotation) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM annotations WHERE doc_id=?`, docID); err != nil {
		return err
	}
	if len(anns) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO annotations (id, doc_id, seq, type, start_offset, end_offset, covered_text, source, generic)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, a := range anns {
		id := a.ID
		if id == "" {
			id = fmt.Sprintf("%s#%d", docID, i)
		}
		if _, err := stmt.ExecContext(ctx, id, docID, i, a.Type, a.Start, a.End, a.CoveredText, a.Source, boolToInt(a.Generic)); err != nil {
			return err
		}
	}
	return nil
}

// Document loads a document and its annotations
func (s *sqliteStore) Document(ctx context.Context, id string) (document.Document, error) {
	var d document.Document
	err := s.db.QueryRowContext(ctx,
		`SELECT id, host, date, uri, title, body FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Metadata.Host, &d.Metadata.Date, &d.Metadata.URI, &d.Metadata.Title, &d.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Document{}, internalerr.ErrNotFound
	}
	if err != nil {
		return document.Document{}, err
	}

	d.Annotations, err = s.Annotations(ctx, id)
	if err != nil {
		return document.Document{}, err
	}
	return d, nil
}

// Annotations returns the annotations of one document in recording order
func (s *sqliteStore) Annotations(ctx context.Context, documentID string) ([]document.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, doc_id, type, start_offset, end_offset, covered_text, source, generic
FROM annotations
WHERE doc_id = ?
ORDER BY seq`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var anns []document.Annotation
	for rows.Next() {
		var (
			a       document.Annotation
			source  sql.NullString
			generic int
		)
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.Type, &a.Start, &a.End, &a.CoveredText, &source, &generic); err != nil {
			return nil, err
		}
		a.Source = source.String
		a.Generic = generic != 0
		anns = append(anns, a)
	}
	return anns, rows.Err()
}

// CountByType returns annotation counts grouped by type
func (s *sqliteStore) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM annotations GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}

// CountDocuments returns the number of stored documents
func (s *sqliteStore) CountDocuments(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
