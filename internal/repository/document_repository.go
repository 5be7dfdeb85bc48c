package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/titans-club/portal-api/internal/models"
)

// DocumentStore persists semi-structured workspace documents in a single
// Postgres table keyed by (collection, id). It is the one shared resource
// under every live view and both workspace engines; callers provide their
// own coordination (see the single-writer assumption in the service layer).
type DocumentStore struct {
	db *sqlx.DB
}

// NewDocumentStore constructs the store.
func NewDocumentStore(db *sqlx.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// EnsureSchema creates the documents table when it does not exist yet.
func (s *DocumentStore) EnsureSchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	return nil
}

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

// ListAll returns every document of a collection.
func (s *DocumentStore) ListAll(ctx context.Context, collection string) ([]models.Document, error) {
	const query = `SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, collection); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		data := map[string]interface{}{}
		if len(row.Data) > 0 {
			if err := json.Unmarshal(row.Data, &data); err != nil {
				return nil, fmt.Errorf("decode %s/%s: %w", collection, row.ID, err)
			}
		}
		docs = append(docs, models.Document{ID: row.ID, Data: data})
	}
	return docs, nil
}

// Get loads one document.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	const query = `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`
	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, collection, id); err != nil {
		return nil, err
	}

	data := map[string]interface{}{}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
	}
	return &models.Document{ID: row.ID, Data: data}, nil
}

// SetOne writes a document, replacing any existing one under the same key.
func (s *DocumentStore) SetOne(ctx context.Context, collection, id string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	const query = `INSERT INTO documents (collection, id, data, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, collection, id, payload); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// DeleteOne removes a document. Deleting a missing document is an error so
// callers can distinguish no-ops.
func (s *DocumentStore) DeleteOne(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete %s/%s: %w", collection, id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetMany writes a batch of documents in one transaction, so a batch step
// of a workflow either fully applies or fully fails.
func (s *DocumentStore) SetMany(ctx context.Context, collection string, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set many %s: %w", collection, err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO documents (collection, id, data, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	for _, doc := range docs {
		payload, err := json.Marshal(doc.Data)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, doc.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, collection, doc.ID, payload); err != nil {
			return fmt.Errorf("set %s/%s: %w", collection, doc.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set many %s: %w", collection, err)
	}
	return nil
}

// DeleteMany removes a batch of documents in one transaction.
func (s *DocumentStore) DeleteMany(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete many %s: %w", collection, err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, query, collection, id); err != nil {
			return fmt.Errorf("delete %s/%s: %w", collection, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete many %s: %w", collection, err)
	}
	return nil
}

// DeleteAll wipes an entire collection.
func (s *DocumentStore) DeleteAll(ctx context.Context, collection string) error {
	const query = `DELETE FROM documents WHERE collection = $1`
	if _, err := s.db.ExecContext(ctx, query, collection); err != nil {
		return fmt.Errorf("wipe %s: %w", collection, err)
	}
	return nil
}

// EncodeDoc converts a typed record into a store document through its JSON
// shape. The record must carry an "id" field.
func EncodeDoc(record interface{}) (models.Document, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return models.Document{}, fmt.Errorf("encode record: %w", err)
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.Document{}, fmt.Errorf("split record id: %w", err)
	}
	return doc, nil
}

// DecodeDoc converts a store document back into a typed record.
func DecodeDoc(doc models.Document, dest interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("flatten document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}
