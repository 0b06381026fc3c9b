package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/record"
)

// Document is one stored record as raw JSON.
type Document json.RawMessage

// Decode unmarshals the document into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d, v)
}

// ID returns the document's "id" field, or "" if it has none.
func (d Document) ID() string {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(d, &head); err != nil {
		return ""
	}
	return head.ID
}

// MarshalJSON emits the document verbatim.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON keeps a copy of the raw bytes.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append((*d)[:0], data...)
	return nil
}

// Put upserts rec into collection c keyed by its "id" field. rec may be any
// value that marshals to a JSON object. A prior record with the same id is
// replaced wholesale.
func (s *Store) Put(ctx context.Context, c record.Collection, rec any) error {
	if !c.Valid() {
		return newError("put", c, KindUnknownCollection, fmt.Errorf("collection %q is not declared", c))
	}

	doc, id, err := encodeRecord(rec)
	if err != nil {
		return newError("put", c, KindMissingID, err)
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %q (id, doc) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc
	`, string(c)), id, string(doc))
	if err != nil {
		return newError("put", c, KindIO, err)
	}

	s.logger.Debug("put", zap.String("collection", string(c)), zap.String("id", id))
	return nil
}

// Get returns the record with the given id. A missing record is reported as
// (nil, false, nil), never as an error.
func (s *Store) Get(ctx context.Context, c record.Collection, id string) (Document, bool, error) {
	if !c.Valid() {
		return nil, false, newError("get", c, KindUnknownCollection, fmt.Errorf("collection %q is not declared", c))
	}

	var doc string
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT doc FROM %q WHERE id = ?`, string(c)), id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("get miss", zap.String("collection", string(c)), zap.String("id", id))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, newError("get", c, KindIO, err)
	}

	s.logger.Debug("get", zap.String("collection", string(c)), zap.String("id", id))
	return Document(doc), true, nil
}

// All returns every record in c. The result is never nil and its order is
// unspecified; callers that need an order must sort.
func (s *Store) All(ctx context.Context, c record.Collection) ([]Document, error) {
	if !c.Valid() {
		return nil, newError("all", c, KindUnknownCollection, fmt.Errorf("collection %q is not declared", c))
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT doc FROM %q`, string(c)))
	if err != nil {
		return nil, newError("all", c, KindIO, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, newError("all", c, KindIO, err)
		}
		docs = append(docs, Document(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, newError("all", c, KindIO, err)
	}

	s.logger.Debug("all", zap.String("collection", string(c)), zap.Int("count", len(docs)))
	return docs, nil
}

// GetAs is Get followed by Decode into a T.
func GetAs[T any](ctx context.Context, s *Store, c record.Collection, id string) (T, bool, error) {
	var out T
	doc, ok, err := s.Get(ctx, c, id)
	if err != nil || !ok {
		return out, ok, err
	}
	if err := doc.Decode(&out); err != nil {
		return out, false, newError("get", c, KindIO, fmt.Errorf("decode %q: %w", id, err))
	}
	return out, true, nil
}

// AllAs is All followed by Decode of every document into a T.
func AllAs[T any](ctx context.Context, s *Store, c record.Collection) ([]T, error) {
	docs, err := s.All(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.Decode(&v); err != nil {
			return nil, newError("all", c, KindIO, fmt.Errorf("decode %q: %w", doc.ID(), err))
		}
		out = append(out, v)
	}
	return out, nil
}

// encodeRecord marshals rec and extracts its id. The encoder does not escape
// HTML so stored text matches what the user typed.
func encodeRecord(rec any) ([]byte, string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, "", fmt.Errorf("marshal record: %w", err)
	}
	doc := bytes.TrimSpace(buf.Bytes())

	if len(doc) == 0 || doc[0] != '{' {
		return nil, "", errors.New("record must be a JSON object")
	}

	var head struct {
		ID *json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return nil, "", fmt.Errorf("read id: %w", err)
	}
	if head.ID == nil {
		return nil, "", errors.New(`record has no "id" field`)
	}
	var id string
	if err := json.Unmarshal(*head.ID, &id); err != nil {
		return nil, "", fmt.Errorf(`"id" must be a string: %w`, err)
	}
	if id == "" {
		return nil, "", errors.New(`"id" is empty`)
	}

	return doc, id, nil
}
