package store

import (
	"context"
	"fmt"
)

// Translation is one journal record.
type Translation struct {
	ID  string
	Seq int64

	// Operation is the qualified operation name ("fn.Remove") or
	// "member.<Name>" for member reads.
	Operation string

	// Request describes the operands; it must be canonically marshalable
	// (strings, booleans, integers, nested maps and slices).
	Request map[string]any

	Fingerprint string
	Applicable  bool
	SQL         string
	Params      []any

	// Result is the evaluated result as PostgreSQL text, nil when the
	// translation was not evaluated.
	Result *string
}

// WriteTranslation appends t to the journal. It assigns t.ID (when
// empty), t.Seq and t.Fingerprint.
func (s *Store) WriteTranslation(ctx context.Context, t *Translation) error {
	request, err := marshalRequest(t.Request)
	if err != nil {
		return fmt.Errorf("write translation: %w", err)
	}
	params, err := marshalParams(t.Params)
	if err != nil {
		return fmt.Errorf("write translation: %w", err)
	}
	fingerprint, err := Fingerprint(t.Request)
	if err != nil {
		return fmt.Errorf("write translation: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write translation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM translations`).Scan(&seq); err != nil {
		return fmt.Errorf("write translation: next seq: %w", err)
	}

	id := t.ID
	if id == "" {
		id = s.ids.Generate()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO translations
		(id, seq, operation, request, fingerprint, applicable, sql_text, params, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		seq,
		t.Operation,
		request,
		fingerprint,
		t.Applicable,
		t.SQL,
		params,
		t.Result,
	)
	if err != nil {
		return fmt.Errorf("write translation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write translation: commit: %w", err)
	}

	t.ID, t.Seq, t.Fingerprint = id, seq, fingerprint
	return nil
}
