package store

import (
	"context"
	"database/sql"
	"fmt"
)

const selectTranslations = `
	SELECT id, seq, operation, request, fingerprint, applicable, sql_text, params, result
	FROM translations
`

// ReadTranslations returns every journal record in seq order.
// Returns an empty slice (not nil) for an empty journal.
func (s *Store) ReadTranslations(ctx context.Context) ([]Translation, error) {
	return s.query(ctx, selectTranslations+`ORDER BY seq ASC, id COLLATE BINARY ASC`)
}

// ReadByFingerprint returns the records of one request in seq order.
func (s *Store) ReadByFingerprint(ctx context.Context, fingerprint string) ([]Translation, error) {
	return s.query(ctx, selectTranslations+`WHERE fingerprint = ? ORDER BY seq ASC, id COLLATE BINARY ASC`, fingerprint)
}

// ReadLatest returns the last n records, oldest first.
func (s *Store) ReadLatest(ctx context.Context, n int) ([]Translation, error) {
	if n <= 0 {
		return []Translation{}, nil
	}
	out, err := s.query(ctx, selectTranslations+`ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Translation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	out := []Translation{}
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return out, nil
}

func scanTranslation(rows *sql.Rows) (Translation, error) {
	var (
		t       Translation
		request string
		params  string
		result  sql.NullString
	)
	if err := rows.Scan(&t.ID, &t.Seq, &t.Operation, &request, &t.Fingerprint, &t.Applicable, &t.SQL, &params, &result); err != nil {
		return Translation{}, fmt.Errorf("scan translation: %w", err)
	}

	var err error
	if t.Request, err = unmarshalRequest(request); err != nil {
		return Translation{}, err
	}
	if t.Params, err = unmarshalParams(params); err != nil {
		return Translation{}, err
	}
	if result.Valid {
		t.Result = &result.String
	}
	return t, nil
}
