package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pgdict/internal/testutil"
)

// createTestStore creates a new store in a temporary directory with
// deterministic ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs("tr")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTranslation creates a translation with minimal required fields.
func createTestTranslation(op string, applicable bool) *Translation {
	return &Translation{
		Operation:  op,
		Request:    map[string]any{"op": op, "operands": []any{map[string]any{"store": "hstore", "value": "k=>v"}}},
		Applicable: applicable,
	}
}
