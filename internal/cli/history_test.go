package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordTranslations(t *testing.T, dir string) string {
	t.Helper()
	db := filepath.Join(dir, "journal.db")
	remove := writeFile(t, dir, "remove.yaml", removeKeyRequest)
	keys := writeFile(t, dir, "keys.yaml", "member: Keys\ninstance: {column: h, store: hstore, value: {a: \"1\"}}\n")

	for _, args := range [][]string{
		{"translate", remove, "--eval", "--db", db},
		{"translate", keys, "--db", db},
		{"translate", remove, "--db", db},
	} {
		_, _, err := execute(t, args...)
		require.NoError(t, err)
	}
	return db
}

func TestHistoryCommand_Text(t *testing.T) {
	db := recordTranslations(t, t.TempDir())

	out, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "fn.Remove")
	assert.Contains(t, out, "member.Keys")
	assert.Contains(t, out, `akeys("t"."h")`)
}

func TestHistoryCommand_JSON(t *testing.T) {
	db := recordTranslations(t, t.TempDir())

	out, _, err := execute(t, "history", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)
	for i, e := range resp.Data {
		assert.Equal(t, int64(i+1), e.Seq)
	}
	require.NotNil(t, resp.Data[0].Result)
	assert.Equal(t, `{"b": "2"}`, *resp.Data[0].Result)
	assert.Equal(t, resp.Data[0].Fingerprint, resp.Data[2].Fingerprint)
}

func TestHistoryCommand_Filters(t *testing.T) {
	db := recordTranslations(t, t.TempDir())

	out, _, err := execute(t, "history", "--db", db, "--limit", "1", "--format", "json")
	require.NoError(t, err)
	var latest struct {
		Data []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &latest))
	require.Len(t, latest.Data, 1)
	assert.Equal(t, int64(3), latest.Data[0].Seq)

	out, _, err = execute(t, "history", "--db", db, "--fingerprint", latest.Data[0].Fingerprint, "--format", "json")
	require.NoError(t, err)
	var same struct {
		Data []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &same))
	require.Len(t, same.Data, 2)
	assert.Equal(t, int64(1), same.Data[0].Seq)
}

func TestHistoryCommand_Errors(t *testing.T) {
	_, _, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)

	_, _, err = execute(t, "history", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
