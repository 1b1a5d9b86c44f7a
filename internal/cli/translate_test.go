package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgdict/internal/store"
)

func TestTranslate_Text(t *testing.T) {
	req := writeFile(t, t.TempDir(), "req.yaml", removeKeyRequest)

	out, _, err := execute(t, "translate", req)
	require.NoError(t, err)
	assert.Contains(t, out, `SQL:    "t"."j"::jsonb - $1::text`)
	assert.Contains(t, out, "$1:     a")
	assert.NotContains(t, out, "Result:")
}

func TestTranslate_Eval(t *testing.T) {
	req := writeFile(t, t.TempDir(), "req.yaml", removeKeyRequest)

	out, _, err := execute(t, "translate", req, "--eval")
	require.NoError(t, err)
	assert.Contains(t, out, `Result: {"b": "2"}`)
}

func TestTranslate_JSON(t *testing.T) {
	req := writeFile(t, t.TempDir(), "req.yaml", removeKeyRequest)

	out, _, err := execute(t, "translate", req, "--eval", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Op         string `json:"op"`
			Applicable bool   `json:"applicable"`
			SQL        string `json:"sql"`
			Args       []any  `json:"args"`
			Result     string `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "fn.Remove", resp.Data.Op)
	assert.True(t, resp.Data.Applicable)
	assert.Equal(t, []any{"a"}, resp.Data.Args)
	assert.Equal(t, `{"b": "2"}`, resp.Data.Result)
}

func TestTranslate_NotApplicable(t *testing.T) {
	req := writeFile(t, t.TempDir(), "req.yaml", `op: seq.Concat
operands:
  - {shape: "list<string>", value: [a]}
  - {shape: "list<string>", value: [b]}
`)

	out, _, err := execute(t, "translate", req)
	require.NoError(t, err)
	assert.Contains(t, out, "seq.Concat: not applicable")
}

func TestTranslate_Verbose(t *testing.T) {
	req := writeFile(t, t.TempDir(), "req.yaml", removeKeyRequest)

	_, errOut, err := execute(t, "translate", req, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, errOut, "loaded fn.Remove request")
	assert.Contains(t, errOut, "translated dictionary call")
}

func TestTranslate_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, "translate", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "request file not found")

	bad := writeFile(t, dir, "bad.yaml", "op: fn.Nope\n")
	_, _, err = execute(t, "translate", bad)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown op "fn.Nope"`)

	out, _, err := execute(t, "translate", bad, "--format", "json")
	require.Error(t, err)
	assert.Contains(t, out, `"code":"E301"`)

	req := writeFile(t, dir, "req.yaml", removeKeyRequest)
	_, _, err = execute(t, "translate", req, "--config", filepath.Join(dir, "missing.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
}

func TestTranslate_ConfigRawTextEquality(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "pgdict.cue", "translator: raw_text_equality: true\n")
	req := writeFile(t, dir, "req.yaml", `op: seq.SequenceEqual
operands:
  - {column: a, store: json, value: '{"x": "1"}'}
  - {column: b, store: json, value: '{"x":"1"}'}
`)

	out, _, err := execute(t, "translate", req, "--eval", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "::text")
	assert.Contains(t, out, "Result: false")

	out, _, err = execute(t, "translate", req, "--eval")
	require.NoError(t, err)
	assert.Contains(t, out, "Result: true")
}

func TestTranslate_Journal(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "journal.db")
	req := writeFile(t, dir, "req.yaml", removeKeyRequest)

	_, _, err := execute(t, "translate", req, "--eval", "--db", db)
	require.NoError(t, err)
	_, _, err = execute(t, "translate", req, "--db", db)
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	records, err := st.ReadTranslations(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "fn.Remove", records[0].Operation)
	assert.True(t, records[0].Applicable)
	assert.Equal(t, `"t"."j"::jsonb - $1::text`, records[0].SQL)
	assert.Equal(t, []any{"a"}, records[0].Params)
	require.NotNil(t, records[0].Result)
	assert.Equal(t, `{"b": "2"}`, *records[0].Result)

	assert.Nil(t, records[1].Result, "not evaluated without --eval")
	assert.Equal(t, records[0].Fingerprint, records[1].Fingerprint)
}
