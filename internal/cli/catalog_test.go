package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgdict/internal/catalog"
)

func TestCatalogCommand_Text(t *testing.T) {
	out, _, err := execute(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "fn.Remove")
	assert.Contains(t, out, "dict.Remove")
	assert.Contains(t, out, "seq.SequenceEqual")
	assert.Contains(t, out, "Members: Keys, Values, Count, IsEmpty")
}

func TestCatalogCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "catalog", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data CatalogInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.Operations, len(catalog.Ops()))
	assert.Equal(t, []string{"Keys", "Values", "Count", "IsEmpty"}, resp.Data.Members)

	for _, op := range resp.Data.Operations {
		if op.Name == "fn.Slice" {
			assert.Equal(t, "fn", op.Kind)
			assert.Equal(t, 2, op.Arity)
			assert.Equal(t, "T", op.Returns)
		}
	}
}

func TestMappingsCommand(t *testing.T) {
	out, _, err := execute(t, "mappings")
	require.NoError(t, err)
	assert.Contains(t, out, "hstore")
	assert.Contains(t, out, "FlatStore")
	assert.Contains(t, out, "BinaryObject")
}

func TestMappingsCommand_ConfiguredFirst(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "pgdict.cue", `mappings: [{store_type: "jsonb", shape: "dict<string,string>"}]`+"\n")

	out, _, err := execute(t, "mappings", "--config", cfg, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data []MappingInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data)
	assert.Equal(t, MappingInfo{StoreType: "jsonb", Shape: "dict<string,string>", Encoding: "BinaryObject"}, resp.Data[0])
}

func TestMappingsCommand_BadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "pgdict.cue", `mappings: [{store_type: "hstore", shape: "dict<"}]`+"\n")

	_, _, err := execute(t, "mappings", "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "mappings", "--config", filepath.Join(dir, "none.cue"))
	require.Error(t, err)
}
