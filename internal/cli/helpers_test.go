package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const removeKeyRequest = `op: fn.Remove
operands:
  - column: j
    store: json
    value: {a: "1", b: "2"}
  - param: k
    shape: string
    value: a
`

const passingScenario = `name: hstore_value_for_key
op: dict.Item
instance: {column: h, store: hstore, value: {a: "1"}}
operands:
  - {param: k, shape: string, value: a}
expect:
  sql: '"t"."h" -> $1::text'
  result: "1"
`

const failingScenario = `name: wrong_result
op: dict.Item
instance: {column: h, store: hstore, value: {a: "1"}}
operands:
  - {param: k, shape: string, value: a}
expect:
  result: "2"
`
