package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sarge/internal/sqlir"
)

// executeCommand runs the root command with the given args and captures
// stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testStatement = `
kind: select
specs:
  - table: emp
select:
  - {col: t1.name}
where:
  - cmp: {op: ">", left: {col: t1.a}, right: {value: 3}}
  - cmp: {op: "<=", left: {col: t1.a}, right: {value: 9}}
`

const testCatalog = `
catalog: {
	emp: {
		columns: {
			id:     {type: "int", nullable: false, oid: true}
			a:      {type: "int"}
			name:   {type: "string"}
			region: {type: "string", nullable: false}
		}
		partition_key: "region"
	}
}
`

func TestRoot_InvalidFormat(t *testing.T) {
	_, _, err := executeCommand(t, "--format", "xml", "catalog", "whatever.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"rewrite", "trace", "verify", "catalog"} {
		assert.Truef(t, names[want], "missing subcommand %s", want)
	}
}

func TestParseParamValue(t *testing.T) {
	cases := []struct {
		in   string
		want sqlir.Value
	}{
		{"42", sqlir.Int(42)},
		{"-1", sqlir.Int(-1)},
		{"2.5", sqlir.Float(2.5)},
		{"true", sqlir.Bool(true)},
		{"null", sqlir.Null{}},
		{"hello", sqlir.String("hello")},
		{"2x", sqlir.String("2x")},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, parseParamValue(tc.in), "input %q", tc.in)
	}
}
