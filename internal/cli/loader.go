package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/sarge/internal/catalog"
	"github.com/roach88/sarge/internal/rewrite"
	"github.com/roach88/sarge/internal/sqlir"
)

// Error codes reported in JSON output.
const (
	ErrCodeStatement = "E_STATEMENT" // statement file missing or unparseable
	ErrCodeCatalog   = "E_CATALOG"   // catalog file missing or invalid
	ErrCodeRewrite   = "E_REWRITE"   // rewrite pipeline failed
	ErrCodeVerify    = "E_VERIFY"    // differential run failed to execute
)

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadStatement reads and decodes a YAML statement file.
func loadStatement(formatter *OutputFormatter, path string) (*sqlir.Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeStatement, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "read statement", err)
	}
	stmt, err := sqlir.DecodeStatement(data)
	if err != nil {
		_ = formatter.Error(ErrCodeStatement, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "decode statement", err)
	}
	return stmt, nil
}

// loadCatalog compiles an optional catalog file. An empty path returns a
// nil catalog, which disables the schema-dependent passes.
func loadCatalog(formatter *OutputFormatter, path string) (*catalog.Catalog, error) {
	if path == "" {
		return nil, nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeCatalog, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load catalog", err)
	}
	return cat, nil
}

// newRewriteContext builds a compile context from command flags.
func newRewriteContext(cat *catalog.Catalog, hostVars []sqlir.Value, planCache bool) *rewrite.Context {
	ctx := rewrite.NewContext()
	ctx.PlanCache = planCache
	ctx.HostVarCount = len(hostVars)
	if cat != nil {
		ctx.Schema = cat
	}
	return ctx
}

// parseParamValues converts --param flag strings into typed values:
// integers, decimals, booleans and "null" by literal shape, anything else
// as a string.
func parseParamValues(raw []string) []sqlir.Value {
	if len(raw) == 0 {
		return nil
	}
	vals := make([]sqlir.Value, len(raw))
	for i, s := range raw {
		vals[i] = parseParamValue(s)
	}
	return vals
}

func parseParamValue(s string) sqlir.Value {
	switch s {
	case "null", "NULL":
		return sqlir.Null{}
	case "true":
		return sqlir.Bool(true)
	case "false":
		return sqlir.Bool(false)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return sqlir.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return sqlir.Float(f)
	}
	return sqlir.String(s)
}

// renderValues renders a value array for display.
func renderValues(vals []sqlir.Value) []string {
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = sqlir.ValueString(v)
	}
	return out
}
