package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sarge/internal/rewrite"
	"github.com/roach88/sarge/internal/sqlgen"
	"github.com/roach88/sarge/internal/sqlir"
)

// RewriteResult is the payload of a successful rewrite.
type RewriteResult struct {
	SQL        string   `json:"sql"`
	Args       []string `json:"args,omitempty"`
	Where      []string `json:"where,omitempty"`
	On         []string `json:"on,omitempty"`
	AutoParams []string `json:"auto_params,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	var catalogPath string
	var params []string
	var noPlanCache bool

	cmd := &cobra.Command{
		Use:   "rewrite <statement.yaml>",
		Short: "Rewrite a statement and print the result",
		Long: `Run the rewrite pipeline over a YAML statement and print the rewritten
predicate and its SQL rendering. Without --catalog the schema-dependent
passes (NULL folding, OID rewriting, partition pruning) are disabled.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(rootOpts, cmd, args[0], catalogPath, params, noPlanCache)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog CUE file")
	cmd.Flags().StringArrayVar(&params, "param", nil, "host variable value (repeatable, in placeholder order)")
	cmd.Flags().BoolVar(&noPlanCache, "no-plan-cache", false, "disable auto-parameterization")

	return cmd
}

func runRewrite(opts *RootOptions, cmd *cobra.Command, stmtPath, catalogPath string, params []string, noPlanCache bool) error {
	formatter := newFormatter(opts, cmd)

	stmt, err := loadStatement(formatter, stmtPath)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(formatter, catalogPath)
	if err != nil {
		return err
	}
	hostVars := parseParamValues(params)

	ctx := newRewriteContext(cat, hostVars, !noPlanCache)
	formatter.VerboseLog("statement %s: %d specs, %d where clauses",
		ctx.StatementID, len(stmt.Specs), len(stmt.Where))

	if err := rewrite.Rewrite(ctx, stmt); err != nil {
		_ = formatter.Error(ErrCodeRewrite, err.Error(), nil)
		return WrapExitError(ExitFailure, "rewrite failed", err)
	}

	combined := make([]sqlir.Value, 0, len(hostVars)+len(ctx.AutoParams))
	combined = append(combined, hostVars...)
	combined = append(combined, ctx.AutoParams...)
	sqlText, args, err := (&sqlgen.Compiler{Params: combined}).Compile(stmt)
	if err != nil {
		_ = formatter.Error(ErrCodeRewrite, err.Error(), nil)
		return WrapExitError(ExitFailure, "render SQL", err)
	}

	result := RewriteResult{
		SQL:        sqlText,
		Args:       renderArgs(args),
		Where:      clauseStrings(stmt.Where),
		AutoParams: renderValues(ctx.AutoParams),
		Warnings:   ctx.Warnings,
	}
	for _, spec := range stmt.Specs {
		result.On = append(result.On, clauseStrings(spec.On)...)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return printRewriteText(formatter, &result)
}

func printRewriteText(formatter *OutputFormatter, r *RewriteResult) error {
	fmt.Fprintf(formatter.Writer, "sql:  %s\n", r.SQL)
	if len(r.Args) > 0 {
		fmt.Fprintf(formatter.Writer, "args: %s\n", strings.Join(r.Args, ", "))
	}
	printClauseSection(formatter, "where", r.Where)
	printClauseSection(formatter, "on", r.On)
	for _, w := range r.Warnings {
		fmt.Fprintf(formatter.Writer, "warning: %s\n", w)
	}
	return nil
}

func printClauseSection(formatter *OutputFormatter, label string, clauses []string) {
	if len(clauses) == 0 {
		return
	}
	fmt.Fprintf(formatter.Writer, "%s:\n", label)
	for _, c := range clauses {
		fmt.Fprintf(formatter.Writer, "  %s\n", c)
	}
}

func clauseStrings(list sqlir.ClauseList) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].String()
	}
	return out
}

func renderArgs(args []any) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			out[i] = "NULL"
			continue
		}
		out[i] = fmt.Sprintf("%v", a)
	}
	return out
}
