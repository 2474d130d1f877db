package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sarge/internal/rewrite"
)

// TraceStep is one pipeline snapshot in JSON output.
type TraceStep struct {
	Pass  string `json:"pass"`
	List  string `json:"list"`
	Stmt  string `json:"stmt,omitempty"`
	Error string `json:"error,omitempty"`
}

// TraceResult is the payload of a trace run.
type TraceResult struct {
	Steps    []TraceStep `json:"steps"`
	Warnings []string    `json:"warnings,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	var catalogPath string
	var params []string
	var noPlanCache bool

	cmd := &cobra.Command{
		Use:           "trace <statement.yaml>",
		Short:         "Show the clause list after every rewrite pass",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, cmd, args[0], catalogPath, params, noPlanCache)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog CUE file")
	cmd.Flags().StringArrayVar(&params, "param", nil, "host variable value (repeatable, in placeholder order)")
	cmd.Flags().BoolVar(&noPlanCache, "no-plan-cache", false, "disable auto-parameterization")

	return cmd
}

func runTrace(opts *RootOptions, cmd *cobra.Command, stmtPath, catalogPath string, params []string, noPlanCache bool) error {
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

	snaps, traceErr := rewrite.Trace(ctx, stmt)

	result := TraceResult{Warnings: ctx.Warnings}
	for _, s := range snaps {
		step := TraceStep{Pass: s.Pass, List: s.List, Error: s.Error}
		if opts.Verbose {
			step.Stmt = s.Stmt
		}
		result.Steps = append(result.Steps, step)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, step := range result.Steps {
			fmt.Fprintf(formatter.Writer, "== %s\n", step.Pass)
			if step.List != "" {
				fmt.Fprintln(formatter.Writer, step.List)
			}
			if step.Error != "" {
				fmt.Fprintf(formatter.Writer, "error: %s\n", step.Error)
			}
			if step.Stmt != "" {
				fmt.Fprintln(formatter.Writer, step.Stmt)
			}
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(formatter.Writer, "warning: %s\n", w)
		}
	}

	if traceErr != nil {
		return WrapExitError(ExitFailure, "rewrite failed", traceErr)
	}
	return nil
}
