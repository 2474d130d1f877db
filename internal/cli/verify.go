package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sarge/internal/verify"
)

// VerifyResult is the payload of a differential run.
type VerifyResult struct {
	Equivalent   bool     `json:"equivalent"`
	OriginalSQL  string   `json:"original_sql"`
	RewrittenSQL string   `json:"rewritten_sql"`
	Rows         int      `json:"rows"`
	Original     []string `json:"original,omitempty"`
	Rewritten    []string `json:"rewritten,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var catalogPath string
	var fixturePath string
	var params []string

	cmd := &cobra.Command{
		Use:   "verify <statement.yaml>",
		Short: "Check a rewrite against SQLite",
		Long: `Rewrite the statement, run the original and the rewritten version
against an in-memory SQLite database seeded from the fixture, and
compare the result sets. Diverging results exit with code 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd, args[0], catalogPath, fixturePath, params)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog CUE file (required)")
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "YAML fixture with seed rows")
	cmd.Flags().StringArrayVar(&params, "param", nil, "host variable value (repeatable, in placeholder order)")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command, stmtPath, catalogPath, fixturePath string, params []string) error {
	formatter := newFormatter(opts, cmd)

	stmt, err := loadStatement(formatter, stmtPath)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(formatter, catalogPath)
	if err != nil {
		return err
	}

	var fx *verify.Fixture
	if fixturePath != "" {
		fx, err = verify.LoadFixtureFile(fixturePath)
		if err != nil {
			_ = formatter.Error(ErrCodeVerify, err.Error(), nil)
			return WrapExitError(ExitCommandError, "load fixture", err)
		}
	}

	report, err := verify.Run(cmd.Context(), cat, fx, stmt, parseParamValues(params))
	if err != nil {
		_ = formatter.Error(ErrCodeVerify, err.Error(), nil)
		return WrapExitError(ExitFailure, "verify failed", err)
	}

	result := VerifyResult{
		Equivalent:   report.Equivalent,
		OriginalSQL:  report.OriginalSQL,
		RewrittenSQL: report.RewrittenSQL,
		Rows:         len(report.Original),
		Warnings:     report.Warnings,
	}
	if !report.Equivalent {
		result.Original = report.Original
		result.Rewritten = report.Rewritten
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		printVerifyText(formatter, &result)
	}

	if !report.Equivalent {
		return NewExitError(ExitFailure, "result sets diverged")
	}
	return nil
}

func printVerifyText(formatter *OutputFormatter, r *VerifyResult) {
	formatter.VerboseLog("original:  %s", r.OriginalSQL)
	formatter.VerboseLog("rewritten: %s", r.RewrittenSQL)
	if r.Equivalent {
		fmt.Fprintf(formatter.Writer, "✓ equivalent (%d rows)\n", r.Rows)
		for _, w := range r.Warnings {
			fmt.Fprintf(formatter.Writer, "warning: %s\n", w)
		}
		return
	}
	fmt.Fprintln(formatter.Writer, "✗ result sets diverged")
	fmt.Fprintf(formatter.Writer, "original  (%d rows): %v\n", len(r.Original), r.Original)
	fmt.Fprintf(formatter.Writer, "rewritten (%d rows): %v\n", len(r.Rewritten), r.Rewritten)
}
