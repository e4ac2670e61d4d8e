package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/syntax"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// ErrWarnings is returned when --fail-on-warning is set and warnings were found.
var ErrWarnings = errors.New("validation produced warnings")

var validateCmd = &cobra.Command{
	Use:   "validate [sql]",
	Short: "Check SQL for common problems",
	Long: `Check SQL for common problems and dialect-specific suggestions.

SQL is read from the arguments, from --file, or from stdin. The default checks
are fast keyword heuristics; --syntax adds a full grammar check for postgresql
and mysql.`,
	Example: `  sql-assistant validate "DELETE FROM users"
  sql-assistant validate -f query.sql --dialect mysql --syntax
  cat query.sql | sql-assistant validate --fail-on-warning`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addFileFlag(validateCmd)
	validateCmd.Flags().Bool("syntax", false, "also parse with the dialect's grammar (postgresql, mysql)")
	validateCmd.Flags().Bool("injection", false, "report whether the input looks like a SQL injection payload")
	validateCmd.Flags().Bool("fail-on-warning", false, "exit with non-zero code if warnings are found")
}

type validateOutput struct {
	types.ValidationResult `yaml:",inline"`
	Syntax                 *syntax.Report         `json:"syntax,omitempty"    yaml:"syntax,omitempty"`
	Injection              *types.InjectionResult `json:"injection,omitempty" yaml:"injection,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	sql, err := readSQL(cmd, args)
	if err != nil {
		return err
	}
	d, err := dialect()
	if err != nil {
		return err
	}

	slog.Debug("Validating SQL", "dialect", d, "size", len(sql))
	out := validateOutput{ValidationResult: *sqltools.Validate(sql, d)}

	if checkSyntax, _ := cmd.Flags().GetBool("syntax"); checkSyntax {
		report, err := syntax.Check(sql, d)
		if err != nil {
			return err
		}
		out.Syntax = report
	}
	if checkInjection, _ := cmd.Flags().GetBool("injection"); checkInjection {
		out.Injection = sqltools.CheckInjection(sql)
	}

	err = writeResult(cmd.OutOrStdout(), outputFormat(), out, func(w io.Writer) error {
		writeValidation(w, &out.ValidationResult)
		if out.Syntax != nil {
			writeSyntax(w, out.Syntax)
		}
		if out.Injection != nil {
			if out.Injection.IsSQLi {
				fmt.Fprintf(w, "Injection: looks like SQL injection (fingerprint %s)\n", out.Injection.Fingerprint)
			} else {
				fmt.Fprintln(w, "Injection: not detected")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if out.Syntax != nil && !out.Syntax.Valid {
		return errors.Errorf("syntax error: %s", out.Syntax.Message)
	}
	if failOnWarning, _ := cmd.Flags().GetBool("fail-on-warning"); failOnWarning && len(out.Warnings) > 0 {
		return ErrWarnings
	}
	return nil
}
