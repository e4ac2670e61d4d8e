package cmd

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/sql-assistant/pkg/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan [sql]",
	Short: "Show the execution plan of SQL on a live database",
	Long: `Ask a live database for the execution plan of a query and derive hints from it.

Supported dialects: postgresql, mssql and sqlite. The query is not executed
unless --analyze is given, which is only accepted for SELECT statements on
postgresql. The DSN can also come from SQL_ASSISTANT_DSN.`,
	Example: `  sql-assistant plan --dsn postgres://localhost/shop "SELECT * FROM orders WHERE status = 'paid'"
  sql-assistant plan --dialect sqlite --dsn ./shop.db -f report.sql`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	addFileFlag(planCmd)
	planCmd.Flags().String("dsn", "", "database connection string")
	planCmd.Flags().Bool("analyze", false, "run the query and report actual timings (postgresql)")
	_ = viper.BindPFlag("dsn", planCmd.Flags().Lookup("dsn"))
}

func runPlan(cmd *cobra.Command, args []string) error {
	sql, err := readSQL(cmd, args)
	if err != nil {
		return err
	}
	d, err := dialect()
	if err != nil {
		return err
	}
	dsn := viper.GetString("dsn")
	if dsn == "" {
		return errors.New("a database connection string is required (--dsn or SQL_ASSISTANT_DSN)")
	}
	analyze, _ := cmd.Flags().GetBool("analyze")

	runner, err := plan.Open(cmd.Context(), d, dsn, plan.WithAnalyze(analyze))
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Explain(cmd.Context(), sql)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), outputFormat(), result, func(w io.Writer) error {
		writePlan(w, result)
		return nil
	})
}
