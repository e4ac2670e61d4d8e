package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

var formatCmd = &cobra.Command{
	Use:     "format [sql]",
	Short:   "Upper-case SQL keywords",
	Example: `  sql-assistant format "select id from users where active = true"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sql, err := readSQL(cmd, args)
		if err != nil {
			return err
		}
		formatted := sqltools.Format(sql)
		return writeResult(cmd.OutOrStdout(), outputFormat(), map[string]string{"formatted": formatted}, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, formatted)
			return err
		})
	},
}

var explainCmd = &cobra.Command{
	Use:     "explain [sql]",
	Short:   "Describe SQL in plain language",
	Example: `  sql-assistant explain -f report.sql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sql, err := readSQL(cmd, args)
		if err != nil {
			return err
		}
		result := sqltools.Explain(sql)
		return writeResult(cmd.OutOrStdout(), outputFormat(), result, func(w io.Writer) error {
			writeExplanation(w, result)
			return nil
		})
	},
}

var optimizeCmd = &cobra.Command{
	Use:     "optimize [sql]",
	Short:   "Find inefficient patterns in SQL",
	Example: `  sql-assistant optimize "SELECT * FROM a WHERE id NOT IN (SELECT a_id FROM b)"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sql, err := readSQL(cmd, args)
		if err != nil {
			return err
		}
		result := sqltools.Optimize(sql)
		return writeResult(cmd.OutOrStdout(), outputFormat(), result, func(w io.Writer) error {
			writeOptimization(w, result)
			return nil
		})
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema <table-type>",
	Short: "Show the usual columns and relationships of a table type",
	Long: `Show the usual columns, relationships and example queries of a table type.

Built-in records exist for users, products and orders. A catalog file adds or
overrides records:

  tables:
    invoices:
      commonColumns: [id, number, amount]
      relationships: ["Many-to-one with customers"]
      examples: ["SELECT number, amount FROM invoices"]`,
	Example: `  sql-assistant schema users
  sql-assistant schema invoices --catalog catalog.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(formatCmd, explainCmd, optimizeCmd, schemaCmd)
	addFileFlag(formatCmd)
	addFileFlag(explainCmd)
	addFileFlag(optimizeCmd)
	schemaCmd.Flags().String("catalog", "", "schema catalog file (YAML or JSON)")
}

type schemaOutput struct {
	TableType        string `json:"tableType" yaml:"tableType"`
	types.SchemaInfo `yaml:",inline"`
}

func runSchema(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("catalog")
	catalog, err := loadCatalog(path)
	if err != nil {
		return err
	}

	tableType := args[0]
	out := schemaOutput{TableType: tableType, SchemaInfo: *catalog.Lookup(tableType)}

	if _, custom := catalog.Match(tableType); !custom {
		if suggestion, ok := sqltools.SuggestTableType(tableType); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "No record for %q, did you mean %q?\n", tableType, suggestion)
		}
	}

	return writeResult(cmd.OutOrStdout(), outputFormat(), out, func(w io.Writer) error {
		writeSchemaInfo(w, tableType, &out.SchemaInfo)
		return nil
	})
}
