package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-assistant/pkg/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the SQL tools over MCP on stdio",
	Long: `Serve validate_sql, format_sql, explain_sql, optimize_sql and get_schema_info
as MCP tools over stdin and stdout. Logs go to stderr.`,
	Example: `  sql-assistant serve --catalog catalog.yaml`,
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("catalog", "", "schema catalog file for get_schema_info")
}

func runServe(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("catalog")
	catalog, err := loadCatalog(path)
	if err != nil {
		return err
	}

	z := zapLogger()
	defer z.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mcpserver.New(Version, z, mcpserver.WithCatalog(catalog)).ServeStdio(ctx)
}
