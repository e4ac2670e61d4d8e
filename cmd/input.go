package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-assistant/pkg/config"
	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// addFileFlag registers -f/--file on commands that take SQL.
func addFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "read SQL from a file ('-' for stdin)")
}

// readSQL returns the SQL given as arguments, in --file, or on stdin.
func readSQL(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" && len(args) > 0 {
		return "", errors.New("pass SQL either as an argument or with --file, not both")
	}

	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read SQL file: %s", file)
		}
		text = string(data)
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "failed to read SQL from stdin")
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("no SQL given")
	}
	return text, nil
}

// dialect returns the dialect from flags, environment or config.
func dialect() (types.Dialect, error) {
	if appConfig == nil {
		return types.DefaultDialect, nil
	}
	return appConfig.ParsedDialect()
}

func outputFormat() string {
	if appConfig == nil || appConfig.Output == "" {
		return config.OutputText
	}
	return strings.ToLower(appConfig.Output)
}

// loadCatalog builds a catalog from path, falling back to the configured
// catalog file. No path gives a nil catalog, which only knows built-ins.
func loadCatalog(path string) (*sqltools.Catalog, error) {
	if path == "" && appConfig != nil {
		path = appConfig.Catalog
	}
	if path == "" {
		return nil, nil
	}
	entries, err := config.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return sqltools.NewCatalog(entries), nil
}
