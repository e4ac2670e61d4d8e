package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-assistant/pkg/assistant"
	"github.com/nsxbet/sql-assistant/pkg/config"
)

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Generate SQL from a natural-language request",
	Long: `Send a natural-language request to the configured LLM, extract the SQL from
its answer and run validation, explanation and optimization on it.

With --score the answer is also graded by the judge model.`,
	Example: `  sql-assistant ask "ten most recent orders with customer names"
  sql-assistant ask --dialect mysql --score "monthly revenue for 2024"
  sql-assistant ask --stream -o text "users who never ordered"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Bool("score", false, "grade the answer with every scorer")
	askCmd.Flags().Bool("stream", false, "print the answer as it is generated")
	askCmd.Flags().Bool("syntax", false, "also parse the SQL with the dialect's grammar (postgresql, mysql)")
	askCmd.Flags().String("catalog", "", "schema catalog file used for column hints")
}

func runAsk(cmd *cobra.Command, args []string) error {
	d, err := dialect()
	if err != nil {
		return err
	}
	catalogPath, _ := cmd.Flags().GetString("catalog")
	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	z := zapLogger()
	defer z.Sync()

	completer, err := newCompleter(z)
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("syntax")
	opts := []assistant.Option{
		assistant.WithDialect(d),
		assistant.WithStrictSyntax(strict),
		assistant.WithCatalog(catalog),
	}

	var askOpts []assistant.AskOption
	if score, _ := cmd.Flags().GetBool("score"); score {
		judge, err := newJudge(z)
		if err != nil {
			return err
		}
		opts = append(opts, assistant.WithJudge(judge))
		askOpts = append(askOpts, assistant.WithScoring())
	}

	format := outputFormat()
	stream, _ := cmd.Flags().GetBool("stream")
	if stream {
		// Structured output must stay parseable, so chunks go to stderr.
		chunkOut := cmd.ErrOrStderr()
		if format == config.OutputText {
			chunkOut = cmd.OutOrStdout()
		}
		askOpts = append(askOpts, assistant.WithStream(func(chunk string) {
			fmt.Fprint(chunkOut, chunk)
		}))
	}

	request := strings.Join(args, " ")
	result, err := assistant.New(completer, opts...).Ask(cmd.Context(), request, askOpts...)
	if err != nil {
		return err
	}
	slog.Info("Request answered", "id", result.ID, "model", completer.Model(), "valid", result.IsValid())

	return writeResult(cmd.OutOrStdout(), format, result, func(w io.Writer) error {
		if stream {
			fmt.Fprintln(w)
		}
		writeAskResult(w, result, stream)
		return nil
	})
}
