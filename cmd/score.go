package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-assistant/pkg/scorer"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Grade an LLM response with a judge model",
	Long: `Grade an LLM response that contains SQL with a judge model.

The SQL is taken from the first sql code block of the response, any code
block, or the whole response. Without --scorer every scorer runs:

  correctness   is the SQL syntactically and logically sound
  intentMatch   does the SQL answer --request
  readability   is the SQL easy to read`,
	Example: `  sql-assistant score --response answer.md --request "top customers by revenue"
  sql-assistant score --response - --scorer correctness < answer.md`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().String("response", "", "file with the LLM response ('-' for stdin)")
	scoreCmd.Flags().String("request", "", "the natural-language request the response answers")
	scoreCmd.Flags().String("scorer", "", "run a single scorer (correctness, intentMatch, readability)")
	_ = scoreCmd.MarkFlagRequired("response")
}

type scoreOutput struct {
	Scores []*types.ScoreResult `json:"scores"           yaml:"scores"`
	Errors map[string]string    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	responsePath, _ := cmd.Flags().GetString("response")
	request, _ := cmd.Flags().GetString("request")
	scorerName, _ := cmd.Flags().GetString("scorer")

	var (
		data []byte
		err  error
	)
	if responsePath == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(responsePath)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read response: %s", responsePath)
	}
	if strings.TrimSpace(string(data)) == "" {
		return errors.New("response is empty")
	}

	judge, err := newJudge(zapLogger())
	if err != nil {
		return err
	}

	in := scorer.Input{Response: string(data), Request: request}
	out := scoreOutput{Scores: []*types.ScoreResult{}}

	if scorerName != "" {
		name, err := scorer.ParseName(scorerName)
		if err != nil {
			return err
		}
		result, err := scorer.Score(cmd.Context(), judge, name, in)
		if err != nil {
			return errors.Wrapf(err, "scorer %s failed", name)
		}
		out.Scores = append(out.Scores, result)
	} else {
		for _, outcome := range scorer.ScoreAll(cmd.Context(), judge, in) {
			if outcome.Err != nil {
				if out.Errors == nil {
					out.Errors = make(map[string]string)
				}
				out.Errors[string(outcome.Scorer)] = outcome.Err.Error()
				continue
			}
			out.Scores = append(out.Scores, outcome.Result)
		}
	}

	err = writeResult(cmd.OutOrStdout(), outputFormat(), out, func(w io.Writer) error {
		for _, s := range out.Scores {
			writeScore(w, s)
		}
		for _, name := range scorer.Names() {
			if msg, ok := out.Errors[string(name)]; ok {
				fmt.Fprintf(w, "%-12s FAILED  %s\n", name, msg)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(out.Scores) == 0 {
		return errors.New("every scorer failed")
	}
	return nil
}
