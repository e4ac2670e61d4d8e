package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/sql-assistant/pkg/assistant"
	"github.com/nsxbet/sql-assistant/pkg/config"
	"github.com/nsxbet/sql-assistant/pkg/plan"
	"github.com/nsxbet/sql-assistant/pkg/syntax"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// writeResult encodes v in the requested format. Text output is produced by
// text, which lets each command lay out its own result.
func writeResult(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case config.OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case config.OutputYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(v)
	case config.OutputText, "":
		return text(w)
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func writeValidation(w io.Writer, r *types.ValidationResult) {
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "[%s] %s\n", status, r.Formatted)
	writeList(w, "Warnings", r.Warnings)
	writeList(w, "Suggestions", r.Suggestions)
}

func writeSyntax(w io.Writer, r *syntax.Report) {
	if r.Valid {
		fmt.Fprintf(w, "Syntax (%s): OK\n", r.Dialect)
		if len(r.Tables) > 0 {
			fmt.Fprintf(w, "  tables: %s\n", strings.Join(r.Tables, ", "))
		}
		return
	}
	position := ""
	if r.Position != nil {
		position = fmt.Sprintf(" at line %d, column %d", r.Position.Line, r.Position.Column)
	}
	fmt.Fprintf(w, "Syntax (%s): ERROR%s\n  %s\n", r.Dialect, position, r.Message)
}

func writeExplanation(w io.Writer, r *types.ExplanationResult) {
	fmt.Fprintln(w, r.Explanation)
	for _, c := range r.Components {
		fmt.Fprintf(w, "  %-8s %s\n", c.Part, c.Description)
	}
}

func writeOptimization(w io.Writer, r *types.OptimizationResult) {
	fmt.Fprintln(w, r.Optimized)
	fmt.Fprintf(w, "Performance: %s\n", r.Performance)
	writeList(w, "Improvements", r.Improvements)
}

func writeSchemaInfo(w io.Writer, tableType string, r *types.SchemaInfo) {
	fmt.Fprintf(w, "Table type: %s\n", tableType)
	writeList(w, "Common columns", r.CommonColumns)
	writeList(w, "Relationships", r.Relationships)
	writeList(w, "Examples", r.Examples)
}

func writeScore(w io.Writer, r *types.ScoreResult) {
	fmt.Fprintf(w, "%-12s %.2f  %s\n", r.Scorer, r.Score, r.Reason)
}

func writePlan(w io.Writer, r *plan.Result) {
	fmt.Fprintln(w, r.Plan)
	if r.PlanningTimeMs > 0 || r.ExecutionTimeMs > 0 {
		fmt.Fprintf(w, "Planning: %.3f ms, execution: %.3f ms\n", r.PlanningTimeMs, r.ExecutionTimeMs)
	}
	writeList(w, "Hints", r.Hints)
}

func writeAskResult(w io.Writer, r *assistant.Result, streamed bool) {
	if !streamed {
		fmt.Fprintln(w, r.Response)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SQL:")
	fmt.Fprintln(w, r.SQL)
	fmt.Fprintln(w)
	writeValidation(w, r.Validation)
	if r.Syntax != nil {
		writeSyntax(w, r.Syntax)
	}
	fmt.Fprintln(w)
	writeExplanation(w, r.Explanation)
	fmt.Fprintln(w)
	writeOptimization(w, r.Optimization)
	if len(r.Scores) > 0 || len(r.ScoreErrors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Scores:")
		for _, s := range r.Scores {
			writeScore(w, s)
		}
		for _, e := range r.ScoreErrors {
			fmt.Fprintf(w, "%-12s FAILED  %s\n", e.Scorer, e.Message)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.String())
}
