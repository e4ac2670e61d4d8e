// Package assistant turns a natural-language request into analysed SQL.
//
// An Assistant sends the request to a completion model, pulls the SQL out of
// the reply and runs the deterministic text tools over it. Scoring with a
// judge model is optional.
//
// # Quick Start
//
//	client, err := llm.New(&llm.Config{Model: "gpt-4o-mini", APIKey: key}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	a := assistant.New(client, assistant.WithDialect(types.Dialect_MYSQL))
//	result, err := a.Ask(ctx, "top 10 customers by revenue this year")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.SQL)
//
// # Scoring
//
//	result, err := a.Ask(ctx, request, assistant.WithScoring())
//	for _, s := range result.Scores {
//	    fmt.Printf("%s: %.2f (%s)\n", s.Scorer, s.Score, s.Reason)
//	}
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/scorer"
	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/syntax"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

const defaultSystemMessage = "You are a SQL assistant. Answer with one %s query in a ```sql code block, " +
	"followed by a short explanation. Do not invent tables the request does not imply."

// Assistant generates SQL from natural-language requests and analyses it.
//
// Assistant is safe for concurrent use by multiple goroutines as long as the
// underlying completer and judge are.
type Assistant struct {
	completer    llm.Completer
	judge        llm.Judge
	dialect      types.Dialect
	system       string
	strictSyntax bool
	catalog      *sqltools.Catalog
}

// New creates an Assistant around completer. If completer also implements
// llm.Judge it is used as the judge unless WithJudge says otherwise.
func New(completer llm.Completer, opts ...Option) *Assistant {
	a := &Assistant{
		completer: completer,
		dialect:   types.DefaultDialect,
	}
	if judge, ok := completer.(llm.Judge); ok {
		a.judge = judge
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dialect returns the dialect requests are generated for.
func (a *Assistant) Dialect() types.Dialect {
	return a.dialect
}

func (a *Assistant) systemMessage() string {
	if a.system != "" {
		return a.system
	}
	return fmt.Sprintf(defaultSystemMessage, a.dialect)
}

// prompt adds catalog hints for table types the request mentions.
func (a *Assistant) prompt(request string) string {
	if a.catalog == nil || a.catalog.Len() == 0 {
		return request
	}

	var hints []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(request)) {
		word = strings.Trim(word, ".,;:!?\"'()")
		tableType, ok := a.catalog.Match(word)
		if !ok || seen[tableType] {
			continue
		}
		seen[tableType] = true
		info := a.catalog.Lookup(tableType)
		hints = append(hints, fmt.Sprintf("- %s: %s", tableType, strings.Join(info.CommonColumns, ", ")))
	}
	if len(hints) == 0 {
		return request
	}
	return request + "\n\nKnown tables and their columns:\n" + strings.Join(hints, "\n")
}

// Ask sends request to the completion model and analyses the SQL in its reply.
//
// The returned error covers the completion call, an empty reply and, when
// scoring was requested without a judge, configuration. Individual scorer
// failures are recorded in the Result instead.
func (a *Assistant) Ask(ctx context.Context, request string, opts ...AskOption) (*Result, error) {
	if a.completer == nil {
		return nil, errors.New("assistant: completer is required")
	}
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, errors.New("assistant: request is empty")
	}

	askOpts := &askOptions{}
	for _, opt := range opts {
		opt(askOpts)
	}
	if askOpts.score && a.judge == nil {
		return nil, errors.New("assistant: scoring requested but no judge is configured")
	}

	result := &Result{
		ID:      uuid.NewString(),
		Request: request,
		Dialect: a.dialect,
	}
	slog.Debug("Asking", "id", result.ID, "dialect", a.dialect, "request_len", len(request))

	if injection := sqltools.CheckInjection(request); injection.IsSQLi {
		slog.Warn("Request looks like a SQL injection payload", "id", result.ID, "fingerprint", injection.Fingerprint)
		result.Injection = injection
	}

	var (
		response string
		err      error
	)
	if askOpts.onChunk != nil {
		response, err = a.completer.Stream(ctx, a.prompt(request), a.systemMessage(), askOpts.onChunk)
	} else {
		response, err = a.completer.Complete(ctx, a.prompt(request), a.systemMessage())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate SQL")
	}
	if strings.TrimSpace(response) == "" {
		return nil, errors.New("assistant: model returned an empty response")
	}

	result.Response = response
	result.SQL = scorer.ExtractSQL(response)
	result.Validation = sqltools.Validate(result.SQL, a.dialect)
	result.Explanation = sqltools.Explain(result.SQL)
	result.Optimization = sqltools.Optimize(result.SQL)

	if a.strictSyntax && syntax.Supported(a.dialect) {
		report, err := syntax.Check(result.SQL, a.dialect)
		if err != nil {
			return nil, errors.Wrap(err, "failed to check syntax")
		}
		result.Syntax = report
	}

	if askOpts.score {
		in := scorer.Input{Response: response, Request: request}
		for _, outcome := range scorer.ScoreAll(ctx, a.judge, in) {
			if outcome.Err != nil {
				slog.Warn("Scorer failed", "id", result.ID, "scorer", outcome.Scorer, "error", outcome.Err)
				result.ScoreErrors = append(result.ScoreErrors, ScoreError{
					Scorer:  string(outcome.Scorer),
					Message: outcome.Err.Error(),
				})
				continue
			}
			result.Scores = append(result.Scores, outcome.Result)
		}
	}

	result.Summary = calculateSummary(result)
	return result, nil
}

// calculateSummary computes aggregate statistics for a result
func calculateSummary(r *Result) Summary {
	summary := Summary{
		Valid:       r.Validation != nil && r.Validation.IsValid,
		ScoreErrors: len(r.ScoreErrors),
	}
	if r.Syntax != nil && !r.Syntax.Valid {
		summary.Valid = false
	}
	if r.Validation != nil {
		summary.Warnings = len(r.Validation.Warnings)
		summary.Suggestions = len(r.Validation.Suggestions)
	}
	if r.Optimization != nil {
		summary.Improvements = len(r.Optimization.Improvements)
	}
	if len(r.Scores) > 0 {
		var total float64
		for _, s := range r.Scores {
			total += s.Score
		}
		summary.Scored = len(r.Scores)
		summary.MeanScore = total / float64(len(r.Scores))
	}
	return summary
}
