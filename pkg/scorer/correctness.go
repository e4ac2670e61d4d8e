package scorer

import (
	"context"
	"fmt"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

const (
	defaultCorrectnessConfidence = 0.8
	incorrectScore               = 0.3
)

var _ Scorer = (*CorrectnessScorer)(nil)

func init() {
	Register(Correctness, &CorrectnessScorer{})
}

// CorrectnessVerdict is the judge's answer for the correctness scorer.
type CorrectnessVerdict struct {
	IsCorrect       bool     `json:"isCorrect"`
	HasSyntaxErrors bool     `json:"hasSyntaxErrors"`
	Confidence      *float64 `json:"confidence"`
	Issues          []string `json:"issues"`
	Feedback        string   `json:"feedback"`
}

var correctnessSchema = llm.OutputSchema{
	Name: string(Correctness),
	Fields: []llm.Field{
		{Name: "isCorrect", Type: llm.FieldBoolean, Description: "the SQL is syntactically and logically correct"},
		{Name: "hasSyntaxErrors", Type: llm.FieldBoolean, Description: "the SQL would fail to parse"},
		{Name: "confidence", Type: llm.FieldNumber, Description: "confidence in this verdict, 0 to 1"},
		{Name: "issues", Type: llm.FieldStringList, Description: "specific problems found"},
		{Name: "feedback", Type: llm.FieldString, Description: "one or two sentences of feedback"},
	},
}

const correctnessPrompt = `Evaluate the following SQL for correctness.
Check syntax, keyword usage, clause order, joins and whether the query would run against a typical relational database.

SQL:
%s`

// CorrectnessScorer grades whether generated SQL is valid and correct.
type CorrectnessScorer struct{}

// Score implements Scorer.
func (*CorrectnessScorer) Score(ctx context.Context, judge llm.Judge, in Input) (*types.ScoreResult, error) {
	sql := ExtractSQL(in.Response)
	verdict, err := askJudge[CorrectnessVerdict](ctx, judge, Correctness, fmt.Sprintf(correctnessPrompt, sql), correctnessSchema)
	if err != nil {
		return nil, err
	}
	return verdict.result(), nil
}

func (v *CorrectnessVerdict) result() *types.ScoreResult {
	result := &types.ScoreResult{Scorer: string(Correctness)}
	switch {
	case v.HasSyntaxErrors:
		result.Score = 0
		result.Reason = reason("SQL has syntax errors", v.Issues, v.Feedback)
	case v.IsCorrect:
		result.Score = confidenceOr(v.Confidence, defaultCorrectnessConfidence)
		result.Reason = reason("SQL is correct", nil, v.Feedback)
	default:
		result.Score = incorrectScore
		result.Reason = reason("SQL has correctness issues", v.Issues, v.Feedback)
	}
	return result
}
