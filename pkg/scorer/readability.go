package scorer

import (
	"context"
	"fmt"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

const (
	defaultReadabilityConfidence = 0.7
	readableBase                 = 0.7
	styleBonus                   = 0.1
	unreadableFactor             = 0.3
)

var _ Scorer = (*ReadabilityScorer)(nil)

func init() {
	Register(Readability, &ReadabilityScorer{})
}

// ReadabilityVerdict is the judge's answer for the readability scorer.
type ReadabilityVerdict struct {
	IsReadable     bool     `json:"isReadable"`
	UsesFormatting bool     `json:"usesFormatting"`
	UsesAliases    bool     `json:"usesAliases"`
	HasComments    bool     `json:"hasComments"`
	Confidence     *float64 `json:"confidence"`
	Suggestions    []string `json:"suggestions"`
	Feedback       string   `json:"feedback"`
}

var readabilitySchema = llm.OutputSchema{
	Name: string(Readability),
	Fields: []llm.Field{
		{Name: "isReadable", Type: llm.FieldBoolean, Description: "a colleague could understand the SQL quickly"},
		{Name: "usesFormatting", Type: llm.FieldBoolean, Description: "clauses are split across lines and indented"},
		{Name: "usesAliases", Type: llm.FieldBoolean, Description: "tables or expressions use meaningful aliases"},
		{Name: "hasComments", Type: llm.FieldBoolean, Description: "the SQL contains explanatory comments"},
		{Name: "confidence", Type: llm.FieldNumber, Description: "confidence in this verdict, 0 to 1"},
		{Name: "suggestions", Type: llm.FieldStringList, Description: "concrete readability improvements"},
		{Name: "feedback", Type: llm.FieldString, Description: "one or two sentences of feedback"},
	},
}

const readabilityPrompt = `Rate the readability of the following SQL.
Look at formatting and indentation, naming and aliases, comments and overall structure.

SQL:
%s`

// ReadabilityScorer grades how easy generated SQL is to read.
type ReadabilityScorer struct{}

// Score implements Scorer.
func (*ReadabilityScorer) Score(ctx context.Context, judge llm.Judge, in Input) (*types.ScoreResult, error) {
	sql := ExtractSQL(in.Response)
	verdict, err := askJudge[ReadabilityVerdict](ctx, judge, Readability, fmt.Sprintf(readabilityPrompt, sql), readabilitySchema)
	if err != nil {
		return nil, err
	}
	return verdict.result(), nil
}

func (v *ReadabilityVerdict) styles() []string {
	var styles []string
	if v.UsesFormatting {
		styles = append(styles, "formatted")
	}
	if v.UsesAliases {
		styles = append(styles, "uses aliases")
	}
	if v.HasComments {
		styles = append(styles, "commented")
	}
	return styles
}

func (v *ReadabilityVerdict) result() *types.ScoreResult {
	confidence := confidenceOr(v.Confidence, defaultReadabilityConfidence)
	if !v.IsReadable {
		return &types.ScoreResult{
			Scorer: string(Readability),
			Score:  unreadableFactor * confidence,
			Reason: reason("SQL is hard to read", v.Suggestions, v.Feedback),
		}
	}

	styles := v.styles()
	return &types.ScoreResult{
		Scorer: string(Readability),
		Score:  clamp(confidence * (readableBase + styleBonus*float64(len(styles)))),
		Reason: reason("SQL is readable", styles, v.Feedback),
	}
}
