package scorer

import (
	"context"
	"fmt"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

const (
	defaultIntentConfidence = 0.9
	intentMismatchScore     = 0.2
)

var _ Scorer = (*IntentMatchScorer)(nil)

func init() {
	Register(IntentMatch, &IntentMatchScorer{})
}

// IntentVerdict is the judge's answer for the intent-match scorer.
type IntentVerdict struct {
	MatchesIntent   bool     `json:"matchesIntent"`
	Confidence      *float64 `json:"confidence"`
	MissingElements []string `json:"missingElements"`
	Reasoning       string   `json:"reasoning"`
}

var intentSchema = llm.OutputSchema{
	Name: string(IntentMatch),
	Fields: []llm.Field{
		{Name: "matchesIntent", Type: llm.FieldBoolean, Description: "the SQL does what the user asked for"},
		{Name: "confidence", Type: llm.FieldNumber, Description: "confidence in this verdict, 0 to 1"},
		{Name: "missingElements", Type: llm.FieldStringList, Description: "parts of the request the SQL does not cover"},
		{Name: "reasoning", Type: llm.FieldString, Description: "short explanation of the verdict"},
	},
}

const intentPrompt = `Decide whether the SQL below satisfies the user's request.
Consider the tables involved, filters, grouping, ordering and the columns returned.

User request:
%s

SQL:
%s`

// IntentMatchScorer grades whether generated SQL answers the user's request.
type IntentMatchScorer struct{}

// Score implements Scorer.
func (*IntentMatchScorer) Score(ctx context.Context, judge llm.Judge, in Input) (*types.ScoreResult, error) {
	sql := ExtractSQL(in.Response)
	verdict, err := askJudge[IntentVerdict](ctx, judge, IntentMatch, fmt.Sprintf(intentPrompt, in.Request, sql), intentSchema)
	if err != nil {
		return nil, err
	}
	return verdict.result(), nil
}

// The mismatch score ignores confidence.
func (v *IntentVerdict) result() *types.ScoreResult {
	if v.MatchesIntent {
		return &types.ScoreResult{
			Scorer: string(IntentMatch),
			Score:  confidenceOr(v.Confidence, defaultIntentConfidence),
			Reason: reason("SQL matches the request", nil, v.Reasoning),
		}
	}
	return &types.ScoreResult{
		Scorer: string(IntentMatch),
		Score:  intentMismatchScore,
		Reason: reason("SQL does not match the request", v.MissingElements, v.Reasoning),
	}
}
