package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

const activeUsersResponse = "Here you go:\n```sql\nSELECT id, name FROM users WHERE active = true\n```\nThis lists active users."

func completing(response string) *llm.MockClient {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string) (string, error) {
		return response, nil
	}
	return mock
}

func TestNew(t *testing.T) {
	mock := llm.NewMockClient()
	a := New(mock)
	require.NotNil(t, a)
	assert.Equal(t, types.Dialect_POSTGRESQL, a.Dialect())
	assert.Same(t, mock, a.judge)

	a = New(mock, WithDialect(types.Dialect_MYSQL))
	assert.Equal(t, types.Dialect_MYSQL, a.Dialect())
	assert.Contains(t, a.systemMessage(), "mysql")

	a = New(mock, WithDialect(types.Dialect_UNSPECIFIED), WithSystemMessage("be brief"))
	assert.Equal(t, types.Dialect_POSTGRESQL, a.Dialect())
	assert.Equal(t, "be brief", a.systemMessage())
}

func TestAsk(t *testing.T) {
	mock := completing(activeUsersResponse)
	var gotPrompt, gotSystem string
	mock.CompleteFunc = func(ctx context.Context, prompt, system string) (string, error) {
		gotPrompt, gotSystem = prompt, system
		return activeUsersResponse, nil
	}

	result, err := New(mock).Ask(context.Background(), "  list active users  ")
	require.NoError(t, err)

	assert.Equal(t, "list active users", gotPrompt)
	assert.Contains(t, gotSystem, "postgresql")
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "list active users", result.Request)
	assert.Equal(t, activeUsersResponse, result.Response)
	assert.Equal(t, "SELECT id, name FROM users WHERE active = true", result.SQL)

	assert.True(t, result.Validation.IsValid)
	assert.Empty(t, result.Validation.Warnings)
	assert.Equal(t, []string{sqltools.SuggestionPostgreSQLHints}, result.Validation.Suggestions)
	assert.Equal(t, []string{"SELECT", "FROM", "WHERE"}, result.Explanation.Parts())
	assert.Equal(t, []string{sqltools.NoteIndexWhere, sqltools.NoteUseExplain}, result.Optimization.Improvements)
	assert.Nil(t, result.Syntax)
	assert.Nil(t, result.Injection)
	assert.Empty(t, result.Scores)

	assert.True(t, result.IsValid())
	assert.True(t, result.IsClean())
	assert.Equal(t, 0, mock.JudgeCalls())
}

func TestAsk_UniqueIDs(t *testing.T) {
	a := New(completing(activeUsersResponse))
	first, err := a.Ask(context.Background(), "list active users")
	require.NoError(t, err)
	second, err := a.Ask(context.Background(), "list active users")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAsk_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(nil).Ask(ctx, "list users")
	assert.Error(t, err)

	_, err = New(completing(activeUsersResponse)).Ask(ctx, "   ")
	assert.Error(t, err)

	_, err = New(completing("  \n")).Ask(ctx, "list users")
	assert.Error(t, err)

	failing := llm.NewMockClient()
	failing.CompleteFunc = func(ctx context.Context, prompt, system string) (string, error) {
		return "", llm.NewError(llm.ErrorTypeEndpoint, "connection refused", true, nil)
	}
	_, err = New(failing).Ask(ctx, "list users")
	require.Error(t, err)
	assert.True(t, llm.IsRetryable(err))
	assert.Contains(t, err.Error(), "failed to generate SQL")
}

func TestAsk_ScoringWithoutJudge(t *testing.T) {
	completer := completerOnly{response: activeUsersResponse}
	_, err := New(completer).Ask(context.Background(), "list users", WithScoring())
	assert.Error(t, err)

	result, err := New(completer).Ask(context.Background(), "list users")
	require.NoError(t, err)
	assert.Empty(t, result.Scores)
}

func TestAsk_Scoring(t *testing.T) {
	mock := completing(activeUsersResponse)
	mock.JudgeFunc = llm.StaticJudge(`{"isCorrect": true, "matchesIntent": true, "isReadable": true,
		"usesFormatting": true, "usesAliases": true, "confidence": 1}`)

	result, err := New(mock).Ask(context.Background(), "list active users", WithScoring())
	require.NoError(t, err)

	require.Len(t, result.Scores, 3)
	assert.Empty(t, result.ScoreErrors)
	assert.Equal(t, 3, mock.JudgeCalls())

	correctness, ok := result.Score("correctness")
	require.True(t, ok)
	assert.InDelta(t, 1.0, correctness.Score, 1e-9)

	readability, ok := result.Score("readability")
	require.True(t, ok)
	assert.InDelta(t, 0.9, readability.Score, 1e-9)

	assert.Equal(t, 3, result.Summary.Scored)
	assert.InDelta(t, 2.9/3, result.Summary.MeanScore, 1e-9)

	for _, prompt := range mock.JudgePrompts() {
		assert.Contains(t, prompt, "SELECT id, name FROM users WHERE active = true")
	}
}

func TestAsk_SeparateJudgeAndScorerFailure(t *testing.T) {
	mock := completing(activeUsersResponse)
	judge := llm.NewMockClient()
	judge.JudgeFunc = func(ctx context.Context, prompt string, schema llm.OutputSchema) (json.RawMessage, error) {
		if schema.Name == "intentMatch" {
			return nil, errors.New("judge unavailable")
		}
		return json.RawMessage(`{}`), nil
	}

	result, err := New(mock, WithJudge(judge)).Ask(context.Background(), "list active users", WithScoring())
	require.NoError(t, err)

	assert.Equal(t, 0, mock.JudgeCalls())
	assert.Equal(t, 3, judge.JudgeCalls())
	require.Len(t, result.Scores, 2)
	require.Len(t, result.ScoreErrors, 1)
	assert.Equal(t, "intentMatch", result.ScoreErrors[0].Scorer)
	assert.Contains(t, result.ScoreErrors[0].Message, "judge unavailable")
	assert.False(t, result.IsClean())

	_, ok := result.Score("intentMatch")
	assert.False(t, ok)
}

func TestAsk_Stream(t *testing.T) {
	mock := llm.NewMockClient()
	mock.StreamFunc = func(ctx context.Context, prompt, system string, onChunk func(string)) (string, error) {
		chunks := []string{"```sql\n", "SELECT 1", "\n```"}
		for _, c := range chunks {
			onChunk(c)
		}
		return strings.Join(chunks, ""), nil
	}

	var streamed strings.Builder
	result, err := New(mock).Ask(context.Background(), "one", WithStream(func(s string) {
		streamed.WriteString(s)
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, mock.StreamCalls())
	assert.Equal(t, 0, mock.CompleteCalls())
	assert.Equal(t, result.Response, streamed.String())
	assert.Equal(t, "SELECT 1", result.SQL)
}

func TestAsk_StrictSyntax(t *testing.T) {
	result, err := New(completing("```sql\nSELECT FROM WHERE\n```"), WithStrictSyntax(true)).
		Ask(context.Background(), "broken")
	require.NoError(t, err)

	require.NotNil(t, result.Syntax)
	assert.False(t, result.Syntax.Valid)
	assert.True(t, result.Validation.IsValid)
	assert.False(t, result.IsValid())

	result, err = New(completing(activeUsersResponse), WithStrictSyntax(true)).
		Ask(context.Background(), "list active users")
	require.NoError(t, err)
	require.NotNil(t, result.Syntax)
	assert.True(t, result.Syntax.Valid)
	assert.Equal(t, []string{"users"}, result.Syntax.Tables)

	result, err = New(completing(activeUsersResponse), WithStrictSyntax(true), WithDialect(types.Dialect_SQLITE)).
		Ask(context.Background(), "list active users")
	require.NoError(t, err)
	assert.Nil(t, result.Syntax)
}

func TestAsk_Injection(t *testing.T) {
	result, err := New(completing(activeUsersResponse)).Ask(context.Background(), "1' OR '1'='1")
	require.NoError(t, err)
	require.NotNil(t, result.Injection)
	assert.True(t, result.Injection.IsSQLi)
}

func TestAsk_CatalogHints(t *testing.T) {
	catalog := sqltools.NewCatalog(map[string]types.SchemaInfo{
		"invoices": {CommonColumns: []string{"id", "number", "amount"}},
	})

	var gotPrompt string
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string) (string, error) {
		gotPrompt = prompt
		return "SELECT number FROM invoices", nil
	}

	a := New(mock, WithCatalog(catalog))
	_, err := a.Ask(context.Background(), "total of each invoice?")
	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "- invoices: id, number, amount")

	_, err = a.Ask(context.Background(), "count users")
	require.NoError(t, err)
	assert.Equal(t, "count users", gotPrompt)

	_, err = a.Ask(context.Background(), "list invoices with an invoice total above the invoice average")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(gotPrompt, "- invoices:"))
}

// completerOnly implements llm.Completer but not llm.Judge.
type completerOnly struct {
	response string
}

func (c completerOnly) Complete(ctx context.Context, prompt, system string) (string, error) {
	return c.response, nil
}

func (c completerOnly) Stream(ctx context.Context, prompt, system string, onChunk func(string)) (string, error) {
	onChunk(c.response)
	return c.response, nil
}
