package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

func newRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func getTextContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func decode[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &v))
	return v
}

func TestNew(t *testing.T) {
	s := New("1.0.0", zap.NewNop())
	require.NotNil(t, s.MCP())

	tools := s.MCP().ListTools()
	for _, name := range []string{ToolValidate, ToolFormat, ToolExplain, ToolOptimize, ToolSchemaInfo} {
		assert.Contains(t, tools, name)
	}
	assert.Len(t, tools, 5)

	assert.NotNil(t, New("dev", nil).logger)
}

func TestHandleValidate(t *testing.T) {
	s := New("test", zap.NewNop())
	ctx := context.Background()

	result, err := s.handleValidate(ctx, newRequest(map[string]any{
		"sql":     "delete from users",
		"dialect": "mysql",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	got := decode[types.ValidationResult](t, result)
	assert.True(t, got.IsValid)
	assert.Equal(t, "DELETE FROM users", got.Formatted)
	assert.Equal(t, []string{sqltools.WarningMissingWhere}, got.Warnings)
	assert.Equal(t, []string{sqltools.SuggestionMySQLHints}, got.Suggestions)
}

func TestHandleValidate_Strict(t *testing.T) {
	s := New("test", zap.NewNop())
	ctx := context.Background()

	result, err := s.handleValidate(ctx, newRequest(map[string]any{
		"sql":    "SELECT FROM WHERE",
		"strict": true,
	}))
	require.NoError(t, err)

	var got struct {
		IsValid bool `json:"isValid"`
		Syntax  struct {
			Valid   bool   `json:"valid"`
			Message string `json:"message"`
		} `json:"syntax"`
	}
	require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &got))
	assert.True(t, got.IsValid)
	assert.False(t, got.Syntax.Valid)
	assert.NotEmpty(t, got.Syntax.Message)

	result, err = s.handleValidate(ctx, newRequest(map[string]any{
		"sql":     "SELECT 1",
		"dialect": "sqlite",
		"strict":  true,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "unsupported_dialect", decode[ErrorResponse](t, result).Code)
}

func TestHandleValidate_InvalidParameters(t *testing.T) {
	s := New("test", zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing sql", args: map[string]any{}},
		{name: "blank sql", args: map[string]any{"sql": "   "}},
		{name: "bad dialect", args: map[string]any{"sql": "SELECT 1", "dialect": "cobol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleValidate(ctx, newRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)

			resp := decode[ErrorResponse](t, result)
			assert.True(t, resp.Error)
			assert.Equal(t, "invalid_parameters", resp.Code)
		})
	}
}

func TestHandleFormat(t *testing.T) {
	s := New("test", zap.NewNop())
	result, err := s.handleFormat(context.Background(), newRequest(map[string]any{
		"sql": "select id from users where id = 1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE id = 1", decode[formatResponse](t, result).Formatted)
}

func TestHandleExplain(t *testing.T) {
	s := New("test", zap.NewNop())
	result, err := s.handleExplain(context.Background(), newRequest(map[string]any{
		"sql": "SELECT name FROM users ORDER BY name LIMIT 5",
	}))
	require.NoError(t, err)

	got := decode[types.ExplanationResult](t, result)
	assert.Equal(t, []string{"SELECT", "FROM", "ORDER BY", "LIMIT"}, got.Parts())
}

func TestHandleOptimize(t *testing.T) {
	s := New("test", zap.NewNop())
	result, err := s.handleOptimize(context.Background(), newRequest(map[string]any{
		"sql": "SELECT id FROM a WHERE id NOT IN (SELECT a_id FROM b)",
	}))
	require.NoError(t, err)

	got := decode[types.OptimizationResult](t, result)
	assert.Equal(t, "SELECT id FROM a WHERE id NOT EXISTS (SELECT a_id FROM b)", got.Optimized)
	assert.Contains(t, got.Improvements, sqltools.NoteNotInToNotExists)
}

func TestHandleSchemaInfo(t *testing.T) {
	catalog := sqltools.NewCatalog(map[string]types.SchemaInfo{
		"invoices": {CommonColumns: []string{"id", "number"}},
	})
	s := New("test", zap.NewNop(), WithCatalog(catalog))
	ctx := context.Background()

	result, err := s.handleSchemaInfo(ctx, newRequest(map[string]any{"table_type": "Users"}))
	require.NoError(t, err)
	got := decode[schemaInfoResponse](t, result)
	assert.Equal(t, "Users", got.TableType)
	assert.Equal(t, sqltools.GetSchemaInfo("users").CommonColumns, got.CommonColumns)
	assert.Empty(t, got.DidYouMean)

	result, err = s.handleSchemaInfo(ctx, newRequest(map[string]any{"table_type": "invoices"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "number"}, decode[schemaInfoResponse](t, result).CommonColumns)

	result, err = s.handleSchemaInfo(ctx, newRequest(map[string]any{"table_type": "user"}))
	require.NoError(t, err)
	assert.Equal(t, "users", decode[schemaInfoResponse](t, result).DidYouMean)

	result, err = s.handleSchemaInfo(ctx, newRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
