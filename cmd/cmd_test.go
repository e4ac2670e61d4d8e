package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/sql-assistant/pkg/assistant"
	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// run executes the root command with args and returns stdout and stderr.
// Flags are reset afterwards since cobra keeps their values between runs.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		resetFlags(rootCmd)
		cfgFile = ""
		appConfig = nil
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFormatCommand(t *testing.T) {
	stdout, _, err := run(t, "", "format", "select id from users where id = 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE id = 1\n", stdout)
}

func TestValidateCommand(t *testing.T) {
	stdout, _, err := run(t, "", "validate", "delete from users")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[VALID] DELETE FROM users")
	assert.Contains(t, stdout, sqltools.WarningMissingWhere)
	assert.Contains(t, stdout, sqltools.SuggestionPostgreSQLHints)
}

func TestValidateCommand_FailOnWarning(t *testing.T) {
	_, _, err := run(t, "", "validate", "--fail-on-warning", "SELECT * FROM users")
	assert.ErrorIs(t, err, ErrWarnings)

	_, _, err = run(t, "", "validate", "--fail-on-warning", "SELECT id FROM users")
	assert.NoError(t, err)
}

func TestValidateCommand_JSON(t *testing.T) {
	stdout, _, err := run(t, "", "validate", "-o", "json", "--dialect", "mysql", "--injection", "SELECT id FROM users")
	require.NoError(t, err)

	var got struct {
		types.ValidationResult
		Injection *types.InjectionResult `json:"injection"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.True(t, got.IsValid)
	assert.Equal(t, []string{sqltools.SuggestionMySQLHints}, got.Suggestions)
	require.NotNil(t, got.Injection)
}

func TestValidateCommand_Syntax(t *testing.T) {
	stdout, _, err := run(t, "", "validate", "--syntax", "SELECT FROM WHERE")
	require.Error(t, err)
	assert.Contains(t, stdout, "Syntax (postgresql): ERROR")

	stdout, _, err = run(t, "", "validate", "--syntax", "--dialect", "mysql", "SELECT id FROM `orders`")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Syntax (mysql): OK")
	assert.Contains(t, stdout, "tables: orders")
}

func TestExplainCommand_Stdin(t *testing.T) {
	stdout, _, err := run(t, "SELECT name FROM users WHERE active = true", "explain")
	require.NoError(t, err)
	assert.Contains(t, stdout, "This query retrieves data from the users table filtered by specific conditions.")
	assert.Contains(t, stdout, "WHERE")
}

func TestOptimizeCommand_File(t *testing.T) {
	path := writeTemp(t, "q.sql", "SELECT id FROM a WHERE id NOT IN (SELECT a_id FROM b)")
	stdout, _, err := run(t, "", "optimize", "-o", "yaml", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "optimized: SELECT id FROM a WHERE id NOT EXISTS (SELECT a_id FROM b)")
	assert.Contains(t, stdout, "performance: "+sqltools.PerformanceMultiple)
}

func TestSchemaCommand(t *testing.T) {
	stdout, stderr, err := run(t, "", "schema", "user")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Table type: user")
	assert.Contains(t, stderr, `did you mean "users"`)

	catalog := writeTemp(t, "catalog.yaml", "tables:\n  invoices:\n    commonColumns: [id, number]\n")
	stdout, _, err = run(t, "", "schema", "invoices", "--catalog", catalog, "-o", "json")
	require.NoError(t, err)

	var got struct {
		TableType     string   `json:"tableType"`
		CommonColumns []string `json:"commonColumns"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "invoices", got.TableType)
	assert.Equal(t, []string{"id", "number"}, got.CommonColumns)
}

func TestCommand_Errors(t *testing.T) {
	_, _, err := run(t, "", "format")
	assert.Error(t, err, "no SQL")

	path := writeTemp(t, "q.sql", "SELECT 1")
	_, _, err = run(t, "", "format", "-f", path, "SELECT 2")
	assert.Error(t, err, "both argument and file")

	_, _, err = run(t, "", "format", "-o", "xml", "SELECT 1")
	assert.Error(t, err)

	_, _, err = run(t, "", "validate", "--dialect", "cobol", "SELECT 1")
	assert.Error(t, err)

	_, _, err = run(t, "", "plan", "SELECT 1")
	assert.Error(t, err, "missing dsn")
}

func TestPlanCommand_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "plan.db")
	stdout, _, err := run(t, "", "plan", "--dialect", "sqlite", "--dsn", dsn, "SELECT 1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Hints:")
}

// fakeOpenAI answers chat completions: judge requests (JSON response format)
// get verdict, everything else gets answer.
func fakeOpenAI(t *testing.T, answer, verdict string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))

		content := answer
		if _, ok := req["response_format"]; ok {
			content = verdict
		}
		encoded, _ := json.Marshal(content)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"1","object":"chat.completion","created":1,"model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`, encoded)
	}))
	t.Cleanup(server.Close)
	t.Setenv("SQL_ASSISTANT_LLM_ENDPOINT", server.URL+"/v1")
	t.Setenv("SQL_ASSISTANT_LLM_MODEL", "test-model")
	return server.URL
}

func TestScoreCommand(t *testing.T) {
	fakeOpenAI(t, "", `{"isCorrect": true, "confidence": 0.9}`)
	response := writeTemp(t, "answer.md", "```sql\nSELECT id FROM users\n```")

	stdout, _, err := run(t, "", "score", "--response", response, "--scorer", "correctness")
	require.NoError(t, err)
	assert.Contains(t, stdout, "correctness")
	assert.Contains(t, stdout, "0.90  SQL is correct")

	_, _, err = run(t, "", "score", "--response", response, "--scorer", "style")
	assert.Error(t, err)
}

func TestAskCommand(t *testing.T) {
	fakeOpenAI(t, "```sql\nSELECT id, name FROM users WHERE active = true\n```", `{}`)

	stdout, _, err := run(t, "", "ask", "-o", "json", "list", "active", "users")
	require.NoError(t, err)

	var got assistant.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "list active users", got.Request)
	assert.Equal(t, "SELECT id, name FROM users WHERE active = true", got.SQL)
	assert.True(t, got.Summary.Valid)
	assert.Empty(t, got.Scores)

	stdout, _, err = run(t, "", "ask", "--score", "list active users")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Scores:")
	assert.Contains(t, stdout, "SQL has correctness issues")
}
