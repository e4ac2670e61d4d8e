package sqltools

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

func TestValidate_NoKeywords(t *testing.T) {
	inputs := []string{"", "hello world", "selector of fromage", "   "}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			result := Validate(input, types.Dialect_UNSPECIFIED)
			assert.False(t, result.IsValid)
			assert.NotEmpty(t, result.Warnings)
			assert.Equal(t, WarningNoKeywords, result.Warnings[0])
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name        string
		sql         string
		contains    []string
		notContains []string
	}{
		{
			name:     "select star",
			sql:      "SELECT * FROM users",
			contains: []string{WarningSelectAll},
		},
		{
			name:     "lowercase select star",
			sql:      "select * from users",
			contains: []string{WarningSelectAll},
		},
		{
			name:     "update without where",
			sql:      "UPDATE users SET x=1",
			contains: []string{WarningMissingWhere},
		},
		{
			name:        "update with where",
			sql:         "UPDATE users SET x=1 WHERE id=1",
			notContains: []string{WarningMissingWhere},
		},
		{
			name:     "delete without where",
			sql:      "DELETE FROM sessions",
			contains: []string{WarningMissingWhere},
		},
		{
			name:        "explicit columns",
			sql:         "SELECT id FROM users WHERE id = 1",
			notContains: []string{WarningSelectAll, WarningMissingWhere, WarningNoKeywords},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.sql, types.Dialect_POSTGRESQL)
			assert.True(t, result.IsValid)
			for _, w := range tt.contains {
				assert.Contains(t, result.Warnings, w)
			}
			for _, w := range tt.notContains {
				assert.NotContains(t, result.Warnings, w)
			}
		})
	}
}

func TestValidate_JoinSuggestion(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{sql: "SELECT a.id FROM a JOIN b ON a.id = b.id", want: true},
		{sql: "SELECT a.id FROM a INNER JOIN b ON a.id = b.id", want: false},
		{sql: "SELECT a.id FROM a left outer join b ON a.id = b.id", want: false},
		{sql: "SELECT a.id FROM a CROSS JOIN b", want: false},
		{sql: "SELECT id FROM a", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			result := Validate(tt.sql, types.Dialect_SQLITE)
			if tt.want {
				assert.Contains(t, result.Suggestions, SuggestionExplicitJoin)
			} else {
				assert.NotContains(t, result.Suggestions, SuggestionExplicitJoin)
			}
		})
	}
}

func TestValidate_DialectSuggestions(t *testing.T) {
	sql := "SELECT * FROM a JOIN b ON a.id = b.id"

	assert.Equal(t, []string{SuggestionExplicitJoin, SuggestionPostgreSQLHints}, Validate(sql, types.Dialect_UNSPECIFIED).Suggestions)
	assert.Equal(t, []string{SuggestionExplicitJoin, SuggestionPostgreSQLHints}, Validate(sql, types.Dialect_POSTGRESQL).Suggestions)
	assert.Equal(t, []string{SuggestionExplicitJoin, SuggestionMySQLHints}, Validate(sql, types.Dialect_MYSQL).Suggestions)
	assert.Equal(t, []string{SuggestionExplicitJoin}, Validate(sql, types.Dialect_ORACLE).Suggestions)
	assert.Equal(t, []string{SuggestionExplicitJoin}, Validate(sql, types.Dialect_MSSQL).Suggestions)
}

func TestValidate_Formatted(t *testing.T) {
	result := Validate("  select id from users where id = 1  ", types.Dialect_MYSQL)
	assert.Equal(t, "SELECT id\nFROM users\nWHERE id = 1", result.Formatted)
}

func TestValidate_WarningOrder(t *testing.T) {
	result := Validate("DELETE * FROM t", types.Dialect_POSTGRESQL)
	assert.Equal(t, []string{WarningMissingWhere}, result.Warnings)

	result = Validate("UPDATE t SET a = (SELECT * FROM u)", types.Dialect_POSTGRESQL)
	assert.Equal(t, []string{WarningSelectAll, WarningMissingWhere}, result.Warnings)
}
