package sqltools

import (
	"regexp"
	"strings"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Messages produced by Validate.
const (
	WarningNoKeywords         = "No valid SQL keywords found"
	WarningSelectAll          = "Avoid SELECT * - specify only the columns you need"
	WarningMissingWhere       = "UPDATE/DELETE without WHERE clause will affect all rows"
	SuggestionExplicitJoin    = "Specify the JOIN type explicitly (INNER JOIN, LEFT JOIN, RIGHT JOIN, FULL JOIN)"
	SuggestionPostgreSQLHints = "PostgreSQL: consider RETURNING, ILIKE for case-insensitive matching and JSONB operators where appropriate"
	SuggestionMySQLHints      = "MySQL: use backticks for reserved identifiers and LIMIT offset, count or ON DUPLICATE KEY UPDATE where appropriate"
)

var (
	validKeywordPattern = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|DROP|ALTER|FROM|WHERE|JOIN)\b`)
	mutationPattern     = regexp.MustCompile(`(?i)\b(UPDATE|DELETE)\b`)
	wherePattern        = regexp.MustCompile(`(?i)\bWHERE\b`)
	joinPattern         = regexp.MustCompile(`(?i)\bJOIN\b`)
	typedJoinPattern    = regexp.MustCompile(`(?i)\b(INNER|LEFT|RIGHT|FULL|CROSS)(\s+OUTER)?\s+JOIN\b`)
)

// Validate runs the text checks against sql and reports warnings and suggestions.
// The zero dialect is treated as PostgreSQL.
func Validate(sql string, dialect types.Dialect) *types.ValidationResult {
	result := &types.ValidationResult{
		IsValid:     true,
		Warnings:    []string{},
		Suggestions: []string{},
	}

	if !validKeywordPattern.MatchString(sql) {
		result.IsValid = false
		result.Warnings = append(result.Warnings, WarningNoKeywords)
	}

	if strings.Contains(strings.ToUpper(sql), "SELECT *") {
		result.Warnings = append(result.Warnings, WarningSelectAll)
	}

	if mutationPattern.MatchString(sql) && !wherePattern.MatchString(sql) {
		result.Warnings = append(result.Warnings, WarningMissingWhere)
	}

	if joinPattern.MatchString(sql) && !typedJoinPattern.MatchString(sql) {
		result.Suggestions = append(result.Suggestions, SuggestionExplicitJoin)
	}

	result.Formatted = Format(strings.TrimSpace(sql))

	switch dialect.OrDefault() {
	case types.Dialect_POSTGRESQL:
		result.Suggestions = append(result.Suggestions, SuggestionPostgreSQLHints)
	case types.Dialect_MYSQL:
		result.Suggestions = append(result.Suggestions, SuggestionMySQLHints)
	}

	return result
}
