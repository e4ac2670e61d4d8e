package sqltools

import (
	"regexp"
	"strings"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Improvement notes produced by Optimize.
const (
	NoteSelectAll        = "Replace SELECT * with the specific columns you need to reduce I/O and network transfer"
	NoteIndexWhere       = "Make sure the columns used in the WHERE clause are indexed"
	NoteLeadingWildcard  = "A leading wildcard in LIKE prevents index usage; consider full-text search or a trigram index"
	NoteNotInToNotExists = "Rewrote NOT IN as NOT EXISTS, which handles NULLs predictably and usually plans better"
	NoteOrConditions     = "OR conditions in WHERE can prevent index usage; consider UNION or IN (...)"
	NoteCommaJoin        = "Use explicit JOIN ... ON syntax instead of comma-separated tables in FROM"
	NoteUseExplain       = "Use EXPLAIN or EXPLAIN ANALYZE to inspect the actual execution plan"
)

// Performance summaries.
const (
	PerformanceMultiple  = "multiple optimization opportunities"
	PerformanceOptimized = "relatively optimized"
)

var (
	leadingWildcardPattern = regexp.MustCompile(`(?i)\bLIKE\s+['"]%`)
	notInPattern           = regexp.MustCompile(`(?i)\bNOT\s+IN\b`)
	whereOrPattern         = regexp.MustCompile(`(?is)\bWHERE\b.*\bOR\b`)
	commaJoinPattern       = regexp.MustCompile(`(?i)\bFROM\s+\w+(\s+\w+)?\s*,\s*\w+`)
)

// Optimize looks for known inefficient patterns. The only rewrite applied to
// the query is NOT IN to NOT EXISTS, on every occurrence and without checking
// whether the subquery can yield NULLs.
func Optimize(sql string) *types.OptimizationResult {
	optimized := sql
	var improvements []string

	if strings.Contains(strings.ToUpper(sql), "SELECT *") {
		improvements = append(improvements, NoteSelectAll)
	}
	if wherePattern.MatchString(sql) {
		improvements = append(improvements, NoteIndexWhere)
	}
	if leadingWildcardPattern.MatchString(sql) {
		improvements = append(improvements, NoteLeadingWildcard)
	}
	if notInPattern.MatchString(sql) {
		optimized = notInPattern.ReplaceAllLiteralString(optimized, "NOT EXISTS")
		improvements = append(improvements, NoteNotInToNotExists)
	}
	if whereOrPattern.MatchString(sql) {
		improvements = append(improvements, NoteOrConditions)
	}
	if commaJoinPattern.MatchString(sql) {
		improvements = append(improvements, NoteCommaJoin)
	}
	improvements = append(improvements, NoteUseExplain)

	performance := PerformanceOptimized
	if len(improvements) > 2 {
		performance = PerformanceMultiple
	}

	return &types.OptimizationResult{
		Optimized:    optimized,
		Improvements: improvements,
		Performance:  performance,
	}
}
