package sqltools

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// UnknownExplanation is returned when no clause keyword is recognised.
const UnknownExplanation = "Unable to determine the purpose of this query."

type clauseRule struct {
	part        string
	re          *regexp.Regexp
	description string
	fragment    string
}

func wordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(keyword, " ", `\s+`) + `\b`)
}

// statementRules are exclusive: only the first match is reported.
var statementRules = []clauseRule{
	{part: "SELECT", re: wordPattern("SELECT"), description: "Retrieves data from the database", fragment: "This query retrieves data"},
	{part: "INSERT", re: wordPattern("INSERT"), description: "Adds new rows to a table", fragment: "This query inserts new data"},
	{part: "UPDATE", re: wordPattern("UPDATE"), description: "Modifies existing rows", fragment: "This query updates existing data"},
	{part: "DELETE", re: wordPattern("DELETE"), description: "Removes rows from a table", fragment: "This query deletes data"},
}

// clauseRules are checked independently, after FROM.
var clauseRules = []clauseRule{
	{part: "WHERE", re: wordPattern("WHERE"), description: "Filters rows using the given conditions", fragment: " filtered by specific conditions"},
	{part: "JOIN", re: wordPattern("JOIN"), description: "Combines rows from multiple tables", fragment: " combining data from multiple tables"},
	{part: "GROUP BY", re: wordPattern("GROUP BY"), description: "Groups rows that share values, usually for aggregation", fragment: " grouped by one or more columns"},
	{part: "ORDER BY", re: wordPattern("ORDER BY"), description: "Sorts the result set", fragment: " sorted in a specific order"},
	{part: "LIMIT", re: wordPattern("LIMIT"), description: "Restricts the number of rows returned", fragment: " limited to a maximum number of rows"},
}

var fromTablePattern = regexp.MustCompile(`(?i)\bFROM\s+(\w+)`)

// Explain describes sql in plain language and lists the clauses it found.
func Explain(sql string) *types.ExplanationResult {
	result := &types.ExplanationResult{Components: []types.Component{}}
	var sentence strings.Builder

	for _, rule := range statementRules {
		if rule.re.MatchString(sql) {
			result.Components = append(result.Components, types.Component{Part: rule.part, Description: rule.description})
			sentence.WriteString(rule.fragment)
			break
		}
	}

	if m := fromTablePattern.FindStringSubmatch(sql); m != nil {
		table := m[1]
		result.Components = append(result.Components, types.Component{
			Part:        "FROM",
			Description: fmt.Sprintf("Reads from the %s table", table),
		})
		fmt.Fprintf(&sentence, " from the %s table", table)
	}

	for _, rule := range clauseRules {
		if rule.re.MatchString(sql) {
			result.Components = append(result.Components, types.Component{Part: rule.part, Description: rule.description})
			sentence.WriteString(rule.fragment)
		}
	}

	explanation := strings.TrimSpace(sentence.String())
	if explanation == "" {
		result.Explanation = UnknownExplanation
		return result
	}
	// A query without a statement keyword starts with a clause fragment.
	result.Explanation = strings.ToUpper(explanation[:1]) + explanation[1:] + "."
	return result
}
