package sqltools

import (
	"regexp"
	"strings"
)

// formatKeywords is applied in order. JOIN comes before INNER/LEFT/RIGHT JOIN and
// FROM before DELETE FROM, so the earlier substitution splits the longer keyword.
var formatKeywords = []string{
	"SELECT",
	"FROM",
	"WHERE",
	"JOIN",
	"INNER JOIN",
	"LEFT JOIN",
	"RIGHT JOIN",
	"GROUP BY",
	"HAVING",
	"ORDER BY",
	"LIMIT",
	"OFFSET",
	"INSERT INTO",
	"VALUES",
	"UPDATE",
	"SET",
	"DELETE FROM",
}

type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	formatPatterns = compileKeywordPatterns(formatKeywords)
)

func compileKeywordPatterns(keywords []string) []keywordPattern {
	patterns := make([]keywordPattern, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, keywordPattern{
			keyword: kw,
			re:      regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`),
		})
	}
	return patterns
}

// Format puts every recognised clause keyword on its own line, upper-cased.
//
// Example:
//
//	Format("select id from users where id = 1")
//	// SELECT id
//	// FROM users
//	// WHERE id = 1
func Format(sql string) string {
	text := whitespaceRun.ReplaceAllString(sql, " ")
	for _, p := range formatPatterns {
		text = p.re.ReplaceAllLiteralString(text, "\n"+p.keyword)
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
