package scorer

import (
	"regexp"
	"strings"
)

var (
	sqlFencePattern = regexp.MustCompile("(?is)```sql\\b(.*?)```")
	anyFencePattern = regexp.MustCompile("(?s)```(?:[A-Za-z0-9_+-]*[ \\t]*\\r?\\n)?(.*?)```")
)

// ExtractSQL returns the SQL inside a response: the first ```sql fenced block,
// else the first fenced block of any kind, else the response verbatim.
func ExtractSQL(response string) string {
	if m := sqlFencePattern.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := anyFencePattern.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return response
}
