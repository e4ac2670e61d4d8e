package plan

import (
	"fmt"
	"strings"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Hints produced from plan text.
const (
	HintSeqScan        = "Sequential scan detected - consider adding an index if this table is large"
	HintHashJoinScan   = "Hash join with sequential scan - an index on join columns may improve performance"
	HintNestedLoop     = "Nested loop join detected - ensure join columns are indexed for better performance"
	HintSortSpill      = "Sort operation spilled to disk - consider increasing work_mem or reducing result set"
	HintBitmapHeapScan = "Bitmap heap scan detected - query may benefit from more selective conditions or better index coverage"
	HintTableScan      = "Full table scan detected - consider an index on the filtered columns"
	HintTempBTree      = "Temporary B-tree used for sorting or grouping - an index on the ORDER BY or GROUP BY columns may avoid it"
	HintModerate       = "Query execution is moderately slow - review plan for optimization opportunities"
	HintEfficient      = "Query plan looks efficient - no obvious optimization opportunities detected"
)

func hints(dialect types.Dialect, plan string, executionTimeMs float64) []string {
	var out []string

	switch dialect {
	case types.Dialect_POSTGRESQL:
		if strings.Contains(plan, "Seq Scan") {
			out = append(out, HintSeqScan)
			if strings.Contains(plan, "Hash Join") {
				out = append(out, HintHashJoinScan)
			}
		}
		if strings.Contains(plan, "Nested Loop") {
			out = append(out, HintNestedLoop)
		}
		if strings.Contains(plan, "external merge") || strings.Contains(plan, "Sort Method: external") {
			out = append(out, HintSortSpill)
		}
		if strings.Contains(plan, "Bitmap Heap Scan") {
			out = append(out, HintBitmapHeapScan)
		}

	case types.Dialect_MSSQL:
		if strings.Contains(plan, "Table Scan") || strings.Contains(plan, "Clustered Index Scan") {
			out = append(out, HintTableScan)
		}
		if strings.Contains(plan, "Nested Loops") {
			out = append(out, HintNestedLoop)
		}

	case types.Dialect_SQLITE:
		for _, line := range strings.Split(plan, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "SCAN ") && !strings.Contains(line, "USING COVERING INDEX") {
				out = append(out, HintTableScan)
				break
			}
		}
		if strings.Contains(plan, "USE TEMP B-TREE") {
			out = append(out, HintTempBTree)
		}
	}

	if executionTimeMs > 1000 {
		out = append(out, fmt.Sprintf("Query execution took %.2f ms - consider optimization if this is a frequent query", executionTimeMs))
	} else if executionTimeMs > 100 {
		out = append(out, HintModerate)
	}

	if len(out) == 0 {
		out = append(out, HintEfficient)
	}
	return out
}
