// Package syntax runs a strict grammar check on SQL for the dialects that have
// an ANTLR grammar. It complements the keyword heuristics in sqltools.
package syntax

import (
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/nsxbet/sql-assistant/pkg/mysqlparser"
	"github.com/nsxbet/sql-assistant/pkg/pgparser"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Report is the outcome of a strict syntax check.
type Report struct {
	Dialect  types.Dialect   `json:"dialect"            yaml:"dialect"`
	Valid    bool            `json:"valid"              yaml:"valid"`
	Message  string          `json:"message,omitempty"  yaml:"message,omitempty"`
	Position *types.Position `json:"position,omitempty" yaml:"position,omitempty"`
	Tables   []string        `json:"tables,omitempty"   yaml:"tables,omitempty"`
}

// Supported reports whether Check has a grammar for dialect.
func Supported(dialect types.Dialect) bool {
	switch dialect.OrDefault() {
	case types.Dialect_POSTGRESQL, types.Dialect_MYSQL:
		return true
	}
	return false
}

// Check parses sql with the dialect's grammar. A syntax error is reported in
// the Report, not as an error; the error is reserved for unsupported dialects.
func Check(sql string, dialect types.Dialect) (*Report, error) {
	dialect = dialect.OrDefault()
	report := &Report{Dialect: dialect}

	switch dialect {
	case types.Dialect_POSTGRESQL:
		result, err := pgparser.ParsePostgreSQL(sql)
		if err != nil {
			var syntaxErr *pgparser.SyntaxError
			if !errors.As(err, &syntaxErr) {
				return nil, pkgerrors.Wrap(err, "failed to parse postgresql")
			}
			report.Message = syntaxErr.Error()
			report.Position = syntaxErr.Position
			return report, nil
		}
		report.Valid = true
		report.Tables = pgparser.TableNames(result)

	case types.Dialect_MYSQL:
		result, err := mysqlparser.ParseMySQL(sql)
		if err != nil {
			var syntaxErr *mysqlparser.SyntaxError
			if !errors.As(err, &syntaxErr) {
				return nil, pkgerrors.Wrap(err, "failed to parse mysql")
			}
			report.Message = syntaxErr.Error()
			report.Position = syntaxErr.Position
			return report, nil
		}
		report.Valid = true
		report.Tables = mysqlparser.TableNames(result)

	default:
		return nil, pkgerrors.Errorf("strict syntax check is not available for %s", dialect)
	}

	return report, nil
}
