// Package plan asks a live database for the execution plan of a query.
//
// Supported dialects and their database/sql drivers:
//
//	postgresql  pgx (github.com/jackc/pgx/v5/stdlib)   EXPLAIN
//	mssql       sqlserver (github.com/microsoft/go-mssqldb)  SET SHOWPLAN_TEXT ON
//	sqlite      sqlite (modernc.org/sqlite)            EXPLAIN QUERY PLAN
//
// None of these execute the query unless Analyze is requested, which is only
// allowed for read-only statements on PostgreSQL.
package plan

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Result holds the execution plan of one query.
type Result struct {
	Dialect types.Dialect `json:"dialect" yaml:"dialect"`
	// Plan is the full plan as text, one node per line.
	Plan            string   `json:"plan"                        yaml:"plan"`
	ExecutionTimeMs float64  `json:"executionTimeMs,omitempty"   yaml:"executionTimeMs,omitempty"`
	PlanningTimeMs  float64  `json:"planningTimeMs,omitempty"    yaml:"planningTimeMs,omitempty"`
	Hints           []string `json:"hints"                       yaml:"hints"`
}

// DriverName returns the database/sql driver registered for dialect.
func DriverName(dialect types.Dialect) (string, error) {
	switch dialect.OrDefault() {
	case types.Dialect_POSTGRESQL:
		return "pgx", nil
	case types.Dialect_MSSQL:
		return "sqlserver", nil
	case types.Dialect_SQLITE:
		return "sqlite", nil
	}
	return "", errors.Errorf("live plans are not available for %s", dialect)
}

// Runner explains queries against one database.
type Runner struct {
	db      *sql.DB
	dialect types.Dialect
	analyze bool
	ownedDB bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithAnalyze makes PostgreSQL run the query and report actual timings.
func WithAnalyze(enabled bool) Option {
	return func(r *Runner) {
		r.analyze = enabled
	}
}

// Open connects to dsn with the dialect's driver. The Runner owns the
// connection and closes it in Close.
func Open(ctx context.Context, dialect types.Dialect, dsn string, opts ...Option) (*Runner, error) {
	driver, err := DriverName(dialect)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s connection", dialect)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s", dialect)
	}

	r := NewRunner(db, dialect, opts...)
	r.ownedDB = true
	return r, nil
}

// NewRunner wraps an existing connection. The caller keeps ownership of db.
func NewRunner(db *sql.DB, dialect types.Dialect, opts ...Option) *Runner {
	r := &Runner{db: db, dialect: dialect.OrDefault()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close releases the connection if the Runner opened it.
func (r *Runner) Close() error {
	if r.ownedDB && r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Explain returns the execution plan of query.
func (r *Runner) Explain(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimRight(strings.TrimSpace(query), ";")
	if query == "" {
		return nil, errors.New("query is empty")
	}

	slog.Debug("Explaining query", "dialect", r.dialect, "analyze", r.analyze)

	var (
		lines []string
		err   error
	)
	switch r.dialect {
	case types.Dialect_POSTGRESQL:
		lines, err = r.explainPostgres(ctx, query)
	case types.Dialect_MSSQL:
		lines, err = r.explainMSSQL(ctx, query)
	case types.Dialect_SQLITE:
		lines, err = r.explainSQLite(ctx, query)
	default:
		return nil, errors.Errorf("live plans are not available for %s", r.dialect)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Dialect: r.dialect,
		Plan:    strings.Join(lines, "\n"),
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Execution Time:") {
			fmt.Sscanf(line, "Execution Time: %f ms", &result.ExecutionTimeMs)
		} else if strings.HasPrefix(line, "Planning Time:") {
			fmt.Sscanf(line, "Planning Time: %f ms", &result.PlanningTimeMs)
		}
	}
	result.Hints = hints(r.dialect, result.Plan, result.ExecutionTimeMs)
	return result, nil
}

func (r *Runner) explainPostgres(ctx context.Context, query string) ([]string, error) {
	if !r.analyze {
		rows, err := r.db.QueryContext(ctx, "EXPLAIN (FORMAT TEXT) "+query)
		if err != nil {
			return nil, errors.Wrap(err, "EXPLAIN failed")
		}
		defer rows.Close()
		return collectLines(rows, 0)
	}

	if !isReadOnly(query) {
		return nil, errors.New("EXPLAIN ANALYZE runs the query and is only allowed for SELECT statements")
	}

	// ANALYZE executes the statement. The read-only transaction makes the
	// server refuse writes the keyword check missed, and nothing is committed.
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin read-only transaction")
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "EXPLAIN (ANALYZE, BUFFERS, FORMAT TEXT) "+query)
	if err != nil {
		return nil, errors.Wrap(err, "EXPLAIN ANALYZE failed")
	}
	defer rows.Close()
	return collectLines(rows, 0)
}

// explainMSSQL needs a single connection: SHOWPLAN_TEXT is session state.
func (r *Runner) explainMSSQL(ctx context.Context, query string) ([]string, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire connection")
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SET SHOWPLAN_TEXT ON"); err != nil {
		return nil, errors.Wrap(err, "failed to enable showplan")
	}
	defer conn.ExecContext(context.Background(), "SET SHOWPLAN_TEXT OFF")

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "EXPLAIN query failed")
	}
	defer rows.Close()

	// The first result set echoes the statement, the following ones hold the plan.
	var lines []string
	for set := 0; ; set++ {
		setLines, err := collectLines(rows, 0)
		if err != nil {
			return nil, err
		}
		if set > 0 {
			lines = append(lines, setLines...)
		}
		if !rows.NextResultSet() {
			break
		}
	}
	return lines, nil
}

// explainSQLite keeps the detail column of EXPLAIN QUERY PLAN.
func (r *Runner) explainSQLite(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+query)
	if err != nil {
		return nil, errors.Wrap(err, "EXPLAIN QUERY PLAN failed")
	}
	defer rows.Close()
	return collectLines(rows, -1)
}

// collectLines reads one text column from every row. A negative column
// counts from the end.
func collectLines(rows *sql.Rows, column int) ([]string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read plan columns")
	}
	if len(columns) == 0 {
		return nil, nil
	}
	if column < 0 {
		column += len(columns)
	}
	if column < 0 || column >= len(columns) {
		return nil, errors.Errorf("plan has %d columns, want column %d", len(columns), column)
	}

	var lines []string
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "failed to scan plan output")
		}
		switch v := values[column].(type) {
		case string:
			lines = append(lines, v)
		case []byte:
			lines = append(lines, string(v))
		case nil:
		default:
			lines = append(lines, fmt.Sprint(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading plan output")
	}
	return lines, nil
}

var writeKeyword = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|MERGE|TRUNCATE|DROP|ALTER|CREATE|GRANT|REVOKE|COPY|CALL|LOCK)\b|\bINTO\b`)

// isReadOnly accepts query-only statements that mention no write keyword
// anywhere, including inside CTEs and after any whitespace.
func isReadOnly(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH", "VALUES", "TABLE":
		return !writeKeyword.MatchString(query)
	}
	return false
}
