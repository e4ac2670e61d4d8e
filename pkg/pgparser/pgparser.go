// Package pgparser provides PostgreSQL SQL parsing functionality.
//
// This package wraps the Bytebase PostgreSQL grammar to report syntax errors
// with positions and to list the tables a statement references.
package pgparser

import (
	"fmt"
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/bytebase/parser/postgresql"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// ParseResult contains the parsed SQL statement tree and tokens.
type ParseResult struct {
	Tree   antlr.Tree
	Tokens *antlr.CommonTokenStream
}

// SyntaxError represents a SQL syntax error with position information.
type SyntaxError struct {
	Message  string
	Position *types.Position
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("syntax error at line %d, column %d: %s",
			e.Position.Line, e.Position.Column, e.Message)
	}
	return fmt.Sprintf("syntax error: %s", e.Message)
}

// syntaxErrorListener keeps the first syntax error reported during parsing.
type syntaxErrorListener struct {
	*antlr.DefaultErrorListener
	err *SyntaxError
}

// SyntaxError is called when a syntax error is encountered.
func (l *syntaxErrorListener) SyntaxError(
	_ antlr.Recognizer,
	_ interface{},
	line, column int,
	msg string,
	_ antlr.RecognitionException,
) {
	if l.err == nil {
		l.err = &SyntaxError{
			Message: msg,
			Position: &types.Position{
				Line:   int32(line),
				Column: int32(column),
			},
		}
	}
}

// ParsePostgreSQL parses one or more PostgreSQL statements and returns the parse tree.
//
// Example:
//
//	result, err := pgparser.ParsePostgreSQL("SELECT id FROM users;")
//	if err != nil {
//	    // err is a *SyntaxError
//	}
//	tables := pgparser.TableNames(result)
func ParsePostgreSQL(sql string) (*ParseResult, error) {
	inputStream := antlr.NewInputStream(sql)
	lexer := parser.NewPostgreSQLLexer(inputStream)

	lexerErrorListener := &syntaxErrorListener{}
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(lexerErrorListener)

	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)

	p := parser.NewPostgreSQLParser(stream)
	p.BuildParseTrees = true

	parserErrorListener := &syntaxErrorListener{}
	p.RemoveErrorListeners()
	p.AddErrorListener(parserErrorListener)

	tree := p.Root()

	if lexerErrorListener.err != nil {
		return nil, lexerErrorListener.err
	}
	if parserErrorListener.err != nil {
		return nil, parserErrorListener.err
	}
	if tree == nil {
		return nil, &SyntaxError{
			Message: "failed to parse SQL statement",
		}
	}

	return &ParseResult{
		Tree:   tree,
		Tokens: stream,
	}, nil
}

// tableCollector records every relation a statement reads or writes.
type tableCollector struct {
	*parser.BasePostgreSQLParserListener

	seen   map[string]bool
	tables []string
}

func (c *tableCollector) add(ctx parser.IQualified_nameContext) {
	if ctx == nil {
		return
	}
	name := strings.Join(NormalizePostgreSQLQualifiedName(ctx), ".")
	if name == "" || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.tables = append(c.tables, name)
}

// EnterRelation_expr covers FROM, JOIN, UPDATE and DELETE targets.
func (c *tableCollector) EnterRelation_expr(ctx *parser.Relation_exprContext) {
	c.add(ctx.Qualified_name())
}

// EnterInsertstmt covers INSERT targets.
func (c *tableCollector) EnterInsertstmt(ctx *parser.InsertstmtContext) {
	if ctx.Insert_target() != nil {
		c.add(ctx.Insert_target().Qualified_name())
	}
}

// TableNames returns the normalized names of the tables referenced by the
// parsed statements, in order of first appearance.
func TableNames(result *ParseResult) []string {
	if result == nil || result.Tree == nil {
		return nil
	}
	collector := &tableCollector{
		BasePostgreSQLParserListener: &parser.BasePostgreSQLParserListener{},
		seen:                         make(map[string]bool),
	}
	antlr.ParseTreeWalkerDefault.Walk(collector, result.Tree)
	return collector.tables
}

// NormalizePostgreSQLQualifiedName normalizes a qualified name (schema.table).
// Returns a slice of name parts (e.g., ["schema", "table"]).
func NormalizePostgreSQLQualifiedName(ctx parser.IQualified_nameContext) []string {
	if ctx == nil {
		return []string{}
	}

	res := []string{NormalizePostgreSQLColid(ctx.Colid())}

	if ctx.Indirection() != nil {
		res = append(res, normalizePostgreSQLIndirection(ctx.Indirection())...)
	}
	return res
}

func normalizePostgreSQLIndirection(ctx parser.IIndirectionContext) []string {
	if ctx == nil {
		return []string{}
	}

	var res []string
	for _, child := range ctx.AllIndirection_el() {
		res = append(res, normalizePostgreSQLIndirectionEl(child))
	}
	return res
}

func normalizePostgreSQLIndirectionEl(ctx parser.IIndirection_elContext) string {
	if ctx == nil {
		return ""
	}

	if ctx.DOT() != nil {
		if ctx.STAR() != nil {
			return "*"
		}
		return normalizePostgreSQLCollabel(ctx.Attr_name().Collabel())
	}
	return ctx.GetText()
}

func normalizePostgreSQLCollabel(ctx parser.ICollabelContext) string {
	if ctx == nil {
		return ""
	}
	if ctx.Identifier() != nil {
		return normalizePostgreSQLIdentifier(ctx.Identifier())
	}
	return strings.ToLower(ctx.GetText())
}

// NormalizePostgreSQLColid normalizes a column identifier.
func NormalizePostgreSQLColid(ctx parser.IColidContext) string {
	if ctx == nil {
		return ""
	}

	if ctx.Identifier() != nil {
		return normalizePostgreSQLIdentifier(ctx.Identifier())
	}

	// Non-quoted keywords used as names fold to lower case.
	return strings.ToLower(ctx.GetText())
}

// normalizePostgreSQLIdentifier folds unquoted identifiers to lower case and
// unquotes quoted ones.
func normalizePostgreSQLIdentifier(ctx parser.IIdentifierContext) string {
	if ctx == nil {
		return ""
	}

	if ctx.QuotedIdentifier() != nil {
		return unquoteIdentifier(ctx.QuotedIdentifier().GetText())
	}

	if ctx.UnicodeQuotedIdentifier() != nil {
		text := ctx.UnicodeQuotedIdentifier().GetText()
		if len(text) > 3 && strings.HasPrefix(strings.ToUpper(text), `U&"`) {
			return unquoteIdentifier(text[2:])
		}
		return text
	}

	return strings.ToLower(ctx.GetText())
}

// unquoteIdentifier removes the surrounding quotes and unescapes doubled quotes.
func unquoteIdentifier(s string) string {
	if len(s) < 2 {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
}
