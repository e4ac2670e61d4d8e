// Package mysqlparser parses MySQL statements with the ANTLR MySQL grammar.
package mysqlparser

import (
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/gedhean/mysql-parser"
)

// ParseResult is the result of parsing a MySQL script.
type ParseResult struct {
	Tree   antlr.Tree
	Tokens *antlr.CommonTokenStream
}

// ParseMySQL parses the given SQL script and returns its parse tree. A missing
// trailing semicolon is tolerated.
func ParseMySQL(statement string) (*ParseResult, error) {
	tree, tokens, err := parseStatement(addSemicolonIfNeeded(statement))
	if err != nil {
		return nil, err
	}
	return &ParseResult{Tree: tree, Tokens: tokens}, nil
}

func parseStatement(statement string) (antlr.Tree, *antlr.CommonTokenStream, error) {
	input := antlr.NewInputStream(statement)
	lexer := parser.NewMySQLLexer(input)
	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)

	p := parser.NewMySQLParser(stream)

	lexerErrors := newErrorListener()
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(lexerErrors)

	parserErrors := newErrorListener()
	p.RemoveErrorListeners()
	p.AddErrorListener(parserErrors)

	p.BuildParseTrees = true

	tree := p.Script()

	if lexerErrors.err != nil {
		return nil, nil, lexerErrors.err
	}
	if parserErrors.err != nil {
		return nil, nil, parserErrors.err
	}

	return tree, stream, nil
}

// addSemicolonIfNeeded appends a semicolon after the last default-channel
// token unless it already is one.
func addSemicolonIfNeeded(sql string) string {
	lexer := parser.NewMySQLLexer(antlr.NewInputStream(sql))
	lexerErrors := newErrorListener()
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(lexerErrors)
	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)
	stream.Fill()
	if lexerErrors.err != nil {
		// The parser reports the lexer error.
		return sql
	}
	tokens := stream.GetAllTokens()
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].GetChannel() != antlr.TokenDefaultChannel || tokens[i].GetTokenType() == parser.MySQLParserEOF {
			continue
		}

		if tokens[i].GetTokenType() == parser.MySQLParserSEMICOLON_SYMBOL {
			return sql
		}

		var result []string
		result = append(result, stream.GetTextFromInterval(antlr.NewInterval(0, tokens[i].GetTokenIndex())))
		result = append(result, ";")
		result = append(result, stream.GetTextFromInterval(antlr.NewInterval(tokens[i].GetTokenIndex()+1, tokens[len(tokens)-1].GetTokenIndex())))
		return strings.Join(result, "")
	}
	return sql
}

// tableCollector records every table reference in a script.
type tableCollector struct {
	*parser.BaseMySQLParserListener

	seen   map[string]bool
	tables []string
}

// EnterTableRef covers FROM, JOIN, INSERT, UPDATE and DELETE targets.
func (c *tableCollector) EnterTableRef(ctx *parser.TableRefContext) {
	name := normalizeTableRef(ctx.GetText())
	if name == "" || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.tables = append(c.tables, name)
}

// normalizeTableRef strips identifier quotes. MySQL table names keep their case.
func normalizeTableRef(text string) string {
	return strings.ReplaceAll(text, "`", "")
}

// TableNames returns the tables referenced by the parsed script in order of
// first appearance.
func TableNames(result *ParseResult) []string {
	if result == nil || result.Tree == nil {
		return nil
	}
	collector := &tableCollector{
		BaseMySQLParserListener: &parser.BaseMySQLParserListener{},
		seen:                    make(map[string]bool),
	}
	antlr.ParseTreeWalkerDefault.Walk(collector, result.Tree)
	return collector.tables
}
