package mysqlparser

import (
	"fmt"

	"github.com/antlr4-go/antlr/v4"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// SyntaxError describes the first place the MySQL grammar rejected the input.
type SyntaxError struct {
	Message  string
	Near     string
	Position *types.Position
}

func (e *SyntaxError) Error() string {
	where := "syntax error"
	if e.Position != nil {
		where = fmt.Sprintf("syntax error at line %d, column %d", e.Position.Line, e.Position.Column)
	}
	if e.Near != "" {
		return fmt.Sprintf("%s near %q: %s", where, e.Near, e.Message)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// errorListener keeps the first error from either the lexer or the parser.
type errorListener struct {
	*antlr.DefaultErrorListener
	err *SyntaxError
}

func (l *errorListener) SyntaxError(
	_ antlr.Recognizer,
	offending any,
	line, column int,
	message string,
	_ antlr.RecognitionException,
) {
	if l.err != nil {
		return
	}
	l.err = &SyntaxError{
		Message:  message,
		Position: &types.Position{Line: int32(line), Column: int32(column)},
	}
	// Lexer errors have no token.
	if token, ok := offending.(antlr.Token); ok && token.GetTokenType() != antlr.TokenEOF {
		l.err.Near = token.GetText()
	}
}

func newErrorListener() *errorListener {
	return &errorListener{DefaultErrorListener: antlr.NewDefaultErrorListener()}
}
