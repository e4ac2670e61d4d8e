package assistant

import (
	"github.com/nsxbet/sql-assistant/pkg/llm"
	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Option is a functional option for configuring an Assistant.
type Option func(*Assistant)

// WithDialect sets the dialect requests are generated and validated for.
// The zero dialect means the default.
func WithDialect(dialect types.Dialect) Option {
	return func(a *Assistant) {
		a.dialect = dialect.OrDefault()
	}
}

// WithJudge sets the model used for scoring, replacing the completer.
//
// Example:
//
//	judge := llm.WithRetry(judgeClient, 2)
//	a := assistant.New(client, assistant.WithJudge(judge))
func WithJudge(judge llm.Judge) Option {
	return func(a *Assistant) {
		a.judge = judge
	}
}

// WithSystemMessage replaces the default system message.
func WithSystemMessage(system string) Option {
	return func(a *Assistant) {
		a.system = system
	}
}

// WithStrictSyntax runs the grammar check on generated SQL for dialects that
// have one.
func WithStrictSyntax(enabled bool) Option {
	return func(a *Assistant) {
		a.strictSyntax = enabled
	}
}

// WithCatalog adds column hints from catalog to requests that mention a
// known table type.
func WithCatalog(catalog *sqltools.Catalog) Option {
	return func(a *Assistant) {
		a.catalog = catalog
	}
}

// AskOption is a functional option for a single Ask call.
type AskOption func(*askOptions)

type askOptions struct {
	score   bool
	onChunk func(string)
}

// WithScoring grades the response with every registered scorer.
func WithScoring() AskOption {
	return func(opts *askOptions) {
		opts.score = true
	}
}

// WithStream streams the response, calling onChunk for each piece of text
// as it arrives.
//
// Example:
//
//	result, err := a.Ask(ctx, request, assistant.WithStream(func(s string) {
//	    fmt.Print(s)
//	}))
func WithStream(onChunk func(string)) AskOption {
	return func(opts *askOptions) {
		opts.onChunk = onChunk
	}
}
