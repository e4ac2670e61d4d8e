// Package pkg provides natural-language-to-SQL assistance for Go applications.
//
// SQL Assistant sends an English request to an LLM, extracts the SQL from the
// answer and analyses it with fast text tools. A judge model can grade the
// answer for correctness, intent match and readability.
//
// # Package Structure
//
// The pkg directory contains several specialized packages:
//
//   - assistant: High-level API that generates and analyses SQL (recommended starting point)
//   - sqltools: Keyword formatter, validator, explainer, optimizer and schema hints
//   - scorer: LLM-judge scorers and SQL extraction from LLM answers
//   - llm: OpenAI-compatible and Anthropic clients, retries and a mock
//   - syntax: Strict grammar check for PostgreSQL and MySQL
//   - pgparser, mysqlparser: ANTLR-based parsers behind syntax
//   - plan: Execution plans from a live database
//   - mcpserver: The text tools as MCP tools
//   - types: Core result types and the Dialect enum
//   - config: Configuration and schema catalog loading
//   - logger: Logging setup
//
// # Getting Started
//
// The text tools need no model:
//
//	result := sqltools.Validate("DELETE FROM users", types.Dialect_POSTGRESQL)
//	for _, w := range result.Warnings {
//	    fmt.Println(w)
//	}
//
// Generating SQL needs a client:
//
//	client, err := llm.New(&llm.Config{Model: "gpt-4o-mini", APIKey: key}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := assistant.New(client).Ask(ctx, "customers without orders", assistant.WithScoring())
//
// # Text Tools
//
// The text tools are keyword heuristics, not a parser. They never fail and
// always return a result:
//
//   - Format upper-cases SQL keywords on word boundaries
//   - Validate warns about SELECT *, UPDATE/DELETE without WHERE and untyped JOINs
//   - Explain lists the clauses of a query in a fixed order
//   - Optimize rewrites NOT IN as NOT EXISTS and lists improvement notes
//   - GetSchemaInfo returns the usual shape of users, products and orders tables
//
// # Scoring
//
// Each scorer asks the judge once and maps its verdict to a score in [0,1]
// deterministically. Scorers never retry; wrap the judge with llm.WithRetry
// for that. ScoreAll runs every scorer concurrently and reports each failure
// separately.
//
// # Thread Safety
//
// All public APIs are safe for concurrent use by multiple goroutines.
// Assistant instances can be reused across requests.
//
// # Documentation
//
// Examples: examples/library-usage/
package pkg
