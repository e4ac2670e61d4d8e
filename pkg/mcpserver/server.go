// Package mcpserver exposes the SQL text tools as MCP tools.
package mcpserver

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/nsxbet/sql-assistant/pkg/sqltools"
)

// Name is the MCP server name reported to clients.
const Name = "sql-assistant"

// Server wraps the mcp-go MCPServer with the SQL tools registered.
type Server struct {
	mcp     *server.MCPServer
	logger  *zap.Logger
	catalog *sqltools.Catalog
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog makes get_schema_info consult catalog before the built-in
// records.
func WithCatalog(catalog *sqltools.Catalog) Option {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// New creates a server with every SQL tool registered. A nil logger is
// replaced with a no-op logger.
func New(version string, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcp: server.NewMCPServer(
			Name,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		logger: logger.Named("mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCP returns the underlying MCPServer.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves MCP over stdin and stdout until the client disconnects
// or ctx is canceled.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("Serving MCP over stdio")
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	readOnly := []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	}
	tool := func(name string, opts ...mcp.ToolOption) mcp.Tool {
		return mcp.NewTool(name, append(opts, readOnly...)...)
	}

	s.mcp.AddTool(tool(
		ToolValidate,
		mcp.WithDescription(
			"Check a SQL query for common problems and dialect-specific suggestions. "+
				"Returns isValid, the keyword-formatted query, warnings and suggestions. "+
				"Set strict=true for a full grammar check (postgresql and mysql only)."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("SQL query to validate")),
		dialectParam(),
		mcp.WithBoolean("strict", mcp.Description("Also parse the query with the dialect's grammar")),
	), s.handleValidate)

	s.mcp.AddTool(tool(
		ToolFormat,
		mcp.WithDescription("Upper-case SQL keywords in a query. Everything else is left as written."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("SQL query to format")),
	), s.handleFormat)

	s.mcp.AddTool(tool(
		ToolExplain,
		mcp.WithDescription("Describe a SQL query in plain language and list the clauses it uses."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("SQL query to explain")),
	), s.handleExplain)

	s.mcp.AddTool(tool(
		ToolOptimize,
		mcp.WithDescription(
			"Look for inefficient patterns in a SQL query. "+
				"Rewrites NOT IN as NOT EXISTS and returns improvement notes."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("SQL query to optimize")),
	), s.handleOptimize)

	s.mcp.AddTool(tool(
		ToolSchemaInfo,
		mcp.WithDescription(
			"Return the usual columns, relationships and example queries for a table type such as "+
				"users, orders or products. Unknown table types get a generic record."),
		mcp.WithString("table_type", mcp.Required(), mcp.Description("Table type, e.g. 'users'")),
	), s.handleSchemaInfo)
}

func dialectParam() mcp.ToolOption {
	return mcp.WithString(
		"dialect",
		mcp.Description("SQL dialect, defaults to postgresql"),
		mcp.Enum("postgresql", "mysql", "sqlite", "mssql", "oracle"),
	)
}
