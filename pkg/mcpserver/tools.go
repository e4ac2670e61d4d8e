package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nsxbet/sql-assistant/pkg/sqltools"
	"github.com/nsxbet/sql-assistant/pkg/syntax"
	"github.com/nsxbet/sql-assistant/pkg/types"
)

// Tool names.
const (
	ToolValidate   = "validate_sql"
	ToolFormat     = "format_sql"
	ToolExplain    = "explain_sql"
	ToolOptimize   = "optimize_sql"
	ToolSchemaInfo = "get_schema_info"
)

// ErrorResponse is the body of a tool result that reports a caller mistake.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newErrorResult reports an error the client can fix as a tool result so
// the model sees it. System failures are returned as Go errors instead.
func newErrorResult(code, message string) *mcp.CallToolResult {
	body, _ := json.Marshal(ErrorResponse{Error: true, Code: code, Message: message})
	result := mcp.NewToolResultText(string(body))
	result.IsError = true
	return result
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tool result")
	}
	return mcp.NewToolResultText(string(body)), nil
}

// requireSQL returns the trimmed "sql" argument or an error result.
func requireSQL(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	sql, err := req.RequireString("sql")
	if err != nil {
		return "", newErrorResult("invalid_parameters", err.Error())
	}
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return "", newErrorResult("invalid_parameters", "parameter 'sql' cannot be empty")
	}
	return sql, nil
}

type validateResponse struct {
	*types.ValidationResult
	Syntax *syntax.Report `json:"syntax,omitempty"`
}

func (s *Server) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql, errResult := requireSQL(req)
	if errResult != nil {
		return errResult, nil
	}
	dialect, err := types.ParseDialect(req.GetString("dialect", ""))
	if err != nil {
		return newErrorResult("invalid_parameters", err.Error()), nil
	}

	resp := validateResponse{ValidationResult: sqltools.Validate(sql, dialect)}
	if req.GetBool("strict", false) {
		if !syntax.Supported(dialect) {
			return newErrorResult("unsupported_dialect", "strict checking is available for postgresql and mysql only"), nil
		}
		report, err := syntax.Check(sql, dialect)
		if err != nil {
			return nil, err
		}
		resp.Syntax = report
	}

	s.logger.Debug("Validated SQL",
		zap.String("dialect", dialect.String()),
		zap.Bool("valid", resp.IsValid),
		zap.Int("warnings", len(resp.Warnings)))
	return jsonResult(resp)
}

type formatResponse struct {
	Formatted string `json:"formatted"`
}

func (s *Server) handleFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql, errResult := requireSQL(req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(formatResponse{Formatted: sqltools.Format(sql)})
}

func (s *Server) handleExplain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql, errResult := requireSQL(req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(sqltools.Explain(sql))
}

func (s *Server) handleOptimize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql, errResult := requireSQL(req)
	if errResult != nil {
		return errResult, nil
	}
	result := sqltools.Optimize(sql)
	s.logger.Debug("Optimized SQL", zap.Int("improvements", len(result.Improvements)))
	return jsonResult(result)
}

type schemaInfoResponse struct {
	TableType string `json:"tableType"`
	*types.SchemaInfo
	// DidYouMean names a known table type when table_type looks like its
	// singular or plural form.
	DidYouMean string `json:"didYouMean,omitempty"`
}

func (s *Server) handleSchemaInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableType, err := req.RequireString("table_type")
	if err != nil {
		return newErrorResult("invalid_parameters", err.Error()), nil
	}
	tableType = strings.TrimSpace(tableType)
	if tableType == "" {
		return newErrorResult("invalid_parameters", "parameter 'table_type' cannot be empty"), nil
	}

	resp := schemaInfoResponse{
		TableType:  tableType,
		SchemaInfo: s.catalog.Lookup(tableType),
	}
	if _, custom := s.catalog.Match(tableType); !custom {
		if suggestion, ok := sqltools.SuggestTableType(tableType); ok {
			resp.DidYouMean = suggestion
		}
	}
	return jsonResult(resp)
}
