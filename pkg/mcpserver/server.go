package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mercator-hq/tabula/pkg/artifact"
	"mercator-hq/tabula/pkg/export"
	"mercator-hq/tabula/pkg/tabular"
	"mercator-hq/tabula/pkg/tabular/reader"
)

// Tool names.
const (
	ToolExport = "export_query_result"
	ToolList   = "list_saved_files"
	ToolRead   = "read_artifact"
)

// Config identifies the server to clients.
type Config struct {
	// Name is the implementation name.
	// Default: "tabula"
	Name string

	// Version is the implementation version.
	Version string
}

// Server serves the export tools.
type Server struct {
	server   *mcp.Server
	exporter *export.Exporter
	fetcher  artifact.Fetcher
	logger   *slog.Logger
}

// ExportInput is the argument of export_query_result.
type ExportInput struct {
	QueryResult string `json:"query_result" jsonschema:"query result as JSON text: a list of records, a schema and rows object, or field/value rows"`
	Filename    string `json:"filename" jsonschema:"file name; the format extension is appended when missing"`
	Format      string `json:"format,omitempty" jsonschema:"xlsx, csv, or json; the server default when omitted"`
	SheetName   string `json:"sheet_name,omitempty" jsonschema:"worksheet name for xlsx output"`
}

// ListInput is the argument of list_saved_files.
type ListInput struct{}

// ReadInput is the argument of read_artifact.
type ReadInput struct {
	URI string `json:"uri" jsonschema:"artifact URI such as artifact://report.xlsx or artifact://report.xlsx@2"`
}

// ReadResult is the answer of read_artifact.
type ReadResult struct {
	Success   bool             `json:"success"`
	Document  *reader.Document `json:"document,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorKind export.ErrorKind `json:"error_kind,omitempty"`
}

// New creates a server and registers the tools. fetcher resolves
// read_artifact URIs.
func New(cfg Config, exporter *export.Exporter, fetcher artifact.Fetcher) *Server {
	if cfg.Name == "" {
		cfg.Name = "tabula"
	}

	s := &Server{
		server:   mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
		exporter: exporter,
		fetcher:  fetcher,
		logger:   slog.Default().With("component", "mcpserver"),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolExport,
		Description: "Save a query result as a versioned spreadsheet (xlsx), CSV, or JSON artifact.",
	}, s.handleExport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolList,
		Description: "List saved artifacts with their latest version, size, and MIME type.",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolRead,
		Description: "Preview a saved artifact: spreadsheet rows, text content, or size for binary files.",
	}, s.handleRead)

	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves on transport until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("MCP server started", "tools", []string{ToolExport, ToolList, ToolRead})
	return s.server.Run(ctx, transport)
}

func (s *Server) handleExport(ctx context.Context, _ *mcp.CallToolRequest, in ExportInput) (*mcp.CallToolResult, any, error) {
	req := export.Request{
		Data:      in.QueryResult,
		Filename:  in.Filename,
		SheetName: in.SheetName,
	}
	if in.Format != "" {
		format, err := tabular.ParseFormat(in.Format)
		if err != nil {
			// The exporter reports the unknown format as an invalid request.
			format = tabular.Format(in.Format)
		}
		req.Format = format
	}

	result := s.exporter.Export(ctx, req)
	return jsonResult(result, !result.Success)
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, any, error) {
	result := s.exporter.ListArtifacts(ctx)
	return jsonResult(result, !result.Success)
}

func (s *Server) handleRead(ctx context.Context, _ *mcp.CallToolRequest, in ReadInput) (*mcp.CallToolResult, any, error) {
	if s.fetcher == nil {
		err := export.NewInvalidRequestError("uri", "no artifact source configured")
		return jsonResult(&ReadResult{Error: err.Error(), ErrorKind: export.KindOf(err)}, true)
	}

	doc, err := reader.Load(ctx, s.fetcher, in.URI)
	if err != nil {
		s.logger.WarnContext(ctx, "read artifact failed", "uri", in.URI, "error", err)
		return jsonResult(&ReadResult{Error: err.Error(), ErrorKind: export.KindOf(err)}, true)
	}
	return jsonResult(&ReadResult{Success: true, Document: doc}, false)
}

func jsonResult(v any, isError bool) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		IsError: isError,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
