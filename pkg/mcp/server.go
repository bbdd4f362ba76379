// Package mcp exposes the question answering engine as MCP tools over streamable HTTP.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/mcp/tools"
)

const instructions = "Use list_files to discover the files of a project and their columns. " +
	"ask_dataset answers a question about one file (file_id) or every file of a project (project_id). " +
	"get_file_profile shows which columns are numeric, date or categorical."

// Options configures the dataset server.
type Options struct {
	Name    string
	Version string
	// Health is reported by the health tool. Its Version defaults to Version.
	Health tools.HealthDeps
}

// Server wraps the mcp-go MCPServer.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewDatasetServer creates a server with the health and dataset tools registered.
func NewDatasetServer(opts Options, deps *tools.DatasetToolDeps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcp: server.NewMCPServer(
			opts.Name,
			opts.Version,
			server.WithToolCapabilities(true),
			server.WithInstructions(instructions),
			server.WithRecovery(),
		),
		logger: logger.Named("mcp"),
	}

	if deps.Logger == nil {
		deps.Logger = s.logger
	}
	if opts.Health.Version == "" {
		opts.Health.Version = opts.Version
	}
	tools.RegisterHealthTool(s.mcp, opts.Health)
	tools.RegisterDatasetTools(s.mcp, deps)

	s.logger.Debug("MCP tools registered", zap.Bool("pushdown", opts.Health.Pushdown))
	return s
}

// Handler serves the MCP endpoint over stateless streamable HTTP. The caller's mux
// decides the path.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}
