package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/service"
)

// Tool names exposed to MCP clients
const (
	ToolCalculateRAF = "calculate_raf"
	ToolCalculateHCC = "calculate_hcc_contribution"
)

// Server exposes the calculator as MCP tools and the model profile as resources
type Server struct {
	mcpServer  *mcp.Server
	calculator *service.Calculator
	logger     *logrus.Logger
}

// NewServer creates a new MCP server instance with its tools registered
func NewServer(config domain.MCPConfig, calculator *service.Calculator, logger *logrus.Logger) *Server {
	name := config.ServerName
	if name == "" {
		name = "hcc-raf-server"
	}
	version := config.ServerVersion
	if version == "" {
		version = "1.0.0"
	}

	server := &Server{
		mcpServer:  mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		calculator: calculator,
		logger:     logger,
	}
	server.registerTools()
	server.registerResources()

	return server
}

// registerTools registers the calculation tools
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolCalculateRAF,
		Description: "Calculate the CMS-HCC risk adjustment factor for a set of ICD-10 diagnosis codes. " +
			"Returns the raw and normalized risk score, the community segment and the labeled " +
			"condition, interaction and demographic coefficients.",
	}, s.handleCalculateRAF)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolCalculateHCC,
		Description: "Report the hierarchical condition categories a single ICD-10 diagnosis code " +
			"maps to, with the community segment. No score and no interactions are returned.",
	}, s.handleCalculateHCC)

	s.logger.WithField("tool_count", 2).Info("Registered MCP tools")
}

// Start serves MCP over stdio until ctx is cancelled or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Run serves MCP over the given transport
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("Starting HCC RAF MCP server")

	if err := s.mcpServer.Run(ctx, transport); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// MCPServer returns the underlying SDK server
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
