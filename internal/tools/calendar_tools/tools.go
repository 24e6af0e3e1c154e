package calendar_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jacob-meacham/tempo-mcp/internal/server"
)

// RegisterCalendarTools registers all calendar-related tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Register load tools (write operations)
	if err := RegisterLoadTools(s, sc); err != nil {
		return fmt.Errorf("failed to register load tools: %w", err)
	}

	// Register query tools (read-only)
	if err := RegisterQueryTools(s, sc); err != nil {
		return fmt.Errorf("failed to register query tools: %w", err)
	}

	// Register proposal workflow tools
	if err := RegisterProposalTools(s, sc); err != nil {
		return fmt.Errorf("failed to register proposal tools: %w", err)
	}

	// Register direct event manipulation tools
	if err := RegisterEventTools(s, sc); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	// Register export tools (read-only)
	if err := RegisterExportTools(s, sc); err != nil {
		return fmt.Errorf("failed to register export tools: %w", err)
	}

	return nil
}
