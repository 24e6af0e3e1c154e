// Package logging provides structured logging utilities for the tempo-mcp
// server.
//
// It centralizes attribute naming so log entries stay queryable across the
// codebase, built on the standard library's slog package.
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "get_free_busy")
//	logger.Info("query completed",
//	    logging.Calendar("work"),
//	    logging.Status(logging.StatusSuccess))
//
// Logs always go to stderr: the stdio transport owns stdout.
package logging
