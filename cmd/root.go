package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the tempo-mcp application
var rootCmd = &cobra.Command{
	Use:   "tempo-mcp",
	Short: "In-memory calendar scheduling engine exposed as an MCP server",
	Long: `tempo-mcp is an in-memory calendar scheduling engine exposed over the
Model Context Protocol (MCP).

It lets AI assistants load events from iCalendar, JSON or Google Calendar
payloads, query free/busy time, find available meeting slots, and schedule
new events through an atomic propose/check/commit workflow.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "tempo-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
