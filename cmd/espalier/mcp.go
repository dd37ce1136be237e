package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
	mcpAdapter "github.com/espalier-dev/espalier/pkg/adapters/mcp"
	"github.com/espalier-dev/espalier/pkg/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the simulator as an MCP Server over stdio.
This allows AI agents (like Claude Desktop) to drive flow simulations as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		flowPath, _ := cmd.Flags().GetString("flow")
		logLevel, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(logging.ParseLevel(logLevel))

		source := flowfile.NewSource(flowPath)
		sessions := session.NewManager(source, session.WithLogger(logger))

		srv := mcpAdapter.NewServer(sessions, source, espalier.Version,
			mcpAdapter.WithLogger(logger),
		)

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("starting MCP server (stdio)", "flow", flowPath)
		if err := srv.ServeStdio(); err != nil {
			logger.Error("MCP server execution failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
