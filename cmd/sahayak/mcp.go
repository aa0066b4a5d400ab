package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opencivic/sahayak/internal/cli"
	mcpadapter "github.com/opencivic/sahayak/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the dialogue engine as an MCP server over stdio, so AI agents
can drive eligibility flows through the handle_turn, track_status and
list_schemes tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := optionsFromFlags(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		logger := cli.NewLogger(opts.Debug)
		engine, err := cli.NewEngine(cmd.Context(), opts, logger)
		if err != nil {
			log.Fatalf("Error initializing engine: %v", err)
		}

		srv := mcpadapter.NewServer(engine)

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("Starting Sahayak MCP server (stdio)")
		if err := srv.ServeStdio(); err != nil {
			logger.Error("MCP server execution failed", slog.Any("error", err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
