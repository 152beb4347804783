package cmd

import (
	"github.com/huangsam/lagscan/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp <dataset>",
	Short: "Start the lagscan MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents run lag scans via standard tools.

The dataset argument is the default for every tool call; tools may override it
with dataset_path.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are suppressed per tool call so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
