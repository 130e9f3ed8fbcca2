package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search
websites and read the search history.

The server speaks JSON-RPC over stdio unless --port is set, in which case
it serves streamable HTTP on --host:--port.

Tools:      search, history, session
Resources:  sitesearch://history, sitesearch://session{?url,text}`,
	Example: `  # Stdio mode (default)
  sitesearch mcp serve

  # HTTP mode on all interfaces
  sitesearch mcp serve --port 8090 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "HTTP listen host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidInput, mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{Search: searchService})
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
