package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/mcp"
)

var versionJSON bool

// versionInfo is what the version command reports.
type versionInfo struct {
	Version    string `json:"version"`
	Revision   string `json:"revision,omitempty"`
	GoVersion  string `json:"go_version"`
	MCPVersion string `json:"mcp_server_version"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := currentVersion()
		if versionJSON {
			return writeJSON(cmd.OutOrStdout(), info)
		}
		cmd.Printf("sitesearch version %s\n", info.Version)
		if info.Revision != "" {
			cmd.Printf("  revision: %s\n", info.Revision)
		}
		cmd.Printf("  go: %s\n", info.GoVersion)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(versionCmd)
}

func currentVersion() versionInfo {
	info := versionInfo{
		Version:    version,
		GoVersion:  runtime.Version(),
		MCPVersion: mcp.Version,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
			}
		}
	}
	return info
}
