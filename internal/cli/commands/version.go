package commands

import (
	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"buildDate"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Print the goadmin version, the commit it was built from and the build date.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContextWithoutBackend(cmd).Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}
			r.Printf("goadmin v%s\n", info.Version)
			r.KeyValue("commit", info.Commit)
			r.KeyValue("built", info.Date)
			r.Muted("Admin console client for the go-web-mini backend")
			return nil
		},
	}
}
