package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/thomurie/jobly/cli/internal/ui"
	"github.com/thomurie/jobly/cli/internal/version"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if versionJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		ui.PrintHeader("jobly", info.String())
		if info.Prerelease() {
			ui.PrintWarning("this is a development build")
		}
		return ui.PrintTable([]string{"", ""}, info.Rows())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(versionCmd)
}
