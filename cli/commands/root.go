package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/thomurie/jobly/cli/internal/config"
	"github.com/thomurie/jobly/cli/internal/ui"
	"github.com/thomurie/jobly/internal/debug"
)

var (
	configPath string
	debugFlag  bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jobly",
	Short: "Job board API server",
	Long: `jobly serves a REST API for job postings, users and applications
backed by PostgreSQL.

Configuration is read from .jobly.yaml, .env, .env.local and JOBLY_*
environment variables. DATABASE_URL and SECRET_KEY are honored as is.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debug") {
			loaded.Debug = debugFlag
		}
		cfg = loaded

		debug.Configure(debug.Options{
			Output: os.Stderr,
			Format: cfg.LogFormat,
			Debug:  cfg.Debug,
		})
		if cfg.File != "" {
			debug.Debug("loaded config", "file", cfg.File)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: .jobly.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

// Execute is the main entry point for the CLI
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
