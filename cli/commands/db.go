package commands

import (
	"context"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/thomurie/jobly/cli/internal/ui"
	"github.com/thomurie/jobly/runtime/client"
)

var pingTimeout time.Duration

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the configured database",
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity and the PostgreSQL version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
		defer cancel()

		start := time.Now()
		db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		elapsed := time.Since(start)

		v, err := db.ServerVersion(ctx)
		if err != nil {
			return err
		}

		ui.PrintSuccess("database is reachable")
		return ui.PrintTable([]string{"Setting", "Value"}, [][]string{
			{"URL", redactURL(cfg.DatabaseURL)},
			{"Server Version", v.String()},
			{"Minimum Version", client.MinServerVersion},
			{"Connect Time", elapsed.Round(time.Millisecond).String()},
		})
	},
}

func init() {
	dbPingCmd.Flags().DurationVar(&pingTimeout, "timeout", 5*time.Second, "give up after this long")

	dbCmd.AddCommand(dbPingCmd)
	rootCmd.AddCommand(dbCmd)
}

// redactURL hides the password in a connection URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	return u.Redacted()
}
