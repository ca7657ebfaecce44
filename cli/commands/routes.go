package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thomurie/jobly/cli/internal/ui"
	"github.com/thomurie/jobly/internal/api"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the HTTP endpoints",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.PrintMarkdown(routesMarkdown(api.NewAPIServer("", api.Deps{}).Routes()))
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func routesMarkdown(routes []api.Route) string {
	var b strings.Builder
	b.WriteString("# jobly API\n\n")
	b.WriteString("| Method | Path | Access | Description |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range routes {
		fmt.Fprintf(&b, "| %s | `%s` | %s | %s |\n", r.Method, displayPath(r.Path), r.Access, r.Summary)
	}
	b.WriteString("\nErrors are returned as `{\"error\": {\"message\": ..., \"status\": ...}}`.\n")
	return b.String()
}

// displayPath drops mux regexp constraints: "{id:[0-9]+}" becomes "{id}".
func displayPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, "{") {
			if name, _, ok := strings.Cut(p, ":"); ok {
				parts[i] = name + "}"
			}
		}
	}
	return strings.Join(parts, "/")
}
