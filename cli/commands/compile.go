package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thomurie/jobly/cli/internal/ui"
	"github.com/thomurie/jobly/query/sqlgen"
)

var compileAliases []string

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Print the SQL fragments jobly generates",
	Long: `Compile partial-update payloads and job filters without touching the
database. Useful for checking placeholder numbering and column aliasing.`,
	// Compiling needs no configuration or database.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var compileSetCmd = &cobra.Command{
	Use:   "set <json-object>",
	Short: "Compile a SET clause from a JSON object",
	Example: `  jobly compile set '{"firstName":"Aliya","age":32}' --alias firstName=first_name
  echo '{"title":"New"}' | jobly compile set -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		aliases, err := parseAliases(compileAliases)
		if err != nil {
			return err
		}

		var fields sqlgen.Fields
		if args[0] == "-" {
			fields, err = sqlgen.DecodeFields(cmd.InOrStdin())
		} else {
			fields, err = sqlgen.DecodeFieldsBytes([]byte(args[0]))
		}
		if err != nil {
			return err
		}

		frag, err := sqlgen.CompileSet(fields, aliases)
		if err != nil {
			return err
		}
		return printFragment("SET", frag)
	},
}

var compileFilterCmd = &cobra.Command{
	Use:   "filter <query-string>",
	Short: "Compile a WHERE clause from job search parameters",
	Example: `  jobly compile filter 'title=eng&minSalary=50000&hasEquity=true'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := url.ParseQuery(strings.TrimPrefix(args[0], "?"))
		if err != nil {
			return fmt.Errorf("%w: %v", sqlgen.ErrInvalidInput, err)
		}

		filter, err := sqlgen.ParseJobFilter(query)
		if err != nil {
			return err
		}

		frag, err := sqlgen.CompileFilter(filter)
		if err != nil {
			return err
		}
		if frag.IsEmpty() {
			ui.PrintWarning("no criteria, every job matches")
			return nil
		}
		return printFragment("WHERE", frag)
	},
}

func init() {
	compileSetCmd.Flags().StringArrayVarP(&compileAliases, "alias", "a", nil, "field=column mapping (repeatable)")

	compileCmd.AddCommand(compileSetCmd)
	compileCmd.AddCommand(compileFilterCmd)
	rootCmd.AddCommand(compileCmd)
}

func parseAliases(pairs []string) (sqlgen.Aliases, error) {
	aliases := make(sqlgen.Aliases, len(pairs))
	for _, pair := range pairs {
		field, column, ok := strings.Cut(pair, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid alias %q, expected field=column", pair)
		}
		aliases[field] = column
	}
	return aliases, nil
}

func printFragment(keyword string, frag sqlgen.Fragment) error {
	ui.PrintCodeBlock(keyword+" "+frag.Text, "sql")

	rows := make([][]string, len(frag.Values))
	for i, v := range frag.Values {
		rows[i] = []string{ui.Placeholder(sqlgen.Placeholder(i + 1)), ui.Value(v)}
	}
	return ui.PrintTable([]string{"Placeholder", "Value"}, rows)
}
