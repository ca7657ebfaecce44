package commands

import (
	"context"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/thomurie/jobly/cli/internal/ui"
	"github.com/thomurie/jobly/internal/repository"
)

// askUser runs the prompts against the terminal. Replaced in tests.
var askUser = func(qs []*survey.Question, answers interface{}) error {
	return survey.Ask(qs, answers)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users directly in the database",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user interactively",
	Long: `Prompt for a new user's details and insert it into the database.

/auth/register never grants admin and POST /users requires one, so this is
how the first admin is created.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		ui.PrintSection("New user")
		user, err := createUser(ctx, repository.NewUserStore(db, cfg.BcryptCost))
		if err != nil {
			return err
		}

		ui.PrintSuccess("created %s", user.Username)
		return ui.PrintTable([]string{"Field", "Value"}, [][]string{
			{"Username", user.Username},
			{"Name", user.FirstName + " " + user.LastName},
			{"Email", user.Email},
			{"Admin", strconv.FormatBool(user.IsAdmin)},
		})
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

type userAnswers struct {
	Username  string `survey:"username"`
	Password  string `survey:"password"`
	FirstName string `survey:"firstName"`
	LastName  string `survey:"lastName"`
	Email     string `survey:"email"`
	IsAdmin   bool   `survey:"isAdmin"`
}

func userQuestions() []*survey.Question {
	return []*survey.Question{
		{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.ComposeValidators(survey.Required, survey.MaxLength(25)),
		},
		{
			Name:     "password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.ComposeValidators(survey.MinLength(5), survey.MaxLength(20)),
		},
		{
			Name:     "firstName",
			Prompt:   &survey.Input{Message: "First name:"},
			Validate: survey.ComposeValidators(survey.Required, survey.MaxLength(30)),
		},
		{
			Name:     "lastName",
			Prompt:   &survey.Input{Message: "Last name:"},
			Validate: survey.ComposeValidators(survey.Required, survey.MaxLength(30)),
		},
		{
			Name:     "email",
			Prompt:   &survey.Input{Message: "Email:"},
			Validate: survey.Required,
		},
		{
			Name:   "isAdmin",
			Prompt: &survey.Confirm{Message: "Grant admin?", Default: false},
		},
	}
}

// createUser prompts for a user and registers it. Validation beyond the
// prompts is left to the store.
func createUser(ctx context.Context, store *repository.UserStore) (*repository.User, error) {
	var a userAnswers
	if err := askUser(userQuestions(), &a); err != nil {
		return nil, err
	}
	return store.Register(ctx, repository.NewUser{
		Username:  a.Username,
		Password:  a.Password,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		IsAdmin:   a.IsAdmin,
	})
}
