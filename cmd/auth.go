package cmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"chronicle/internal/config"
	apperrors "chronicle/pkg/errors"
	"chronicle/pkg/models"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage remote API tokens",
	Long:  `Store and remove API tokens for the configured remotes. Tokens go to the system keyring, with an encrypted file fallback.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set <provider> <owner/repo>",
	Short: "Store an API token for a remote",
	Args:  cobra.ExactArgs(2),
	RunE:  runAuthSet,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove <provider> <owner/repo>",
	Short: "Remove a stored API token",
	Args:  cobra.ExactArgs(2),
	RunE:  runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authRemoveCmd)
}

func remoteFromArgs(args []string) (models.Remote, error) {
	provider := args[0]
	if !models.Forge(provider).IsValid() {
		return models.Remote{}, apperrors.New(apperrors.ErrCodeUserInput,
			fmt.Sprintf("unknown provider %q", provider)).
			WithSuggestions("Supported providers: github, gitlab, gitea, bitbucket")
	}
	owner, repo, ok := strings.Cut(args[1], "/")
	if !ok || owner == "" || repo == "" {
		return models.Remote{}, apperrors.New(apperrors.ErrCodeUserInput,
			"repository must be given as owner/repo")
	}
	return models.Remote{Provider: provider, Owner: owner, Repo: repo}, nil
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	remoteCfg, err := remoteFromArgs(args)
	if err != nil {
		return err
	}

	var token string
	prompt := &survey.Password{Message: fmt.Sprintf("API token for %s/%s:", remoteCfg.Owner, remoteCfg.Repo)}
	if err := survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	if err := config.StoreToken(remoteCfg, token); err != nil {
		return err
	}
	output.Success(fmt.Sprintf("token stored for %s:%s/%s", remoteCfg.Provider, remoteCfg.Owner, remoteCfg.Repo))
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	remoteCfg, err := remoteFromArgs(args)
	if err != nil {
		return err
	}
	if err := config.DeleteToken(remoteCfg); err != nil {
		return err
	}
	output.Success(fmt.Sprintf("token removed for %s:%s/%s", remoteCfg.Provider, remoteCfg.Owner, remoteCfg.Repo))
	return nil
}
