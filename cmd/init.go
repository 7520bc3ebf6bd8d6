package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"chronicle/internal/config"
	"chronicle/pkg/models"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file interactively",
	Long:  `Walk through the configuration options and write a chronicle.yaml file.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.FileName
	}

	if _, err := os.Stat(path); err == nil {
		overwrite := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("%s already exists. Overwrite?", path),
			Default: false,
		}
		if err := survey.AskOne(prompt, &overwrite); err != nil {
			return err
		}
		if !overwrite {
			output.Info("keeping existing configuration")
			return nil
		}
	}

	cfg := &models.Config{}

	addRemote := true
	if err := survey.AskOne(&survey.Confirm{
		Message: "Configure a remote for contributor data?",
		Default: true,
	}, &addRemote); err != nil {
		return err
	}
	for addRemote {
		remoteQs := []*survey.Question{
			{
				Name: "provider",
				Prompt: &survey.Select{
					Message: "Provider:",
					Options: []string{"github", "gitlab", "gitea", "bitbucket"},
					Default: "github",
				},
			},
			{
				Name:     "owner",
				Prompt:   &survey.Input{Message: "Repository owner:"},
				Validate: survey.Required,
			},
			{
				Name:     "repo",
				Prompt:   &survey.Input{Message: "Repository name:"},
				Validate: survey.Required,
			},
			{
				Name:   "tokenenv",
				Prompt: &survey.Input{Message: "Environment variable holding the API token (optional):"},
			},
		}
		var remoteCfg models.Remote
		if err := survey.Ask(remoteQs, &remoteCfg); err != nil {
			return err
		}
		cfg.Remotes = append(cfg.Remotes, remoteCfg)

		addRemote = false
		if err := survey.AskOne(&survey.Confirm{
			Message: "Add another remote?",
			Default: false,
		}, &addRemote); err != nil {
			return err
		}
	}

	tagPattern := "^v"
	if err := survey.AskOne(&survey.Input{
		Message: "Tag pattern for releases:",
		Default: "^v",
	}, &tagPattern); err != nil {
		return err
	}
	cfg.Changelog.TagPattern = tagPattern

	if err := config.Save(cfg, path); err != nil {
		return err
	}
	output.Success(fmt.Sprintf("configuration written to %s", path))
	return nil
}
