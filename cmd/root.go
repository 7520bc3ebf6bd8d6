package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chronicle/internal/config"
	"chronicle/internal/ui"
	"chronicle/pkg/models"
)

var (
	cfgFile string
	verbose bool
	quiet   bool

	output *ui.UI

	rootCmd = &cobra.Command{
		Use:   "chronicle",
		Short: "Generate changelogs from conventional commits",
		Long:  "Chronicle - A CLI tool for generating changelogs and inferring the next semantic version from conventional commit history, with contributor data from GitHub, GitLab, Gitea and Bitbucket",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output = ui.NewUI(verbose, quiet)
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default chronicle.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
}

func initConfig() {
	viper.SetConfigName("chronicle")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home + "/.chronicle")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is okay for now
	}
}

// loadConfig reads the configuration, honoring the --config flag.
func loadConfig() (*models.Config, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}
