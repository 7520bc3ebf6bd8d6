package cmd

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"chronicle/internal/git"
	"chronicle/internal/ui"
)

var releasesRepository string

// releasesCmd represents the releases command
var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List the releases found in the repository",
	RunE:  runReleases,
}

func init() {
	rootCmd.AddCommand(releasesCmd)
	releasesCmd.Flags().StringVarP(&releasesRepository, "repository", "r", ".", "path to the git repository")
}

func runReleases(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	service, err := git.NewService(releasesRepository)
	if err != nil {
		return err
	}
	releases, err := service.Releases(cfg.Changelog.TagPattern)
	if err != nil {
		return err
	}

	ui.ShowHeader("Releases")
	table := ui.NewTable([]string{"Version", "Date", "Commits"})
	for _, release := range releases.Releases {
		title := "[unreleased]"
		if release.Version != nil {
			title = *release.Version
		}
		date := ""
		if release.Timestamp > 0 {
			date = time.Unix(release.Timestamp, 0).UTC().Format("2006-01-02")
		}
		table.Append([]string{title, date, strconv.Itoa(len(release.Commits))})
	}
	table.Render()
	return nil
}
