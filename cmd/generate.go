package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chronicle/internal/changelog"
	"chronicle/internal/config"
	"chronicle/internal/git"
	"chronicle/internal/remote"
	"chronicle/internal/version"
	apperrors "chronicle/pkg/errors"
	"chronicle/pkg/models"
)

var (
	generateRepository string
	generateOutput     string
	generateTemplate   string
	generateJSON       bool
	generateBump       bool
	generateNoRemote   bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a changelog from the repository history",
	Long: `Generate a changelog by slicing the commit history into releases at
matching tags, annotating commits with contributor data from the configured
remotes, and rendering the result through a markdown template.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateRepository, "repository", "r", ".", "path to the git repository")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output file (default stdout)")
	generateCmd.Flags().StringVarP(&generateTemplate, "template", "t", "", "custom changelog template file")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "print the release data as JSON instead of markdown")
	generateCmd.Flags().BoolVar(&generateBump, "bump", false, "infer a version for the unreleased commits")
	generateCmd.Flags().BoolVar(&generateNoRemote, "no-remote", false, "skip fetching contributor data from remotes")
	generateCmd.Flags().AddFlagSet(policyFlagSet())
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	service, err := git.NewService(generateRepository)
	if err != nil {
		return err
	}
	releases, err := service.Releases(cfg.Changelog.TagPattern)
	if err != nil {
		return err
	}
	if len(releases.Releases) == 0 {
		return apperrors.New(apperrors.ErrCodeGit, "repository has no commits")
	}

	if generateBump {
		head := releases.Releases[0]
		if head.Version == nil {
			inferencer := version.New(output.Warningf)
			next, err := inferencer.NextVersion(head, policyFromFlags(cmd, cfg))
			if err != nil {
				return err
			}
			head.Version = &next
			output.VerbosePrintf("inferred version %s for unreleased commits\n", next)
		}
	}

	if !generateNoRemote {
		if err := reconcileRemotes(cmd.Context(), cfg, releases); err != nil {
			return err
		}
	}

	if generateJSON {
		data, err := releases.AsJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), data)
		return nil
	}

	generator := changelog.New()
	if path := firstNonEmpty(generateTemplate, cfg.Changelog.TemplatePath); path != "" {
		generator, err = changelog.NewFromFile(path)
		if err != nil {
			return err
		}
	}

	target := firstNonEmpty(generateOutput, cfg.Changelog.Output)
	if target == "" {
		return generator.Render(cmd.OutOrStdout(), releases.Releases)
	}
	if err := generator.WriteFile(target, releases.Releases); err != nil {
		return err
	}
	output.Success(fmt.Sprintf("changelog written to %s", target))
	return nil
}

// reconcileRemotes fetches commit and pull request data from each configured
// remote and annotates every release with it.
func reconcileRemotes(ctx context.Context, cfg *models.Config, releases *models.Releases) error {
	fetch := cfg.Fetch.WithDefaults()
	for _, remoteCfg := range cfg.Remotes {
		token := config.ResolveToken(remoteCfg)
		client, err := remote.NewClient(remoteCfg, token, fetch, verboseLogf)
		if err != nil {
			return err
		}

		output.VerbosePrintf("fetching %s/%s from %s\n", remoteCfg.Owner, remoteCfg.Repo, remoteCfg.Provider)
		commits, err := client.Commits(ctx)
		if err != nil {
			return err
		}
		requests, err := client.PullRequests(ctx)
		if err != nil {
			return err
		}

		for _, release := range releases.Releases {
			remote.UpdateMetadata(release, commits, requests, client.Forge())
		}
	}
	return nil
}

func verboseLogf(format string, args ...interface{}) {
	output.VerbosePrintf(format+"\n", args...)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
