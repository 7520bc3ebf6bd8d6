package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"chronicle/internal/git"
	"chronicle/internal/version"
	apperrors "chronicle/pkg/errors"
	"chronicle/pkg/models"
)

var (
	nextCurrent    string
	nextRepository string
)

// nextCmd represents the next command
var nextCmd = &cobra.Command{
	Use:   "next [message...]",
	Short: "Print the next semantic version",
	Long: `Infer the next semantic version from conventional commit messages.

Without arguments the unreleased commits of the repository are used. With
--current and message arguments the version is computed without touching a
repository, which is useful in scripts and CI pipelines.`,
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)
	nextCmd.Flags().StringVarP(&nextCurrent, "current", "c", "", "current version (skips reading the repository)")
	nextCmd.Flags().StringVarP(&nextRepository, "repository", "r", ".", "path to the git repository")
	nextCmd.Flags().AddFlagSet(policyFlagSet())
}

// policyFlagSet holds the bump policy flags shared by next and generate.
func policyFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("bump", pflag.ContinueOnError)
	fs.Bool("features-bump-minor", true, "always bump minor for feature commits")
	fs.Bool("breaking-bump-major", true, "always bump major for breaking changes")
	return fs
}

// policyFromFlags resolves the bump policy, with flags overriding config.
func policyFromFlags(cmd *cobra.Command, cfg *models.Config) version.Policy {
	policy := version.PolicyFromConfig(cfg.Bump)
	if cmd.Flags().Changed("features-bump-minor") {
		value, _ := cmd.Flags().GetBool("features-bump-minor")
		policy.FeaturesAlwaysBumpMinor = value
	}
	if cmd.Flags().Changed("breaking-bump-major") {
		value, _ := cmd.Flags().GetBool("breaking-bump-major")
		policy.BreakingAlwaysBumpMajor = value
	}
	return policy
}

func runNext(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inferencer := version.New(output.Warningf)
	policy := policyFromFlags(cmd, cfg)

	if nextCurrent != "" || len(args) > 0 {
		next, err := inferencer.Infer(nextCurrent, args, policy)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), next)
		return nil
	}

	service, err := git.NewService(nextRepository)
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

	head := releases.Releases[0]
	if head.Version != nil {
		output.Warningf("no unreleased commits, HEAD is tagged %s", *head.Version)
		next, err := inferencer.Infer(*head.Version, nil, policy)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), next)
		return nil
	}

	next, err := inferencer.NextVersion(head, policy)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), next)
	return nil
}
