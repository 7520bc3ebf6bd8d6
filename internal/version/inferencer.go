// Package version computes the next semantic version of a release from its
// commit messages and the previously tagged version.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"chronicle/pkg/errors"
	"chronicle/pkg/models"
)

// FirstVersion is returned when no previous release carries a version.
const FirstVersion = "0.1.0"

// Policy controls how commit types map to bump levels.
type Policy struct {
	FeaturesAlwaysBumpMinor bool
	BreakingAlwaysBumpMajor bool
}

// DefaultPolicy matches conventional-commit tooling defaults.
func DefaultPolicy() Policy {
	return Policy{FeaturesAlwaysBumpMinor: true, BreakingAlwaysBumpMajor: true}
}

// PolicyFromConfig resolves a policy from the bump configuration.
func PolicyFromConfig(cfg models.BumpConfig) Policy {
	return Policy{
		FeaturesAlwaysBumpMinor: cfg.FeaturesMinor(),
		BreakingAlwaysBumpMajor: cfg.BreakingMajor(),
	}
}

// Inferencer computes next versions. Warnings (such as the missing previous
// version fallback) are emitted through warnf and never fail the inference.
type Inferencer struct {
	warnf func(format string, args ...interface{})
}

// New creates an Inferencer. A nil warnf discards warnings.
func New(warnf func(format string, args ...interface{})) *Inferencer {
	if warnf == nil {
		warnf = func(string, ...interface{}) {}
	}
	return &Inferencer{warnf: warnf}
}

type bumpLevel int

const (
	bumpPatch bumpLevel = iota
	bumpMinor
	bumpMajor
)

// Conventional-commit markers. A breaking change is an exclamation mark
// immediately before the colon, a feature is the feat type.
var (
	breakingPattern = regexp.MustCompile(`^[A-Za-z]+(\([^)]*\))?!:`)
	featurePattern  = regexp.MustCompile(`^feat(\([^)]*\))?!?:`)
)

// Infer computes the next version for the given current version and commit
// messages. An empty currentVersion means the project has no releases yet
// and yields FirstVersion with a warning. The version may carry an arbitrary
// non-semver prefix (v1.2.3, app/1.2.3); the prefix is preserved on the
// result. It fails only when no semver can be extracted from currentVersion.
func (i *Inferencer) Infer(currentVersion string, messages []string, policy Policy) (string, error) {
	if currentVersion == "" {
		i.warnf("No releases found, using %s as the next version.", FirstVersion)
		return FirstVersion, nil
	}

	parsed, prefix, err := parseVersion(currentVersion)
	if err != nil {
		return "", err
	}

	next := increment(parsed, levelFor(parsed, messages, policy))
	return prefix + next, nil
}

// NextVersion is a convenience wrapper computing the next version of a
// release from its previous version and its own commits.
func (i *Inferencer) NextVersion(release *models.Release, policy Policy) (string, error) {
	return i.Infer(release.PreviousVersion(), release.Messages(), policy)
}

// parseVersion parses a strict semver, falling back to prefix extraction:
// at every non-digit to digit transition the remainder of the string is
// tried as a semver, and the characters before it become the prefix.
func parseVersion(version string) (*semver.Version, string, error) {
	parsed, parseErr := semver.StrictNewVersion(version)
	if parseErr == nil {
		return parsed, "", nil
	}

	if len(strings.Split(version, ".")) >= 2 {
		foundNumeric := false
		for idx := 0; idx < len(version); idx++ {
			digit := version[idx] >= '0' && version[idx] <= '9'
			if digit && !foundNumeric {
				foundNumeric = true
				if remainder, err := semver.StrictNewVersion(version[idx:]); err == nil {
					return remainder, version[:idx], nil
				}
			} else if !digit && foundNumeric {
				foundNumeric = false
			}
		}
	}

	return nil, "", errors.VersionParseError(version, parseErr)
}

// levelFor determines the bump level across all commits of the release.
func levelFor(current *semver.Version, messages []string, policy Policy) bumpLevel {
	level := bumpPatch
	for _, message := range messages {
		if l := commitLevel(current, strings.TrimRight(message, " \t\r\n"), policy); l > level {
			level = l
		}
	}
	return level
}

// commitLevel maps a single commit message to a bump level. Pre-1.0
// versions soften bumps when the corresponding always-bump policy is off:
// breaking changes shift down to minor (or patch at 0.0.x) and features
// shift down to patch.
func commitLevel(current *semver.Version, message string, policy Policy) bumpLevel {
	switch {
	case breakingPattern.MatchString(message):
		if policy.BreakingAlwaysBumpMajor || current.Major() > 0 {
			return bumpMajor
		}
		if current.Minor() > 0 {
			return bumpMinor
		}
		return bumpPatch
	case featurePattern.MatchString(message):
		if policy.FeaturesAlwaysBumpMinor || current.Major() > 0 {
			return bumpMinor
		}
		return bumpPatch
	default:
		return bumpPatch
	}
}

// increment applies the bump level. A version carrying a prerelease is
// advanced by incrementing its last numeric prerelease identifier instead,
// regardless of level. Build metadata never survives a bump.
func increment(current *semver.Version, level bumpLevel) string {
	if pre := current.Prerelease(); pre != "" {
		return fmt.Sprintf("%d.%d.%d-%s",
			current.Major(), current.Minor(), current.Patch(), incrementPrerelease(pre))
	}

	switch level {
	case bumpMajor:
		return fmt.Sprintf("%d.0.0", current.Major()+1)
	case bumpMinor:
		return fmt.Sprintf("%d.%d.0", current.Major(), current.Minor()+1)
	default:
		return fmt.Sprintf("%d.%d.%d", current.Major(), current.Minor(), current.Patch()+1)
	}
}

// incrementPrerelease bumps the last numeric identifier of a prerelease
// (alpha.1 -> alpha.2), appending ".1" when none is numeric.
func incrementPrerelease(pre string) string {
	identifiers := strings.Split(pre, ".")
	for idx := len(identifiers) - 1; idx >= 0; idx-- {
		if n, err := strconv.ParseUint(identifiers[idx], 10, 64); err == nil {
			identifiers[idx] = strconv.FormatUint(n+1, 10)
			return strings.Join(identifiers, ".")
		}
	}
	return pre + ".1"
}
