package models

// Config is the on-disk configuration of the tool.
type Config struct {
	Bump      BumpConfig      `yaml:"bump"`
	Remotes   []Remote        `yaml:"remotes"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Changelog ChangelogConfig `yaml:"changelog"`
}

// BumpConfig controls how commit types translate into version bumps.
// Unset values default to true, matching conventional-commit tooling.
type BumpConfig struct {
	FeaturesAlwaysBumpMinor *bool `yaml:"features_always_bump_minor"`
	BreakingAlwaysBumpMajor *bool `yaml:"breaking_always_bump_major"`
}

// FeaturesMinor resolves the feature policy with its default.
func (b BumpConfig) FeaturesMinor() bool {
	if b.FeaturesAlwaysBumpMinor == nil {
		return true
	}
	return *b.FeaturesAlwaysBumpMinor
}

// BreakingMajor resolves the breaking-change policy with its default.
func (b BumpConfig) BreakingMajor() bool {
	if b.BreakingAlwaysBumpMajor == nil {
		return true
	}
	return *b.BreakingAlwaysBumpMajor
}

// Remote describes one configured forge for contributor metadata.
type Remote struct {
	Provider string `yaml:"provider"` // github, gitlab, gitea, bitbucket
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	APIURL   string `yaml:"api_url"`   // empty for the public endpoint
	Token    string `yaml:"token"`     // literal token, discouraged
	TokenEnv string `yaml:"token_env"` // environment variable holding the token
}

// FetchConfig bounds the remote pagination loop.
type FetchConfig struct {
	MaxPages    int `yaml:"max_pages"`
	PageSize    int `yaml:"page_size"`
	Concurrency int `yaml:"concurrency"`
}

// WithDefaults fills unset fetch limits.
func (f FetchConfig) WithDefaults() FetchConfig {
	if f.MaxPages <= 0 {
		f.MaxPages = 50
	}
	if f.PageSize <= 0 {
		f.PageSize = 100
	}
	if f.Concurrency <= 0 {
		f.Concurrency = 4
	}
	return f
}

// ChangelogConfig controls history slicing and rendering.
type ChangelogConfig struct {
	TemplatePath string `yaml:"template"`    // custom changelog template
	TagPattern   string `yaml:"tag_pattern"` // regexp filtering release tags
	Output       string `yaml:"output"`      // output file, empty for stdout
}
