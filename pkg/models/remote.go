package models

import "encoding/json"

// Forge identifies a git hosting platform with a REST API.
type Forge string

const (
	ForgeGitHub    Forge = "github"
	ForgeGitLab    Forge = "gitlab"
	ForgeGitea     Forge = "gitea"
	ForgeBitbucket Forge = "bitbucket"
)

// Forges lists every supported forge in serialization order.
var Forges = []Forge{ForgeGitHub, ForgeGitLab, ForgeGitea, ForgeBitbucket}

// IsValid reports whether the forge is one of the supported platforms.
func (f Forge) IsValid() bool {
	switch f {
	case ForgeGitHub, ForgeGitLab, ForgeGitea, ForgeBitbucket:
		return true
	}
	return false
}

// RemoteCommit is the forge-agnostic view of a commit fetched from a REST API.
type RemoteCommit struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
}

// RemotePullRequest is the forge-agnostic view of a pull/merge request.
// MergeCommit holds the SHA of the commit that merged the request and is the
// join key used during reconciliation.
type RemotePullRequest struct {
	Number      int64    `json:"number"`
	Title       *string  `json:"title"`
	Labels      []string `json:"labels"`
	MergeCommit *string  `json:"mergeCommit"`
}

// RemoteContributor carries the forge metadata attached to a single commit,
// and doubles as a roster entry on RemoteReleaseMetadata.
type RemoteContributor struct {
	Username    *string  `json:"username"`
	PRTitle     *string  `json:"prTitle"`
	PRNumber    *int64   `json:"prNumber"`
	PRLabels    []string `json:"prLabels"`
	IsFirstTime bool     `json:"isFirstTime"`
}

// HasPR reports whether any pull request field deviates from its default.
func (c RemoteContributor) HasPR() bool {
	return c.PRTitle != nil || c.PRNumber != nil || len(c.PRLabels) > 0
}

// MarshalJSON serializes a nil label slice as an empty array so the external
// representation never contains null where the contract promises a list.
func (c RemoteContributor) MarshalJSON() ([]byte, error) {
	type alias RemoteContributor
	out := alias(c)
	if out.PRLabels == nil {
		out.PRLabels = []string{}
	}
	return json.Marshal(out)
}

// RemoteReleaseMetadata aggregates the contributors of a single release for
// one forge. There is one entry per distinct username, plus one synthetic
// entry for commits with no resolvable username.
type RemoteReleaseMetadata struct {
	Contributors []RemoteContributor `json:"contributors"`
}

// MarshalJSON serializes a nil contributor list as an empty array.
func (m RemoteReleaseMetadata) MarshalJSON() ([]byte, error) {
	type alias RemoteReleaseMetadata
	out := alias(m)
	if out.Contributors == nil {
		out.Contributors = []RemoteContributor{}
	}
	return json.Marshal(out)
}
