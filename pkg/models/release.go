package models

import (
	"encoding/json"
	"strings"
)

// Commit is a single commit of a release, identified by its full hash.
// The per-forge contributor slots are filled in by reconciliation; the
// commit itself is created by the history loader and never recreated.
type Commit struct {
	ID        string            `json:"id"`
	Message   string            `json:"message"`
	GitHub    RemoteContributor `json:"github"`
	GitLab    RemoteContributor `json:"gitlab"`
	Gitea     RemoteContributor `json:"gitea"`
	Bitbucket RemoteContributor `json:"bitbucket"`
}

// NewCommit creates a commit from a hash and message.
func NewCommit(id, message string) *Commit {
	return &Commit{ID: id, Message: message}
}

// ParseCommit splits a "<hash> <message>" line into a commit.
func ParseCommit(line string) *Commit {
	id, message, found := strings.Cut(line, " ")
	if !found {
		return &Commit{ID: line}
	}
	return &Commit{ID: id, Message: message}
}

// Remote returns the contributor slot for the given forge. The returned
// pointer aliases the commit, so writes mutate the commit in place.
func (c *Commit) Remote(forge Forge) *RemoteContributor {
	switch forge {
	case ForgeGitLab:
		return &c.GitLab
	case ForgeGitea:
		return &c.Gitea
	case ForgeBitbucket:
		return &c.Bitbucket
	default:
		return &c.GitHub
	}
}

// Release is a set of commits published under one version tag. Releases form
// a backward chain through Previous, newest first; the oldest known release
// has Previous == nil and is treated as versionless when computing the next
// version.
type Release struct {
	Version   *string                `json:"version"`
	Commits   []*Commit              `json:"commits"`
	CommitID  *string                `json:"commit_id"`
	Timestamp int64                  `json:"timestamp"`
	Previous  *Release               `json:"previous"`
	GitHub    RemoteReleaseMetadata  `json:"github"`
	GitLab    RemoteReleaseMetadata  `json:"gitlab"`
	Gitea     RemoteReleaseMetadata  `json:"gitea"`
	Bitbucket RemoteReleaseMetadata  `json:"bitbucket"`
}

// NewRelease creates an empty release with a non-nil commit list.
func NewRelease() *Release {
	return &Release{Commits: []*Commit{}}
}

// RemoteMetadata returns the release metadata slot for the given forge.
func (r *Release) RemoteMetadata(forge Forge) *RemoteReleaseMetadata {
	switch forge {
	case ForgeGitLab:
		return &r.GitLab
	case ForgeGitea:
		return &r.Gitea
	case ForgeBitbucket:
		return &r.Bitbucket
	default:
		return &r.GitHub
	}
}

// PreviousVersion returns the version of the previous release, or empty if
// there is no previous release or it carries no version.
func (r *Release) PreviousVersion() string {
	if r.Previous == nil || r.Previous.Version == nil {
		return ""
	}
	return *r.Previous.Version
}

// Messages returns the commit messages of the release in order.
func (r *Release) Messages() []string {
	messages := make([]string, 0, len(r.Commits))
	for _, commit := range r.Commits {
		messages = append(messages, commit.Message)
	}
	return messages
}

// Releases is the newest-first list of releases of a repository.
type Releases struct {
	Releases []*Release `json:"releases"`
}

// Link wires the Previous chain from the newest-first slice. The release at
// index i gets index i+1 as its predecessor.
func (r *Releases) Link() {
	for i := 0; i < len(r.Releases); i++ {
		if i+1 < len(r.Releases) {
			r.Releases[i].Previous = r.Releases[i+1]
		} else {
			r.Releases[i].Previous = nil
		}
	}
}

// AsJSON returns the release list serialized as a JSON array.
func (r *Releases) AsJSON() (string, error) {
	data, err := json.Marshal(r.Releases)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
