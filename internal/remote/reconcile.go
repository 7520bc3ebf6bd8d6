// Package remote joins local commit history with contributor and pull
// request metadata fetched from forge REST APIs.
package remote

import (
	"chronicle/pkg/models"
)

// usernameKey distinguishes "no username" from an empty username so commits
// with no resolvable author still form exactly one roster group.
type usernameKey struct {
	resolved bool
	name     string
}

func keyFor(username *string) usernameKey {
	if username == nil {
		return usernameKey{}
	}
	return usernameKey{resolved: true, name: *username}
}

// Reconcile annotates each commit with the contributor and pull request
// metadata of the given forge and returns the aggregated contributor roster
// of the release.
//
// Commits are matched by full SHA against remoteCommits and against the
// merge commit SHA of remoteRequests; on duplicate SHAs the last entry wins.
// Unmatched commits keep default annotations, this is a pure data join with
// no error path. The roster holds one entry per distinct username (plus one
// for commits with no username) in order of first appearance, each carrying
// the PR fields of the group's first commit that has any, and IsFirstTime
// set: the flag marks presence newly recorded by this call, cross-release
// deduplication is the caller's concern.
func Reconcile(commits []*models.Commit, remoteCommits []models.RemoteCommit, remoteRequests []models.RemotePullRequest, forge models.Forge) models.RemoteReleaseMetadata {
	commitsBySHA := make(map[string]models.RemoteCommit, len(remoteCommits))
	for _, remoteCommit := range remoteCommits {
		commitsBySHA[remoteCommit.ID] = remoteCommit
	}

	requestsByMergeSHA := make(map[string]models.RemotePullRequest, len(remoteRequests))
	for _, request := range remoteRequests {
		if request.MergeCommit == nil {
			continue
		}
		requestsByMergeSHA[*request.MergeCommit] = request
	}

	for _, commit := range commits {
		contributor := models.RemoteContributor{PRLabels: []string{}}
		if remoteCommit, ok := commitsBySHA[commit.ID]; ok {
			contributor.Username = remoteCommit.Username
		}
		if request, ok := requestsByMergeSHA[commit.ID]; ok {
			contributor.PRTitle = request.Title
			number := request.Number
			contributor.PRNumber = &number
			contributor.PRLabels = append(contributor.PRLabels, request.Labels...)
		}
		*commit.Remote(forge) = contributor
	}

	metadata := models.RemoteReleaseMetadata{Contributors: []models.RemoteContributor{}}
	index := make(map[usernameKey]int)
	for _, commit := range commits {
		annotated := commit.Remote(forge)
		key := keyFor(annotated.Username)

		if at, seen := index[key]; seen {
			entry := &metadata.Contributors[at]
			if !entry.HasPR() && annotated.HasPR() {
				entry.PRTitle = annotated.PRTitle
				entry.PRNumber = annotated.PRNumber
				entry.PRLabels = append([]string{}, annotated.PRLabels...)
			}
			continue
		}

		index[key] = len(metadata.Contributors)
		metadata.Contributors = append(metadata.Contributors, models.RemoteContributor{
			Username:    annotated.Username,
			PRTitle:     annotated.PRTitle,
			PRNumber:    annotated.PRNumber,
			PRLabels:    append([]string{}, annotated.PRLabels...),
			IsFirstTime: true,
		})
	}

	return metadata
}

// UpdateMetadata reconciles a release in place for one forge: every commit's
// forge slot is rewritten and the release's forge metadata slot is replaced
// with the freshly derived roster. Calling it again with the same inputs
// reproduces the same state.
func UpdateMetadata(release *models.Release, remoteCommits []models.RemoteCommit, remoteRequests []models.RemotePullRequest, forge models.Forge) {
	*release.RemoteMetadata(forge) = Reconcile(release.Commits, remoteCommits, remoteRequests, forge)
}
