// Package git loads commit history from a repository and slices it into
// releases along version tags.
package git

import (
	"regexp"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	apperrors "chronicle/pkg/errors"
	"chronicle/pkg/models"
)

// Tag is a release tag resolved to the commit it points at.
type Tag struct {
	Name string
	Hash string
}

// CommitRecord is one commit from the history walk, newest first.
type CommitRecord struct {
	Hash      string
	Message   string
	Timestamp int64
}

// Service reads history from a local repository.
type Service struct {
	repo *gogit.Repository
}

// NewService opens an existing repository.
func NewService(repoPath string) (*Service, error) {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeRepoNotFound, "failed to open repository").
			WithContext("path", repoPath).
			WithSuggestions("Run the command inside a git repository or pass --repository")
	}
	return &Service{repo: repo}, nil
}

// Tags returns the repository tags resolved to commit hashes, filtered by
// the optional pattern. Annotated tags are peeled to their target commit.
func (s *Service) Tags(pattern *regexp.Regexp) (map[string]Tag, error) {
	iter, err := s.repo.Tags()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeGit, "failed to list tags")
	}

	tags := make(map[string]Tag)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if pattern != nil && !pattern.MatchString(name) {
			return nil
		}

		hash := ref.Hash()
		if tagObject, err := s.repo.TagObject(hash); err == nil {
			commit, err := tagObject.Commit()
			if err != nil {
				return err
			}
			hash = commit.Hash
		}

		tags[hash.String()] = Tag{Name: name, Hash: hash.String()}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeGit, "failed to resolve tags")
	}
	return tags, nil
}

// History walks the commit log from HEAD, newest first.
func (s *Service) History() ([]CommitRecord, error) {
	head, err := s.repo.Head()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeGit, "failed to get HEAD reference")
	}

	iter, err := s.repo.Log(&gogit.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeGit, "failed to get commit log")
	}

	var records []CommitRecord
	err = iter.ForEach(func(commit *object.Commit) error {
		records = append(records, CommitRecord{
			Hash:      commit.Hash.String(),
			Message:   strings.TrimSpace(commit.Message),
			Timestamp: commit.Committer.When.Unix(),
		})
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeGit, "failed to iterate commits")
	}
	return records, nil
}

// Releases loads the full history and slices it into a newest-first,
// backward-linked release list. tagPattern may be empty.
func (s *Service) Releases(tagPattern string) (*models.Releases, error) {
	var pattern *regexp.Regexp
	if tagPattern != "" {
		compiled, err := regexp.Compile(tagPattern)
		if err != nil {
			return nil, apperrors.ConfigError("invalid tag pattern: "+err.Error(), "changelog.tag_pattern")
		}
		pattern = compiled
	}

	tags, err := s.Tags(pattern)
	if err != nil {
		return nil, err
	}
	history, err := s.History()
	if err != nil {
		return nil, err
	}

	return BuildReleases(history, tags), nil
}

// BuildReleases slices a newest-first commit history into releases. Each
// tagged commit starts a release owning it and every untagged commit newer
// than it back to the next tag; commits newer than the newest tag form the
// unreleased entry at the head of the list. The result is linked newest
// first through Previous.
func BuildReleases(history []CommitRecord, tags map[string]Tag) *models.Releases {
	releases := &models.Releases{Releases: []*models.Release{}}
	current := models.NewRelease()

	for _, record := range history {
		if tag, tagged := tags[record.Hash]; tagged {
			if len(current.Commits) > 0 || current.Version != nil {
				releases.Releases = append(releases.Releases, current)
			}
			current = models.NewRelease()
			name := tag.Name
			hash := record.Hash
			current.Version = &name
			current.CommitID = &hash
			current.Timestamp = record.Timestamp
		}
		current.Commits = append(current.Commits, models.NewCommit(record.Hash, record.Message))
	}
	if len(current.Commits) > 0 || current.Version != nil {
		releases.Releases = append(releases.Releases, current)
	}

	releases.Link()
	return releases
}
