package remote

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"chronicle/pkg/models"
)

const (
	gitlabAPIURL = "https://gitlab.com/api/v4"
	gitlabAccept = "application/json"
)

// GitLabProject identifies a project; commits and merge requests are
// addressed by its numeric id.
type GitLabProject struct {
	ID int64 `json:"id"`
}

// GitLabCommit is a single commit from the GitLab REST API.
type GitLabCommit struct {
	ID         string `json:"id"`
	AuthorName string `json:"author_name"`
}

// RemoteCommit converts the commit to its forge-agnostic shape.
func (c GitLabCommit) RemoteCommit() models.RemoteCommit {
	name := c.AuthorName
	return models.RemoteCommit{ID: c.ID, Username: &name}
}

// GitLabMergeRequest is a single merge request from the GitLab REST API.
type GitLabMergeRequest struct {
	IID            int64    `json:"iid"`
	Title          string   `json:"title"`
	MergeCommitSHA *string  `json:"merge_commit_sha"`
	Labels         []string `json:"labels"`
}

// RemotePullRequest converts the merge request to its forge-agnostic shape.
func (m GitLabMergeRequest) RemotePullRequest() models.RemotePullRequest {
	title := m.Title
	labels := append([]string{}, m.Labels...)
	return models.RemotePullRequest{
		Number:      m.IID,
		Title:       &title,
		Labels:      labels,
		MergeCommit: m.MergeCommitSHA,
	}
}

type gitlabClient struct {
	api    *apiClient
	apiURL string
	owner  string
	repo   string

	projectID int64
}

func newGitLabClient(cfg models.Remote, api *apiClient) *gitlabClient {
	apiURL := gitlabAPIURL
	if cfg.APIURL != "" {
		apiURL = strings.TrimSuffix(cfg.APIURL, "/")
	}
	return &gitlabClient{api: api, apiURL: apiURL, owner: cfg.Owner, repo: cfg.Repo}
}

func (c *gitlabClient) Forge() models.Forge {
	return models.ForgeGitLab
}

// resolveProject looks up the numeric project id from the owner/repo path.
func (c *gitlabClient) resolveProject(ctx context.Context) error {
	if c.projectID != 0 {
		return nil
	}
	var project GitLabProject
	endpoint := fmt.Sprintf("%s/projects/%s", c.apiURL,
		url.PathEscape(c.owner+"/"+c.repo))
	if err := c.api.getJSON(ctx, endpoint, gitlabAccept, "Bearer", &project); err != nil {
		return err
	}
	c.projectID = project.ID
	return nil
}

func (c *gitlabClient) Commits(ctx context.Context) ([]models.RemoteCommit, error) {
	if err := c.resolveProject(ctx); err != nil {
		return nil, err
	}

	commits, err := fetchAllPages[GitLabCommit](ctx, c.api, gitlabAccept, "Bearer", func(page int) string {
		return fmt.Sprintf("%s/projects/%d/repository/commits?per_page=%d&page=%d",
			c.apiURL, c.projectID, c.api.fetch.PageSize, page+1)
	})
	if err != nil {
		return nil, err
	}

	remote := make([]models.RemoteCommit, 0, len(commits))
	for _, commit := range commits {
		remote = append(remote, commit.RemoteCommit())
	}
	return remote, nil
}

func (c *gitlabClient) PullRequests(ctx context.Context) ([]models.RemotePullRequest, error) {
	if err := c.resolveProject(ctx); err != nil {
		return nil, err
	}

	requests, err := fetchAllPages[GitLabMergeRequest](ctx, c.api, gitlabAccept, "Bearer", func(page int) string {
		return fmt.Sprintf("%s/projects/%d/merge_requests?per_page=%d&page=%d&state=merged",
			c.apiURL, c.projectID, c.api.fetch.PageSize, page+1)
	})
	if err != nil {
		return nil, err
	}

	remote := make([]models.RemotePullRequest, 0, len(requests))
	for _, request := range requests {
		remote = append(remote, request.RemotePullRequest())
	}
	return remote, nil
}
