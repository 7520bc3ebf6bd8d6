package remote

import (
	"context"
	"fmt"
	"strings"

	"chronicle/pkg/models"
)

const (
	giteaAPIURL = "https://gitea.com/api/v1"
	giteaAccept = "application/json"
)

// GiteaCommit is a single commit from the Gitea REST API.
type GiteaCommit struct {
	SHA    string             `json:"sha"`
	Author *GiteaCommitAuthor `json:"author"`
}

// GiteaCommitAuthor is the commit author resolved by Gitea.
type GiteaCommitAuthor struct {
	Login *string `json:"login"`
}

// RemoteCommit converts the commit to its forge-agnostic shape.
func (c GiteaCommit) RemoteCommit() models.RemoteCommit {
	remote := models.RemoteCommit{ID: c.SHA}
	if c.Author != nil {
		remote.Username = c.Author.Login
	}
	return remote
}

// GiteaPullRequestLabel is a label attached to a pull request.
type GiteaPullRequestLabel struct {
	Name string `json:"name"`
}

// GiteaPullRequest is a single pull request from the Gitea REST API.
type GiteaPullRequest struct {
	Number         int64                   `json:"number"`
	Title          *string                 `json:"title"`
	MergeCommitSHA *string                 `json:"merge_commit_sha"`
	Labels         []GiteaPullRequestLabel `json:"labels"`
}

// RemotePullRequest converts the pull request to its forge-agnostic shape.
func (p GiteaPullRequest) RemotePullRequest() models.RemotePullRequest {
	labels := make([]string, 0, len(p.Labels))
	for _, label := range p.Labels {
		labels = append(labels, label.Name)
	}
	return models.RemotePullRequest{
		Number:      p.Number,
		Title:       p.Title,
		Labels:      labels,
		MergeCommit: p.MergeCommitSHA,
	}
}

type giteaClient struct {
	api    *apiClient
	apiURL string
	owner  string
	repo   string
}

func newGiteaClient(cfg models.Remote, api *apiClient) *giteaClient {
	apiURL := giteaAPIURL
	if cfg.APIURL != "" {
		apiURL = strings.TrimSuffix(cfg.APIURL, "/")
	}
	return &giteaClient{api: api, apiURL: apiURL, owner: cfg.Owner, repo: cfg.Repo}
}

func (c *giteaClient) Forge() models.Forge {
	return models.ForgeGitea
}

func (c *giteaClient) Commits(ctx context.Context) ([]models.RemoteCommit, error) {
	commits, err := fetchAllPages[GiteaCommit](ctx, c.api, giteaAccept, "token", func(page int) string {
		return fmt.Sprintf("%s/repos/%s/%s/commits?limit=%d&page=%d",
			c.apiURL, c.owner, c.repo, c.api.fetch.PageSize, page+1)
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

func (c *giteaClient) PullRequests(ctx context.Context) ([]models.RemotePullRequest, error) {
	requests, err := fetchAllPages[GiteaPullRequest](ctx, c.api, giteaAccept, "token", func(page int) string {
		return fmt.Sprintf("%s/repos/%s/%s/pulls?state=closed&limit=%d&page=%d",
			c.apiURL, c.owner, c.repo, c.api.fetch.PageSize, page+1)
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
