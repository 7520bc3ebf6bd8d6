package remote

import (
	"context"
	"fmt"
	"strings"

	"chronicle/pkg/models"
)

const (
	githubAPIURL = "https://api.github.com"
	githubAccept = "application/vnd.github+json"
)

// GitHubCommit is a single commit from the GitHub REST API.
type GitHubCommit struct {
	SHA    string              `json:"sha"`
	Author *GitHubCommitAuthor `json:"author"`
}

// GitHubCommitAuthor is the commit author resolved by GitHub.
type GitHubCommitAuthor struct {
	Login *string `json:"login"`
}

// RemoteCommit converts the commit to its forge-agnostic shape.
func (c GitHubCommit) RemoteCommit() models.RemoteCommit {
	remote := models.RemoteCommit{ID: c.SHA}
	if c.Author != nil {
		remote.Username = c.Author.Login
	}
	return remote
}

// GitHubPullRequestLabel is a label attached to a pull request.
type GitHubPullRequestLabel struct {
	Name string `json:"name"`
}

// GitHubPullRequest is a single pull request from the GitHub REST API.
type GitHubPullRequest struct {
	Number         int64                    `json:"number"`
	Title          *string                  `json:"title"`
	MergeCommitSHA *string                  `json:"merge_commit_sha"`
	Labels         []GitHubPullRequestLabel `json:"labels"`
}

// RemotePullRequest converts the pull request to its forge-agnostic shape.
func (p GitHubPullRequest) RemotePullRequest() models.RemotePullRequest {
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

type githubClient struct {
	api    *apiClient
	apiURL string
	owner  string
	repo   string
}

func newGitHubClient(cfg models.Remote, api *apiClient) *githubClient {
	apiURL := githubAPIURL
	if cfg.APIURL != "" {
		apiURL = strings.TrimSuffix(cfg.APIURL, "/")
	}
	return &githubClient{api: api, apiURL: apiURL, owner: cfg.Owner, repo: cfg.Repo}
}

func (c *githubClient) Forge() models.Forge {
	return models.ForgeGitHub
}

func (c *githubClient) Commits(ctx context.Context) ([]models.RemoteCommit, error) {
	commits, err := fetchAllPages[GitHubCommit](ctx, c.api, githubAccept, "Bearer", func(page int) string {
		return fmt.Sprintf("%s/repos/%s/%s/commits?per_page=%d&page=%d",
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

func (c *githubClient) PullRequests(ctx context.Context) ([]models.RemotePullRequest, error) {
	requests, err := fetchAllPages[GitHubPullRequest](ctx, c.api, githubAccept, "Bearer", func(page int) string {
		return fmt.Sprintf("%s/repos/%s/%s/pulls?per_page=%d&page=%d&state=closed",
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
