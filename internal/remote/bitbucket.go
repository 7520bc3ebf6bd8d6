package remote

import (
	"context"
	"fmt"
	"strings"

	"chronicle/pkg/models"
)

const (
	bitbucketAPIURL = "https://api.bitbucket.org/2.0"
	bitbucketAccept = "application/json"
)

// BitbucketPage wraps the paginated list responses of the Bitbucket API.
type BitbucketPage[T any] struct {
	Values []T `json:"values"`
}

// BitbucketCommit is a single commit from the Bitbucket REST API.
type BitbucketCommit struct {
	Hash   string                 `json:"hash"`
	Author *BitbucketCommitAuthor `json:"author"`
}

// BitbucketCommitAuthor is the commit author resolved by Bitbucket.
type BitbucketCommitAuthor struct {
	User *BitbucketUser `json:"user"`
}

// BitbucketUser is a Bitbucket account.
type BitbucketUser struct {
	Nickname *string `json:"nickname"`
}

// RemoteCommit converts the commit to its forge-agnostic shape.
func (c BitbucketCommit) RemoteCommit() models.RemoteCommit {
	remote := models.RemoteCommit{ID: c.Hash}
	if c.Author != nil && c.Author.User != nil {
		remote.Username = c.Author.User.Nickname
	}
	return remote
}

// BitbucketPullRequest is a single pull request from the Bitbucket REST API.
// Bitbucket has no pull request labels; the forge-agnostic label list stays
// empty.
type BitbucketPullRequest struct {
	ID          int64                 `json:"id"`
	Title       *string               `json:"title"`
	MergeCommit *BitbucketMergeCommit `json:"merge_commit"`
}

// BitbucketMergeCommit references the commit that merged a pull request.
type BitbucketMergeCommit struct {
	Hash string `json:"hash"`
}

// RemotePullRequest converts the pull request to its forge-agnostic shape.
func (p BitbucketPullRequest) RemotePullRequest() models.RemotePullRequest {
	request := models.RemotePullRequest{
		Number: p.ID,
		Title:  p.Title,
		Labels: []string{},
	}
	if p.MergeCommit != nil {
		hash := p.MergeCommit.Hash
		request.MergeCommit = &hash
	}
	return request
}

type bitbucketClient struct {
	api    *apiClient
	apiURL string
	owner  string
	repo   string
}

func newBitbucketClient(cfg models.Remote, api *apiClient) *bitbucketClient {
	apiURL := bitbucketAPIURL
	if cfg.APIURL != "" {
		apiURL = strings.TrimSuffix(cfg.APIURL, "/")
	}
	return &bitbucketClient{api: api, apiURL: apiURL, owner: cfg.Owner, repo: cfg.Repo}
}

func (c *bitbucketClient) Forge() models.Forge {
	return models.ForgeBitbucket
}

// fetchBitbucketPages walks the wrapped page envelopes sequentially. The
// Bitbucket API rejects out-of-range page numbers with an error status.
func fetchBitbucketPages[T any](ctx context.Context, c *bitbucketClient, pageURL func(page int) string) ([]T, error) {
	var all []T
	for page := 0; page < c.api.fetch.MaxPages; page++ {
		var envelope BitbucketPage[T]
		if err := c.api.getJSON(ctx, pageURL(page), bitbucketAccept, "Bearer", &envelope); err != nil {
			return nil, err
		}
		if len(envelope.Values) == 0 {
			break
		}
		all = append(all, envelope.Values...)
	}
	return all, nil
}

func (c *bitbucketClient) Commits(ctx context.Context) ([]models.RemoteCommit, error) {
	commits, err := fetchBitbucketPages[BitbucketCommit](ctx, c, func(page int) string {
		return fmt.Sprintf("%s/repositories/%s/%s/commits?pagelen=%d&page=%d",
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

func (c *bitbucketClient) PullRequests(ctx context.Context) ([]models.RemotePullRequest, error) {
	requests, err := fetchBitbucketPages[BitbucketPullRequest](ctx, c, func(page int) string {
		return fmt.Sprintf("%s/repositories/%s/%s/pullrequests?state=MERGED&pagelen=%d&page=%d",
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
