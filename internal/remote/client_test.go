package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "chronicle/pkg/errors"
	"chronicle/pkg/models"
)

func testFetchConfig() models.FetchConfig {
	return models.FetchConfig{MaxPages: 5, PageSize: 2, Concurrency: 2}
}

func newTestClient(t *testing.T, provider string, server *httptest.Server) Client {
	t.Helper()
	client, err := NewClient(models.Remote{
		Provider: provider,
		Owner:    "orhun",
		Repo:     "chronicle",
		APIURL:   server.URL,
	}, "test-token", testFetchConfig(), nil)
	require.NoError(t, err)
	return client
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(models.Remote{Provider: "sourcehut"}, "", models.FetchConfig{}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.GetErrorCode(err))
}

func TestGitHubClientPaginatesCommits(t *testing.T) {
	pages := map[string][]GitHubCommit{
		"1": {
			{SHA: "aaa", Author: &GitHubCommitAuthor{Login: stringPtr("orhun")}},
			{SHA: "bbb", Author: nil},
		},
		"2": {
			{SHA: "ccc", Author: &GitHubCommitAuthor{Login: nil}},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/orhun/chronicle/commits", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(pages[r.URL.Query().Get("page")])
	}))
	defer server.Close()

	commits, err := newTestClient(t, "github", server).Commits(context.Background())
	require.NoError(t, err)

	expected := []models.RemoteCommit{
		{ID: "aaa", Username: stringPtr("orhun")},
		{ID: "bbb"},
		{ID: "ccc"},
	}
	assert.Equal(t, expected, commits)
}

func TestGitHubClientPullRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/orhun/chronicle/pulls", r.URL.Path)
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, "[]")
			return
		}
		_ = json.NewEncoder(w).Encode([]GitHubPullRequest{
			{
				Number:         42,
				Title:          stringPtr("1"),
				MergeCommitSHA: stringPtr("aaa"),
				Labels:         []GitHubPullRequestLabel{{Name: "rust"}},
			},
			{Number: 43, Title: stringPtr("unmerged")},
		})
	}))
	defer server.Close()

	requests, err := newTestClient(t, "github", server).PullRequests(context.Background())
	require.NoError(t, err)

	expected := []models.RemotePullRequest{
		{Number: 42, Title: stringPtr("1"), Labels: []string{"rust"}, MergeCommit: stringPtr("aaa")},
		{Number: 43, Title: stringPtr("unmerged"), Labels: []string{}},
	}
	assert.Equal(t, expected, requests)
}

func TestGitLabClientResolvesProject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/orhun%2Fchronicle", "/projects/orhun/chronicle":
			_ = json.NewEncoder(w).Encode(GitLabProject{ID: 77})
		case "/projects/77/repository/commits":
			if r.URL.Query().Get("page") != "1" {
				fmt.Fprint(w, "[]")
				return
			}
			_ = json.NewEncoder(w).Encode([]GitLabCommit{{ID: "aaa", AuthorName: "orhun"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	commits, err := newTestClient(t, "gitlab", server).Commits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.RemoteCommit{{ID: "aaa", Username: stringPtr("orhun")}}, commits)
}

func TestBitbucketClientUnwrapsEnvelopes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repositories/orhun/chronicle/pullrequests", r.URL.Path)
		if r.URL.Query().Get("page") != "1" {
			fmt.Fprint(w, `{"values":[]}`)
			return
		}
		_ = json.NewEncoder(w).Encode(BitbucketPage[BitbucketPullRequest]{
			Values: []BitbucketPullRequest{
				{ID: 9, Title: stringPtr("fix"), MergeCommit: &BitbucketMergeCommit{Hash: "abc"}},
			},
		})
	}))
	defer server.Close()

	requests, err := newTestClient(t, "bitbucket", server).PullRequests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.RemotePullRequest{
		{Number: 9, Title: stringPtr("fix"), Labels: []string{}, MergeCommit: stringPtr("abc")},
	}, requests)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	api := newAPIClient("", models.FetchConfig{MaxPages: 1, PageSize: 1, Concurrency: 1}, nil)
	api.retry.InitialDelay = time.Millisecond
	api.retry.Jitter = false
	var out []GitHubCommit
	err := api.getJSON(context.Background(), server.URL, githubAccept, "Bearer", &out)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientAuthFailureIsFatal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	api := newAPIClient("bad-token", models.FetchConfig{}, nil)
	var out []GitHubCommit
	err := api.getJSON(context.Background(), server.URL, githubAccept, "Bearer", &out)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeRemoteAuth, apperrors.GetErrorCode(err))
	assert.Equal(t, int32(1), calls.Load())
}
