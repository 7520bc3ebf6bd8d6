package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "chronicle/pkg/errors"
	"chronicle/pkg/models"
)

const userAgent = "chronicle"

// Client fetches the raw commit and pull request lists of one forge,
// already fully paginated, for reconciliation.
type Client interface {
	Forge() models.Forge
	Commits(ctx context.Context) ([]models.RemoteCommit, error)
	PullRequests(ctx context.Context) ([]models.RemotePullRequest, error)
}

// NewClient builds a client for a configured remote. The token may be empty
// for public repositories.
func NewClient(cfg models.Remote, token string, fetch models.FetchConfig, logf func(format string, args ...interface{})) (Client, error) {
	api := newAPIClient(token, fetch, logf)
	switch models.Forge(cfg.Provider) {
	case models.ForgeGitHub:
		return newGitHubClient(cfg, api), nil
	case models.ForgeGitLab:
		return newGitLabClient(cfg, api), nil
	case models.ForgeGitea:
		return newGiteaClient(cfg, api), nil
	case models.ForgeBitbucket:
		return newBitbucketClient(cfg, api), nil
	default:
		return nil, apperrors.ConfigError(
			fmt.Sprintf("unknown remote provider %q", cfg.Provider), "remotes.provider")
	}
}

// apiClient is the transport shared by all forge clients: JSON GETs with
// auth headers, retry with backoff on transient failures, and a bounded
// concurrency pagination loop.
type apiClient struct {
	http  *http.Client
	token string
	fetch models.FetchConfig
	retry *apperrors.RetryConfig
	logf  func(format string, args ...interface{})
}

func newAPIClient(token string, fetch models.FetchConfig, logf func(format string, args ...interface{})) *apiClient {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &apiClient{
		http:  &http.Client{Timeout: 30 * time.Second},
		token: token,
		fetch: fetch.WithDefaults(),
		retry: apperrors.DefaultRetryConfig(),
		logf:  logf,
	}
}

// getJSON fetches a URL and decodes the JSON response into out, retrying
// rate limits, server errors and network failures with backoff.
func (c *apiClient) getJSON(ctx context.Context, url, accept, authScheme string, out interface{}) error {
	requestID := uuid.NewString()

	config := *c.retry
	config.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.logf("request %s attempt %d failed, retrying in %s: %v", requestID, attempt, delay, err)
	}

	return apperrors.Retry(ctx, &config, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeRemoteAPI, "failed to build request")
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", accept)
		req.Header.Set("X-Request-ID", requestID)
		if c.token != "" {
			req.Header.Set("Authorization", authScheme+" "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeRemoteAPI, "request failed").AsRecoverable()
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return apperrors.Wrap(err, apperrors.ErrCodeResponseParsing,
					fmt.Sprintf("failed to decode response from %s", url))
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			drain(resp.Body)
			return apperrors.New(apperrors.ErrCodeRateLimited,
				fmt.Sprintf("rate limited by %s", url)).AsRecoverable()
		case resp.StatusCode >= http.StatusInternalServerError:
			drain(resp.Body)
			return apperrors.New(apperrors.ErrCodeServiceUnavailable,
				fmt.Sprintf("server error %d from %s", resp.StatusCode, url)).AsRecoverable()
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			drain(resp.Body)
			return apperrors.RemoteError(
				fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url),
				fmt.Errorf("authentication rejected"))
		default:
			drain(resp.Body)
			return apperrors.New(apperrors.ErrCodeRemoteAPI,
				fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url))
		}
	})
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, body)
}

// fetchAllPages fetches pages in batches of fetch.Concurrency until an
// empty page or fetch.MaxPages is reached, preserving page order. The page
// index passed to pageURL is zero-based.
func fetchAllPages[T any](ctx context.Context, c *apiClient, accept, authScheme string, pageURL func(page int) string) ([]T, error) {
	pages := make([][]T, c.fetch.MaxPages)

	sawEmpty := false
	for start := 0; start < c.fetch.MaxPages && !sawEmpty; start += c.fetch.Concurrency {
		end := start + c.fetch.Concurrency
		if end > c.fetch.MaxPages {
			end = c.fetch.MaxPages
		}

		var wg sync.WaitGroup
		errs := make([]error, end-start)
		for page := start; page < end; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				var out []T
				if err := c.getJSON(ctx, pageURL(page), accept, authScheme, &out); err != nil {
					errs[page-start] = err
					return
				}
				pages[page] = out
			}(page)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		for page := start; page < end; page++ {
			if len(pages[page]) == 0 {
				sawEmpty = true
			}
		}
	}

	var all []T
	for _, page := range pages {
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
	}
	return all, nil
}
