package github

import (
	"context"
	"net/http"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"

	"github.com/yousync/yousync/internal/utils/retry"
)

// NewClient creates a new GitHub client using the provided token.
// If token is empty, it returns an unauthenticated client.
func NewClient(ctx context.Context, token string) *Client {
	var tc *http.Client

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(tc)

	return &Client{
		client: client,
		retry:  retry.DefaultConfig(),
	}
}

// WithRetry overrides the retry policy used for API calls.
func (c *Client) WithRetry(cfg retry.Config) *Client {
	c.retry = cfg
	return c
}
