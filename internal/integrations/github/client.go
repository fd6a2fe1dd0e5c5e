// Package github reads source issues from the GitHub API.
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v60/github"

	"github.com/yousync/yousync/internal/core/engine"
	"github.com/yousync/yousync/internal/utils/retry"
)

// Client wraps the GitHub API client as the engine's source reader.
type Client struct {
	client *github.Client
	retry  retry.Config
}

// ListIssues returns every issue in the repository, open and closed, as a
// fully materialized set. Pagination is handled internally and pull requests
// are filtered out (the GitHub API returns PRs as issues).
func (c *Client) ListIssues(ctx context.Context, owner, repo string) ([]engine.SourceIssue, error) {
	var all []engine.SourceIssue
	opts := &github.IssueListByRepoOptions{
		State: "all",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	type page struct {
		issues []*github.Issue
		resp   *github.Response
	}

	for {
		p, err := retry.Do(ctx, c.retry, "list issues", func() (page, error) {
			issues, resp, err := c.client.Issues.ListByRepo(ctx, owner, repo, opts)
			return page{issues: issues, resp: resp}, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, repo, err)
		}

		for _, issue := range p.issues {
			if issue.PullRequestLinks != nil {
				continue
			}
			all = append(all, convertIssue(issue))
		}

		if p.resp == nil || p.resp.NextPage == 0 {
			break
		}
		opts.Page = p.resp.NextPage
	}

	return all, nil
}

// convertIssue maps a GitHub API issue onto the engine's source issue.
func convertIssue(issue *github.Issue) engine.SourceIssue {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		if name := l.GetName(); name != "" {
			labels = append(labels, name)
		}
	}

	return engine.SourceIssue{
		ID:          issue.GetID(),
		Number:      issue.GetNumber(),
		Title:       issue.GetTitle(),
		Body:        issue.GetBody(),
		State:       issue.GetState(),
		StateReason: issue.GetStateReason(),
		Labels:      labels,
		UpdatedAt:   issue.GetUpdatedAt().Time,
	}
}
