// Package youtrack writes destination issues through the YouTrack REST API.
// It implements the engine's destination writer and project resolver.
package youtrack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yousync/yousync/internal/core/engine"
	"github.com/yousync/yousync/internal/utils/retry"
)

// Client talks to one YouTrack instance.
type Client struct {
	host       *url.URL
	token      string
	httpClient *http.Client
	retry      retry.Config
}

// NewClient creates a client for the given host URL and permanent token.
func NewClient(host, token string) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid YouTrack host %q: %w", host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid YouTrack host %q: missing scheme", host)
	}

	return &Client{
		host:       u,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      retry.DefaultConfig(),
	}, nil
}

// WithRetry overrides the retry policy used for API calls.
func (c *Client) WithRetry(cfg retry.Config) *Client {
	c.retry = cfg
	return c
}

// FindProject searches projects by query and returns matches in the
// server's own ranking order.
func (c *Client) FindProject(ctx context.Context, query string) ([]engine.Project, error) {
	q := url.Values{}
	q.Set("fields", "id,name")
	if query != "" {
		q.Set("query", query)
	}

	var items []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	_, err := retry.Do(ctx, c.retry, "find project", func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodGet, "api/admin/projects", q, nil, &items)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	projects := make([]engine.Project, 0, len(items))
	for _, item := range items {
		projects = append(projects, engine.Project{ID: item.ID, Name: item.Name})
	}
	return projects, nil
}

// CreateIssue creates an issue in the project from the full field set and
// returns the new issue's identifier.
func (c *Client) CreateIssue(ctx context.Context, projectID string, fields engine.DestinationFields) (string, error) {
	payload := issuePayload{
		Project:      &projectRef{ID: projectID},
		Summary:      &fields.Summary,
		Description:  &fields.Description,
		CustomFields: []customField{stateField(fields.State)},
	}

	var created struct {
		ID string `json:"id"`
	}
	_, err := retry.Do(ctx, c.retry, "create issue", func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPost, "api/issues", idFields(), payload, &created)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create issue: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("create issue: response carried no id")
	}

	for _, tag := range fields.Tags {
		if err := c.addTag(ctx, created.ID, tag); err != nil {
			return "", err
		}
	}
	return created.ID, nil
}

// UpdateIssue applies only the changed fields to an existing issue. Tags are
// reconciled individually so tags added manually in YouTrack stay untouched.
func (c *Client) UpdateIssue(ctx context.Context, issueID string, delta engine.Delta) error {
	payload := issuePayload{
		Summary:     delta.Summary,
		Description: delta.Description,
	}
	if delta.State != nil {
		payload.CustomFields = []customField{stateField(*delta.State)}
	}

	if payload.Summary != nil || payload.Description != nil || payload.CustomFields != nil {
		_, err := retry.Do(ctx, c.retry, "update issue", func() (struct{}, error) {
			return struct{}{}, c.do(ctx, http.MethodPost, "api/issues/"+issueID, nil, payload, nil)
		})
		if err != nil {
			return fmt.Errorf("failed to update issue %s: %w", issueID, err)
		}
	}

	for _, tag := range delta.AddTags {
		if err := c.addTag(ctx, issueID, tag); err != nil {
			return err
		}
	}
	if len(delta.RemoveTags) > 0 {
		if err := c.removeTags(ctx, issueID, delta.RemoveTags); err != nil {
			return err
		}
	}
	return nil
}

// addTag attaches a tag to an issue by name.
func (c *Client) addTag(ctx context.Context, issueID, name string) error {
	_, err := retry.Do(ctx, c.retry, "add tag", func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPost, "api/issues/"+issueID+"/tags", nil, issueTag{Name: name}, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to tag issue %s with %q: %w", issueID, name, err)
	}
	return nil
}

// removeTags detaches the named tags from an issue. Tag removal needs the tag
// IDs, so the issue's current tags are listed first.
func (c *Client) removeTags(ctx context.Context, issueID string, names []string) error {
	q := url.Values{}
	q.Set("fields", "id,name")

	var tags []issueTag
	_, err := retry.Do(ctx, c.retry, "list tags", func() (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodGet, "api/issues/"+issueID+"/tags", q, nil, &tags)
	})
	if err != nil {
		return fmt.Errorf("failed to list tags of issue %s: %w", issueID, err)
	}

	byName := make(map[string]string, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag.ID
	}

	for _, name := range names {
		tagID, ok := byName[name]
		if !ok {
			// Already gone on the destination side.
			continue
		}
		_, err := retry.Do(ctx, c.retry, "remove tag", func() (struct{}, error) {
			return struct{}{}, c.do(ctx, http.MethodDelete, "api/issues/"+issueID+"/tags/"+tagID, nil, nil, nil)
		})
		if err != nil {
			return fmt.Errorf("failed to remove tag %q from issue %s: %w", name, issueID, err)
		}
	}
	return nil
}

// idFields asks the server to return the id of a created entity.
func idFields() url.Values {
	q := url.Values{}
	q.Set("fields", "id")
	return q
}

// do performs one JSON request against the API. A non-2xx response becomes a
// typed *APIError carrying the status, body and any Retry-After signal.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.host.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(b)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
