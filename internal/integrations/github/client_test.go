package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v60/github"

	"github.com/yousync/yousync/internal/utils/retry"
)

func fastRetry() retry.Config {
	return retry.Config{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

// newTestClient points a Client at an httptest server instead of api.github.com.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gh := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("parsing server URL: %v", err)
	}
	gh.BaseURL = base

	return &Client{client: gh, retry: fastRetry()}
}

func TestListIssues_PaginatesAndFiltersPRs(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/repos/octo/demo/issues", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("state"); got != "all" {
			t.Errorf("state = %q, want all", got)
		}

		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/demo/issues?page=2>; rel="next"`, server.URL))
			io.WriteString(w, `[
				{"id": 101, "number": 1, "title": "Bug", "body": "crash on start",
				 "state": "open", "labels": [{"name": "bug"}, {"name": "crash"}],
				 "updated_at": "2026-08-20T12:00:00Z"},
				{"id": 102, "number": 2, "title": "Add feature", "state": "open",
				 "pull_request": {"url": "https://api.github.com/repos/octo/demo/pulls/2"}}
			]`)
		case "2":
			io.WriteString(w, `[
				{"id": 103, "number": 3, "title": "Fixed bug", "state": "closed",
				 "state_reason": "completed"}
			]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			io.WriteString(w, `[]`)
		}
	})

	gh := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("parsing server URL: %v", err)
	}
	gh.BaseURL = base
	client := &Client{client: gh, retry: fastRetry()}

	issues, err := client.ListIssues(context.Background(), "octo", "demo")
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}

	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2 (pull request filtered out)", len(issues))
	}

	first := issues[0]
	if first.ID != 101 || first.Number != 1 || first.Title != "Bug" || first.Body != "crash on start" {
		t.Errorf("first issue = %+v", first)
	}
	if first.State != "open" || first.StateReason != "" {
		t.Errorf("first issue state = %q/%q", first.State, first.StateReason)
	}
	if len(first.Labels) != 2 || first.Labels[0] != "bug" || first.Labels[1] != "crash" {
		t.Errorf("first issue labels = %v", first.Labels)
	}
	if first.UpdatedAt != time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) {
		t.Errorf("first issue updated at = %v", first.UpdatedAt)
	}

	second := issues[1]
	if second.ID != 103 || second.State != "closed" || second.StateReason != "completed" {
		t.Errorf("second issue = %+v", second)
	}
}

func TestListIssues_RetriesServerErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"message": "no luck"}`, http.StatusBadGateway)
			return
		}
		io.WriteString(w, `[{"id": 101, "number": 1, "title": "Bug"}]`)
	}))

	issues, err := client.ListIssues(context.Background(), "octo", "demo")
	if err != nil {
		t.Fatalf("ListIssues failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(issues) != 1 {
		t.Errorf("issues = %d, want 1", len(issues))
	}
}

func TestListIssues_SurfacesNotFound(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	}))

	if _, err := client.ListIssues(context.Background(), "octo", "gone"); err == nil {
		t.Fatal("ListIssues succeeded, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (404 is not retried)", calls)
	}
}

func TestNewClient(t *testing.T) {
	if c := NewClient(context.Background(), "token"); c == nil || c.client == nil {
		t.Fatal("NewClient returned an incomplete client")
	}
	if c := NewClient(context.Background(), ""); c == nil || c.client == nil {
		t.Fatal("NewClient without token returned an incomplete client")
	}
}
