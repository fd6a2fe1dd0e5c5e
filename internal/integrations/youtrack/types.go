package youtrack

import (
	"fmt"
	"net/http"
	"time"
)

// APIError is a non-2xx response from the YouTrack API.
type APIError struct {
	StatusCode int
	Body       string

	retryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("YouTrack API error: %d", e.StatusCode)
	}
	return fmt.Sprintf("YouTrack API error: %d - %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed on retry.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RetryAfter returns the server-signaled wait, or zero if none was given.
func (e *APIError) RetryAfter() time.Duration {
	return e.retryAfter
}

// projectRef references a project by ID in issue payloads.
type projectRef struct {
	ID string `json:"id"`
}

// stateValue is the state bundle element applied to the State custom field.
type stateValue struct {
	Name string `json:"name"`
}

// customField is the State custom field as YouTrack expects it.
type customField struct {
	Name  string     `json:"name"`
	Type  string     `json:"$type"`
	Value stateValue `json:"value"`
}

// issuePayload is the create/update body. Nil pointers are omitted, so an
// update carries only the fields that actually changed.
type issuePayload struct {
	Project      *projectRef   `json:"project,omitempty"`
	Summary      *string       `json:"summary,omitempty"`
	Description  *string       `json:"description,omitempty"`
	CustomFields []customField `json:"customFields,omitempty"`
}

// stateField builds the State custom field for a state bundle element name.
func stateField(name string) customField {
	return customField{
		Name:  "State",
		Type:  "StateIssueCustomField",
		Value: stateValue{Name: name},
	}
}

// issueTag is a tag attached to an issue.
type issueTag struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}
