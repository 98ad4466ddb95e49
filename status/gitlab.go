// Package status reports build results to the commit-status API of the
// hosting platform.
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// State is a commit status value understood by GitLab.
type State string

const (
	StateRunning  State = "running"
	StateSuccess  State = "success"
	StateFailed   State = "failed"
	StateCanceled State = "canceled"
)

const statusContext = "layerci"

// Client posts commit statuses to a GitLab instance.
type Client struct {
	baseURL   string
	token     string
	projectID string
	sha       string
	client    *http.Client
}

// New creates a commit-status client. All four values are required; the CI
// server injects them as scoped credentials and build metadata.
func New(baseURL, token, projectID, sha string) (*Client, error) {
	if baseURL == "" || token == "" || projectID == "" || sha == "" {
		return nil, fmt.Errorf("gitlab status: base URL, token, project ID, and commit SHA are all required")
	}
	return &Client{
		baseURL:   baseURL,
		token:     token,
		projectID: projectID,
		sha:       sha,
		client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Publish sets the commit status for the build's SHA.
func (c *Client) Publish(ctx context.Context, state State, description string) error {
	body, err := json.Marshal(map[string]string{
		"state":       string(state),
		"description": description,
		"context":     statusContext,
	})
	if err != nil {
		return fmt.Errorf("gitlab status: marshalling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/statuses/%s",
		c.baseURL, url.PathEscape(c.projectID), url.PathEscape(c.sha))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gitlab status: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PRIVATE-TOKEN", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gitlab status: posting %s: %w", state, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gitlab status: API returned %d for state %s", resp.StatusCode, state)
	}
	return nil
}
