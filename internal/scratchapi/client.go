// Package scratchapi is a thin client for the three public Scratch
// endpoints the pipeline needs: project metadata, project.json download and
// asset download. All calls send a browser User-Agent; the API refuses the
// default Go one.
package scratchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBase      = "https://api.scratch.mit.edu"
	defaultProjectsBase = "https://projects.scratch.mit.edu"
	defaultAssetsBase   = "https://assets.scratch.mit.edu"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Sentinel errors callers branch on with errors.Is.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectPrivate   = errors.New("project is private or unshared")
	ErrAssetUnavailable = errors.New("asset unavailable")
)

// Client talks to the Scratch web API.
type Client struct {
	httpClient   *http.Client
	apiBase      string
	projectsBase string
	assetsBase   string
	userAgent    string
}

// New returns a client against the public Scratch endpoints.
func New() *Client {
	return NewWithEndpoints(defaultAPIBase, defaultProjectsBase, defaultAssetsBase)
}

// NewWithEndpoints overrides the three base URLs; tests point them at a
// local server.
func NewWithEndpoints(apiBase, projectsBase, assetsBase string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiBase:      strings.TrimRight(apiBase, "/"),
		projectsBase: strings.TrimRight(projectsBase, "/"),
		assetsBase:   strings.TrimRight(assetsBase, "/"),
		userAgent:    browserUserAgent,
	}
}

// ProjectMetadata fetches the metadata record for a project id. A missing
// project token means the project cannot be downloaded, which the API uses
// for private and unshared projects; that comes back as ErrProjectPrivate.
func (c *Client) ProjectMetadata(ctx context.Context, id string) (*ProjectMetadata, error) {
	resp, err := c.get(ctx, c.apiBase+"/projects/"+id)
	if err != nil {
		return nil, fmt.Errorf("project %s metadata: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("project %s: %w", id, ErrProjectNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("project %s metadata: %s", id, readError(resp))
	}

	var meta ProjectMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("project %s metadata: decode: %w", id, err)
	}
	if meta.ID == 0 {
		// The API answers some bad ids with 200 and an error body.
		return nil, fmt.Errorf("project %s: %w", id, ErrProjectNotFound)
	}
	if meta.ProjectToken == "" {
		return nil, fmt.Errorf("project %s: %w", id, ErrProjectPrivate)
	}
	return &meta, nil
}

// ProjectJSON downloads the raw project.json bytes using the token from the
// metadata record.
func (c *Client) ProjectJSON(ctx context.Context, id, token string) ([]byte, error) {
	resp, err := c.get(ctx, c.projectsBase+"/"+id+"?token="+token)
	if err != nil {
		return nil, fmt.Errorf("project %s json: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("project %s: %w", id, ErrProjectNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("project %s json: %s", id, readError(resp))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("project %s json: read: %w", id, err)
	}
	return raw, nil
}

// Asset downloads one asset by its md5ext name.
func (c *Client) Asset(ctx context.Context, md5ext string) ([]byte, error) {
	resp, err := c.get(ctx, c.assetsBase+"/internalapi/asset/"+md5ext+"/get/")
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", md5ext, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("asset %s: %w", md5ext, ErrAssetUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("asset %s: %s", md5ext, readError(resp))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("asset %s: read: %w", md5ext, err)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.httpClient.Do(req)
}

// readError summarizes a non-OK response for an error message, preferring
// the API's own code/message body when one is present.
func readError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
		return fmt.Sprintf("status=%d code=%s message=%s", resp.StatusCode, apiErr.Code, apiErr.Message)
	}
	return fmt.Sprintf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
}
