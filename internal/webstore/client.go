// Package webstore dispatches authorized HTTP calls against the Chrome Web
// Store REST API families. Responses are returned raw; the package never
// interprets the JSON payload's semantic content.
package webstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Production base URLs for the three API families.
const (
	// DefaultAPIBase hosts the v2 management verbs (publish, fetchStatus,
	// cancelSubmission, setPublishedDeployPercentage).
	DefaultAPIBase = "https://chromewebstore.googleapis.com"
	// DefaultUploadBase hosts the v2 package upload endpoints.
	DefaultUploadBase = "https://chromewebstore.googleapis.com/upload/v2"
	// DefaultItemsBase hosts the legacy listing-metadata endpoints.
	DefaultItemsBase = "https://www.googleapis.com/chromewebstore/v1.1"
)

// TokenSource supplies a bearer token for outgoing requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Result is the uniform outcome of an API call. OK is derived purely from
// the HTTP status class; Body is the raw response text, unparsed.
type Result struct {
	OK     bool
	Status int
	Body   string
}

// Client builds and performs authorized requests. Base URLs are overridable
// for tests.
type Client struct {
	Tokens     TokenSource
	HTTPClient *http.Client
	APIBase    string
	UploadBase string
	ItemsBase  string
}

// NewClient creates a client against the production endpoints. No request
// timeout is imposed beyond the transport's defaults; package uploads can be
// slow on large ZIPs.
func NewClient(tokens TokenSource) *Client {
	return &Client{
		Tokens:     tokens,
		HTTPClient: &http.Client{},
		APIBase:    DefaultAPIBase,
		UploadBase: DefaultUploadBase,
		ItemsBase:  DefaultItemsBase,
	}
}

// Do resolves a fresh-or-cached bearer token, merges caller headers over the
// Authorization header (caller wins on the same key), performs the call and
// returns the raw result. Non-2xx responses are surfaced as OK=false, not as
// errors; network-level failures propagate as errors.
func (c *Client) Do(ctx context.Context, method, rawURL string, headers map[string]string, body io.Reader) (Result, error) {
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request to %s failed: %w", rawURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response body: %w", err)
	}

	return Result{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Body:   string(respBody),
	}, nil
}

// =============================================================================
// Endpoint construction (paths reproduced bit-for-bit)
// =============================================================================

// UploadCreateURL targets item creation: no id segment in the path.
func (c *Client) UploadCreateURL(publisherID string) string {
	return fmt.Sprintf("%s/publishers/%s/items:upload", c.UploadBase, url.PathEscape(publisherID))
}

// UploadUpdateURL targets a package revision for an existing item.
func (c *Client) UploadUpdateURL(publisherID, itemID string) string {
	return fmt.Sprintf("%s/publishers/%s/items/%s:upload", c.UploadBase, url.PathEscape(publisherID), url.PathEscape(itemID))
}

// ItemVerbURL targets the v2 management verbs: publish, fetchStatus,
// cancelSubmission, setPublishedDeployPercentage.
func (c *Client) ItemVerbURL(publisherID, itemID, verb string) string {
	return fmt.Sprintf("%s/v2/publishers/%s/items/%s:%s", c.APIBase, url.PathEscape(publisherID), url.PathEscape(itemID), verb)
}

// ItemURL targets the listing-metadata endpoint for reads and writes.
func (c *Client) ItemURL(itemID string) string {
	return fmt.Sprintf("%s/items/%s", c.ItemsBase, url.PathEscape(itemID))
}

// ItemProjectionURL targets the listing-metadata read with a projection.
func (c *Client) ItemProjectionURL(itemID, projection string) string {
	return fmt.Sprintf("%s?projection=%s", c.ItemURL(itemID), url.QueryEscape(projection))
}
