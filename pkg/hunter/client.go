// Package hunter is a minimal client for the Hunter.io email finder API.
package hunter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/resilience"
)

const defaultBaseURL = "https://api.hunter.io/v2"

// Client exposes the Hunter email finder.
type Client interface {
	EmailFinder(ctx context.Context, req EmailFinderRequest) (*EmailFinderResult, error)
}

// EmailFinderRequest identifies the person to look up. Domain or Company is
// required alongside the full name.
type EmailFinderRequest struct {
	Domain   string
	Company  string
	FullName string
}

// EmailFinderResult is the data block of GET /email-finder.
type EmailFinderResult struct {
	Email    string `json:"email"`
	Score    int    `json:"score"`
	Position string `json:"position,omitempty"`
}

type emailFinderResponse struct {
	Data EmailFinderResult `json:"data"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Hunter API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) EmailFinder(ctx context.Context, req EmailFinderRequest) (*EmailFinderResult, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("full_name", req.FullName)
	if req.Domain != "" {
		q.Set("domain", req.Domain)
	}
	if req.Company != "" {
		q.Set("company", req.Company)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/email-finder?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: create request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: read response")
	}

	// Hunter reports "no email found" as 404; that is a miss, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return &EmailFinderResult{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("hunter: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result emailFinderResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "hunter: unmarshal response")
	}
	return &result.Data, nil
}
