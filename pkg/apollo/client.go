// Package apollo is a minimal client for the Apollo.io API, covering the
// people-search and email-match endpoints used by contact enrichment.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/resilience"
)

const defaultBaseURL = "https://api.apollo.io/api/v1"

// Client exposes the Apollo endpoints the pipeline uses.
type Client interface {
	PeopleSearch(ctx context.Context, req PeopleSearchRequest) (*PeopleSearchResponse, error)
	EmailMatch(ctx context.Context, req EmailMatchRequest) (*EmailMatchResponse, error)
}

// PeopleSearchRequest is the body for POST /mixed_people/search.
type PeopleSearchRequest struct {
	QOrganizationName string   `json:"q_organization_name,omitempty"`
	OrganizationURLs  []string `json:"organization_domains,omitempty"`
	PersonTitles      []string `json:"person_titles,omitempty"`
	PerPage           int      `json:"per_page,omitempty"`
	Page              int      `json:"page,omitempty"`
}

// Person is one result row from people search.
type Person struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Email        string  `json:"email,omitempty"`
	EmailStatus  string  `json:"email_status,omitempty"`
	Organization OrgInfo `json:"organization"`
}

// OrgInfo is the organization block embedded in a person result.
type OrgInfo struct {
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url,omitempty"`
}

// PeopleSearchResponse is the response from POST /mixed_people/search.
type PeopleSearchResponse struct {
	People     []Person   `json:"people"`
	Pagination Pagination `json:"pagination"`
}

// Pagination reports result paging.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// EmailMatchRequest is the body for POST /people/match.
type EmailMatchRequest struct {
	Name             string `json:"name"`
	OrganizationName string `json:"organization_name,omitempty"`
	Domain           string `json:"domain,omitempty"`
	RevealEmail      bool   `json:"reveal_personal_emails,omitempty"`
}

// EmailMatchResponse is the response from POST /people/match.
type EmailMatchResponse struct {
	Person *Person `json:"person"`
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

// NewClient creates an Apollo API client.
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

func (c *httpClient) PeopleSearch(ctx context.Context, req PeopleSearchRequest) (*PeopleSearchResponse, error) {
	var result PeopleSearchResponse
	if err := c.post(ctx, "/mixed_people/search", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) EmailMatch(ctx context.Context, req EmailMatchRequest) (*EmailMatchResponse, error) {
	var result EmailMatchResponse
	if err := c.post(ctx, "/people/match", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) post(ctx context.Context, path string, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return eris.Wrapf(err, "apollo: marshal %s request", path)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrapf(err, "apollo: create %s request", path)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrapf(err, "apollo: send %s request", path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "apollo: read %s response", path)
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("apollo: %s unexpected status %d: %s", path, resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrapf(err, "apollo: unmarshal %s response", path)
	}
	return nil
}
