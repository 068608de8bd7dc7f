// Package belex is a client for the public BELEX API of the canton of Bern,
// used to resolve BSG numbers to law titles.
package belex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kueblaw/belex/internal/domain"
)

const defaultBaseURL = "https://www.belex.sites.be.ch/api/de"

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client queries the BELEX texts-of-law endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new BELEX API client. Lookups are best effort, so the
// default client keeps a short timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TextOfLaw is the metadata of one law in the systematic collection.
type TextOfLaw struct {
	Title        string `json:"title"`
	Abbreviation string `json:"abbreviation"`
}

// DisplayName returns "Title (Abbreviation)", or just the title when no
// abbreviation is recorded.
func (t *TextOfLaw) DisplayName() string {
	if t.Title == "" {
		return ""
	}
	if t.Abbreviation == "" {
		return t.Title
	}
	return fmt.Sprintf("%s (%s)", t.Title, t.Abbreviation)
}

type textOfLawResponse struct {
	TextOfLaw TextOfLaw `json:"text_of_law"`
}

// GetTextOfLaw fetches the law metadata for a BSG number.
func (c *Client) GetTextOfLaw(ctx context.Context, bsgNumber string) (*TextOfLaw, error) {
	endpoint := fmt.Sprintf("%s/texts_of_law/%s", c.baseURL, bsgNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrorFromStatusCode(resp.StatusCode, fmt.Sprintf("BELEX lookup for %s failed", bsgNumber))
	}

	var result textOfLawResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if result.TextOfLaw.Title == "" {
		return nil, domain.ErrNotFound(fmt.Sprintf("no law recorded for BSG %s", bsgNumber))
	}

	return &result.TextOfLaw, nil
}
