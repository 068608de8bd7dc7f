// Package gemini is a minimal HTTP client for the Generative Language REST
// API (v1beta): content generation with file search grounding plus document
// management on a file search store.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kueblaw/belex/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersion     = "v1beta"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is a custom HTTP client for the Generative Language API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client authenticated with the given key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateContent asks the given model to answer the request, typically with
// a file search tool attached.
func (c *Client) GenerateContent(ctx context.Context, model string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	var result GenerateContentResponse
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDocuments retrieves one page of documents from a file search store.
// An empty pageToken requests the first page.
func (c *Client) ListDocuments(ctx context.Context, store string, pageSize int, pageToken string) (*ListDocumentsResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/documents", c.baseURL, apiVersion, store)

	params := url.Values{}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	var result ListDocumentsResponse
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadToFileSearchStore imports a document into a file search store using
// the resumable upload protocol: a start request carrying the metadata
// returns an upload URL, then the bytes are sent and finalized in one call.
func (c *Client) UploadToFileSearchStore(ctx context.Context, store, displayName, mimeType string, size int64, data io.Reader, metadata []CustomMetadata) (*Operation, error) {
	meta := struct {
		DisplayName    string           `json:"displayName,omitempty"`
		CustomMetadata []CustomMetadata `json:"customMetadata,omitempty"`
	}{
		DisplayName:    displayName,
		CustomMetadata: metadata,
	}

	body, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload metadata: %w", err)
	}

	endpoint := fmt.Sprintf("%s/upload/%s/%s:uploadToFileSearchStore", c.baseURL, apiVersion, store)
	startReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload start request: %w", err)
	}
	c.setHeaders(startReq)
	startReq.Header.Set("X-Goog-Upload-Protocol", "resumable")
	startReq.Header.Set("X-Goog-Upload-Command", "start")
	startReq.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.FormatInt(size, 10))
	startReq.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	startResp, err := c.httpClient.Do(startReq)
	if err != nil {
		return nil, fmt.Errorf("upload start failed: %w", err)
	}
	defer startResp.Body.Close()

	if startResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(startResp.Body)
		return nil, parseError(startResp.StatusCode, respBody)
	}

	uploadURL := startResp.Header.Get("X-Goog-Upload-URL")
	if uploadURL == "" {
		return nil, fmt.Errorf("upload start response missing X-Goog-Upload-URL header")
	}

	dataReq, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload data request: %w", err)
	}
	dataReq.Header.Set("X-Goog-Upload-Command", "upload, finalize")
	dataReq.Header.Set("X-Goog-Upload-Offset", "0")
	dataReq.ContentLength = size

	var op Operation
	if err := c.do(dataReq, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// DeleteDocument removes a document from its file search store. name is the
// full resource name ("fileSearchStores/.../documents/..."). With force set,
// all chunks belonging to the document are deleted as well.
func (c *Client) DeleteDocument(ctx context.Context, name string, force bool) error {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, apiVersion, name)
	if force {
		endpoint += "?force=true"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// A successful delete returns 200 with an empty JSON object, or 204.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return parseError(resp.StatusCode, respBody)
	}

	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
}

// parseError converts an upstream error body into a canonical error.
func parseError(status int, body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return domain.ErrorFromStatusCode(status, er.Error.Message)
	}
	return domain.ErrorFromStatusCode(status, fmt.Sprintf("API error (status %d): %s", status, string(body)))
}
