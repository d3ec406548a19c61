package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fallback details when an error response carries no usable detail.
const (
	detailUnparseable = "Unknown error"
	detailMissing     = "Failed to get response"
)

// Client submits messages to a remote chat endpoint at {baseURL}/chat. Each
// Submit makes exactly one request and never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.http = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8000/api/v1").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 130 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the chat URL.
func (c *Client) Endpoint() string { return c.baseURL + "/chat" }

// Submit implements Submitter.
func (c *Client) Submit(ctx context.Context, message string, history []Message) (*Response, error) {
	if history == nil {
		history = []Message{}
	}
	data, err := json.Marshal(Request{Message: message, ChatHistory: history})
	if err != nil {
		return nil, fmt.Errorf("chat: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("chat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, remoteError(resp)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("chat: decode response: %w", err)
	}
	return &out, nil
}

func remoteError(resp *http.Response) *RemoteError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var eb struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &eb); err != nil {
		return &RemoteError{Status: resp.StatusCode, Detail: detailUnparseable}
	}

	switch d := eb.Detail.(type) {
	case string:
		if d != "" {
			return &RemoteError{Status: resp.StatusCode, Detail: d}
		}
	case nil:
	default:
		// Validation errors arrive as structured detail; keep them readable.
		if raw, err := json.Marshal(d); err == nil {
			return &RemoteError{Status: resp.StatusCode, Detail: string(raw)}
		}
	}
	return &RemoteError{Status: resp.StatusCode, Detail: detailMissing}
}
