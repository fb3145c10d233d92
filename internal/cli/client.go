package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrNoCSRFCookie is returned for mutating calls made before the server
// has issued a CSRF cookie
var ErrNoCSRFCookie = errors.New("no CSRF cookie yet; run `agame me` first")

// Client is an HTTP client for the API. It behaves like a browser towards
// the session and CSRF cookies: it stores whatever the server sets and
// echoes the CSRF cookie in a header on mutating requests.
type Client struct {
	baseURL    string
	csrfCookie string
	csrfHeader string
	httpClient *http.Client

	// Trace, when set, receives one line per request and response
	Trace io.Writer

	mu      sync.Mutex
	cookies map[string]string
}

// NewClient creates a new API client seeded with previously saved cookies
func NewClient(baseURL string, cookies map[string]string, csrfCookie, csrfHeader string) *Client {
	if cookies == nil {
		cookies = map[string]string{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		csrfCookie: csrfCookie,
		csrfHeader: csrfHeader,
		cookies:    cookies,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Cookies returns a copy of the current cookies
func (c *Client) Cookies() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.cookies))
	for k, v := range c.cookies {
		out[k] = v
	}
	return out
}

// APIError represents an error response from the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Do performs an HTTP request
func (c *Client) Do(method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if err := c.attachCookies(req); err != nil {
		return err
	}

	if c.Trace != nil {
		fmt.Fprintf(c.Trace, "> %s %s\n", method, url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.Trace != nil {
		fmt.Fprintf(c.Trace, "< %s\n", resp.Status)
	}

	c.storeCookies(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.Status = resp.StatusCode
			return &errResp.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

func (c *Client) attachCookies(req *http.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return nil
	}
	token, ok := c.cookies[c.csrfCookie]
	if !ok {
		return ErrNoCSRFCookie
	}
	req.Header.Set(c.csrfHeader, token)
	return nil
}

func (c *Client) storeCookies(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
}

// Get performs a GET request
func (c *Client) Get(path string, result any) error {
	return c.Do(http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(path string, body, result any) error {
	return c.Do(http.MethodPost, path, body, result)
}
