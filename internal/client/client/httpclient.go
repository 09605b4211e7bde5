package client

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
	"time"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/protocol"
)

// HTTPClient implements Client over the server's JSON API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns an HTTPClient for the server at baseURL. Every
// request is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends one request and decodes a 2xx JSON body into out (which may be
// nil). Transport failures map to ErrUnavailable (an ErrNetwork class
// error), 401 to ErrUnauthorized,
// and other non-2xx answers carry the server's error message.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, common.ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr protocol.ErrorResponse
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
		}
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, nil)
}

func (c *HTTPClient) Login(ctx context.Context, req *protocol.SessionRequest) (string, error) {
	var resp protocol.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/session", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *HTTPClient) Push(ctx context.Context, req *protocol.PushRequest) (*protocol.PushResponse, error) {
	var resp protocol.PushResponse
	if err := c.do(ctx, http.MethodPost, "/api/sync/push", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Pull(ctx context.Context, foldersLastSync, bookmarksLastSync int64) (*protocol.PullResponse, error) {
	query := url.Values{}
	query.Set("folders_last_sync", strconv.FormatInt(foldersLastSync, 10))
	query.Set("bookmarks_last_sync", strconv.FormatInt(bookmarksLastSync, 10))

	var resp protocol.PullResponse
	if err := c.do(ctx, http.MethodGet, "/api/sync/pull", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CaptureScreenshot(ctx context.Context, pageURL string) (*protocol.Screenshot, error) {
	query := url.Values{}
	query.Set("url", pageURL)

	var resp protocol.Screenshot
	if err := c.do(ctx, http.MethodGet, "/api/screenshot", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
