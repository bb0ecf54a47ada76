// Package adminclient talks to the internal endpoints of a running mock
// server.
package adminclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrNotFound = errors.New("not found")

type API struct {
	Routes *RouteService
}

func NewAPI(c *http.Client, baseURL string) *API {
	if c == nil {
		c = http.DefaultClient
	}
	client := &Client{
		Client:  c,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	return &API{
		Routes: &RouteService{client: client},
	}
}

type Client struct {
	*http.Client
	baseURL string
}

type APIError struct {
	Message    string
	StatusCode int
	URL        string
	Method     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: (%d): url: %s method: %s", e.Message, e.StatusCode, e.URL, e.Method)
}

func newAPIError(res *http.Response, body []byte, reqURL string) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "mock server call failed"
	}
	return &APIError{
		Message:    msg,
		StatusCode: res.StatusCode,
		URL:        reqURL,
		Method:     res.Request.Method,
	}
}

func (c *Client) Call(ctx context.Context, method, path string, resPayload any) error {
	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	} else if res.StatusCode >= 400 {
		return newAPIError(res, body, reqURL)
	}

	if resPayload != nil && len(body) > 0 {
		if err := json.Unmarshal(body, resPayload); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
