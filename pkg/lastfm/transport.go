package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// apiError mirrors the error envelope of a JSON API response. A body
// with a non-zero "error" field is an application-level failure even
// when the HTTP status reports success.
type apiError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

// call makes a GET request to the Last.fm API and returns the raw JSON
// body for the service to decode.
//
// It handles:
// - Query string construction (method, format, api_key, extra params)
// - HTTP status checking
// - Application-level error payload detection
// - Context cancellation
func (c *Client) call(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	query := url.Values{}
	query.Set("method", method)
	query.Set("format", "json")
	query.Set("api_key", c.apiKey)
	for k, v := range params {
		query.Set(k, v)
	}

	reqURL := c.baseURL + "?" + query.Encode()

	c.logDebugf("lastfm: calling %s", method)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "tracklog/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}

	// A 200 can still carry an error payload.
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if apiErr.Code != 0 {
		return nil, &Error{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		}
	}

	c.logDebugf("lastfm: %s succeeded", method)
	return body, nil
}
