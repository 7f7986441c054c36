package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs a request with an optional JSON body and optional
// credentials, then decodes the response into target.
func (c *SDKClient) doJSON(
	ctx context.Context,
	method, path string,
	body any,
	creds *credentials,
	target any,
	expectedStatus int,
) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil {
		creds.apply(req)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return decodeJSON(resp, target, expectedStatus)
}

// credentials carries the two ways a request can authenticate. The session
// cookie wins on the server when both are present.
type credentials struct {
	sessionID string
	token     string
}

func (c *credentials) apply(req *http.Request) {
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.sessionID})
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// decodeJSON decodes a JSON response into the target. Responses with an
// unexpected status are surfaced as *APIError carrying the server's message.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	if target != nil {
		if err := json.Unmarshal(bodyBytes, target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func parseErrorResponse(statusCode int, body []byte) error {
	var envelope MessageResponse
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Message == "" {
		return &APIError{
			StatusCode: statusCode,
			Message:    http.StatusText(statusCode),
		}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    envelope.Message,
	}
}
