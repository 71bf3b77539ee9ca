// Package api is the generic authenticated HTTP layer under every resource
// client: base-URL resolution, bearer auth, envelope unwrapping and error
// mapping.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"rituals/internal/config"
	"rituals/internal/logging"
	"rituals/internal/session"
)

// Client wraps an http.Client with the Rituals API conventions. All calls
// go through Do; the typed helpers only fix the verb.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     session.Store
	limiter    *rate.Limiter
}

// New builds a client from configuration. tokens must not be nil; use
// session.NewMemory for unauthenticated or test use.
func New(cfg *config.Config, tokens session.Store) *Client {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		tokens: tokens,
		limiter: limiter,
	}
}

// Tokens exposes the session store the client clears on 401.
func (c *Client) Tokens() session.Store {
	return c.tokens
}

// Do performs one API round-trip. body is JSON-encoded for POST/PUT/PATCH
// and ignored for GET/DELETE. headers are merged over the defaults without
// duplication. A non-nil out receives the (unwrapped) response body.
//
// Any non-2xx status returns *APIError. A 401 additionally clears the
// session store before the error is returned: the current session is
// treated as invalid regardless of which call detected it.
func (c *Client) Do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("request throttled: %w", err)
		}
	}

	var reqBody io.Reader
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to encode request body: %w", err)
			}
			reqBody = bytes.NewReader(encoded)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if token, ok := c.tokens.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log := logging.WithRequest(requestID, method, path)
	log.Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			// Session is gone; drop the token before anyone retries with it.
			c.tokens.Clear()
		}
		log.Debug("api error", "status", resp.StatusCode)
		return &APIError{
			Message:    errorMessage(respBody, resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(unwrapEnvelope(respBody), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// unwrapEnvelope handles the backend's inconsistent enveloping. A body that
// is an object with a non-null "data" key is unwrapped to that value when
// the "error" key is either absent or null; everything else passes through
// unchanged. So {"data":X,"error":null} and {"data":X} yield X, while
// {"data":X,"error":"e"} and non-enveloped payloads are returned as-is.
//
// Known ambiguity, kept deliberately: a domain object with a legitimate
// top-level "data" field would be mistaken for an envelope. The backend
// contract avoids such objects.
func unwrapEnvelope(body []byte) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		// Arrays and primitives are never envelopes.
		return body
	}

	data, ok := obj["data"]
	if !ok || isNull(data) {
		return body
	}

	errVal, hasErr := obj["error"]
	if !hasErr || isNull(errVal) {
		return data
	}
	return body
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// errorMessage extracts the backend's {"message": ...} from an error body,
// falling back to a generic string for unparseable bodies.
func errorMessage(body []byte, status int) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return genericMessage(status)
}
