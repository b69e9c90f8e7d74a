package utils

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// ErrUnauthorized is returned when the API rejects the bearer token.
var ErrUnauthorized = errors.New("authentication token was rejected")

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
}

// API is a small JSON client for token-authenticated REST endpoints.
type API struct {
	client  *http.Client
	baseURL string
	token   string
}

func NewAPI(baseURL, token string, client *http.Client) *API {
	if client == nil {
		client = NewHTTPClient(true)
	}
	return &API{client: client, baseURL: baseURL, token: token}
}

// NewHTTPClient returns a client with the default timeout. TLS certificate
// verification is skipped when verifyTLS is false.
func NewHTTPClient(verifyTLS bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !verifyTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via --no-verify-ssl
	}
	return &http.Client{Timeout: defaultTimeout, Transport: transport}
}

// NewDownloadClient returns a client for long transfers. It has no overall
// deadline; a server must start responding within headerTimeout.
func NewDownloadClient(verifyTLS bool, headerTimeout time.Duration) *http.Client {
	if headerTimeout <= 0 {
		headerTimeout = defaultTimeout
	}
	client := NewHTTPClient(verifyTLS)
	transport := client.Transport.(*http.Transport)
	transport.ResponseHeaderTimeout = headerTimeout
	client.Timeout = 0
	return client
}

func (a *API) Client() *http.Client {
	return a.client
}

func (a *API) Get(ctx context.Context, path string, params url.Values, v any) error {
	if params != nil {
		path += "?" + params.Encode()
	}
	return a.do(ctx, http.MethodGet, path, nil, v)
}

// Post sends body as JSON (an empty object when nil) and decodes the response into v.
func (a *API) Post(ctx context.Context, path string, body any, v any) error {
	if body == nil {
		body = struct{}{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return a.do(ctx, http.MethodPost, path, payload, v)
}

func (a *API) do(ctx context.Context, method, path string, payload []byte, v any) error {
	reqURL := fmt.Sprintf("%s%s", a.baseURL, path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: a.token})
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, URL: reqURL, Status: resp.StatusCode, Body: string(snippet)}
	}

	if v == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
