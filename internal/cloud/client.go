// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the client for the hosted chat-completion API.
package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/model"
)

// Configuration constants for the completion API.
const (
	// DefaultBaseURL is the origin of the hosted API.
	DefaultBaseURL = "https://api.aimlapi.com"

	// DefaultTimeout is the transport timeout used by NewClient.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024

	chatCompletionsPath = "/chat/completions"
	modelsPath          = "/models"
	contentPath         = "choices.0.message.content"

	userAgent = "aimlchat/0.1.0"

	// maxErrorBody bounds the response text copied into a StatusError.
	maxErrorBody = 512
)

// HTTPClient is the transport capability the client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the completion API at a fixed base origin.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewClient creates a client for baseURL using a TLS 1.2+ HTTP client with
// DefaultTimeout.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(DefaultTimeout),
		logger:     zap.NewNop(),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// WithHTTPClient replaces the transport.
func (c *Client) WithHTTPClient(h HTTPClient) *Client {
	c.httpClient = h
	return c
}

// WithTimeout replaces the transport with a default one using timeout.
// A zero timeout disables the transport deadline.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient = newHTTPClient(timeout)
	return c
}

// WithLogger sets the logger. A nil logger disables logging.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger.Named("cloud")
	return c
}

// BaseURL returns the API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CHAT COMPLETIONS
// =============================================================================

// ChatCompletion sends req and returns choices[0].message.content.
//
// Only 201 Created counts as success; any other status yields a
// *StatusError. A missing or non-string content yields ErrMalformedResponse.
func (c *Client) ChatCompletion(ctx context.Context, apiKey string, req ChatRequest) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", ErrMissingCredential
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	c.logger.Debug("sending completion",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
		zap.String("key", KeyFingerprint(apiKey)),
	)

	status, body, err := c.do(httpReq)
	if err != nil {
		return "", err
	}

	if status != http.StatusCreated {
		return "", &StatusError{Status: status, Path: chatCompletionsPath, Body: truncateBody(body)}
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: body is not valid JSON", ErrMalformedResponse)
	}
	content := gjson.GetBytes(body, contentPath)
	if !content.Exists() {
		return "", fmt.Errorf("%w: %s is missing", ErrMalformedResponse, contentPath)
	}
	if content.Type != gjson.String {
		return "", fmt.Errorf("%w: %s is %s, not a string", ErrMalformedResponse, contentPath, content.Type)
	}

	return content.String(), nil
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// ListModels fetches GET /models. The body is an object keyed by model
// identifier; the values are discarded. The result is deduplicated and
// sorted by name.
func (c *Client) ListModels(ctx context.Context) ([]model.Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	status, body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	if status < 200 || status > 299 {
		return nil, &StatusError{Status: status, Path: modelsPath, Body: truncateBody(body)}
	}

	var catalog map[string]string
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("%w: models: %v", ErrParse, err)
	}

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	models := model.NewSet(names...)

	c.logger.Info("fetched model catalog", zap.Int("models", len(models)))
	return models, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one round trip and returns the status and the size-limited body.
// The Authorization header is never logged.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.logger.Debug("api response",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}

// KeyFingerprint returns a short SHA-256 fingerprint of an API key for logs.
func KeyFingerprint(apiKey string) string {
	if apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:4])
}
