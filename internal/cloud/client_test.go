// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/aimlchat/internal/model"
)

const testKey = "test-key-0123456789"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL).WithLogger(zaptest.NewLogger(t))
}

func testRequest() ChatRequest {
	return NewChatRequest(model.New("test-model"), model.DefaultParams(), []model.Completion{
		model.NewUserCompletion("hello"),
	})
}

// =============================================================================
// CHAT COMPLETION TESTS
// =============================================================================

func TestChatCompletion_Success(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	})

	content, err := client.ChatCompletion(context.Background(), testKey, testRequest())
	require.NoError(t, err)
	assert.Equal(t, "hi there", content)

	assert.Equal(t, "test-model", got["model"])
	assert.EqualValues(t, 512, got["max_tokens"])
	assert.InDelta(t, 0.7, got["frequency_penalty"], 1e-6)
	assert.InDelta(t, 0.7, got["top_p"], 1e-6)
	assert.InDelta(t, 0.7, got["temperature"], 1e-6)
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "hello"}}, got["messages"])
}

func TestChatCompletion_OKIsNotSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices":[{"message":{"content":"well formed"}}]}`))
	})

	_, err := client.ChatCompletion(context.Background(), testKey, testRequest())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusOK))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "/chat/completions", se.Path)
}

func TestChatCompletion_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	})

	_, err := client.ChatCompletion(context.Background(), testKey, testRequest())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "bad key")
}

func TestChatCompletion_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"content is a number", `{"choices":[{"message":{"content":42}}]}`},
		{"content is null", `{"choices":[{"message":{"content":null}}]}`},
		{"no choices", `{"choices":[]}`},
		{"no message", `{"choices":[{}]}`},
		{"empty object", `{}`},
		{"not json", `<html>oops</html>`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(tc.body))
			})

			_, err := client.ChatCompletion(context.Background(), testKey, testRequest())
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestChatCompletion_EmptyStringContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	})

	content, err := client.ChatCompletion(context.Background(), testKey, testRequest())
	require.NoError(t, err)
	assert.Equal(t, "", content)
}

func TestChatCompletion_MissingCredential(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.ChatCompletion(context.Background(), "   ", testRequest())
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.False(t, called, "no request may be sent without a key")
}

func TestChatCompletion_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url)
	_, err := client.ChatCompletion(context.Background(), testKey, testRequest())
	assert.ErrorIs(t, err, ErrTransport)
}

// mockHTTPClient lets tests inject transport failures without a server.
type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

func TestChatCompletion_InjectedTransport(t *testing.T) {
	boom := errors.New("connection reset")
	client := NewClient("http://mockapi").WithHTTPClient(&mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, boom
		},
	})

	_, err := client.ChatCompletion(context.Background(), testKey, testRequest())
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, boom)
}

// =============================================================================
// MODEL CATALOG TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"gpt-4o":"openai","claude-3-haiku":"anthropic","mistral-7b":""}`))
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.NewSet("claude-3-haiku", "gpt-4o", "mistral-7b"), models)
}

func TestListModels_ParseError(t *testing.T) {
	for _, body := range []string{`["gpt-4o"]`, `{"gpt-4o":{"owner":"openai"}}`, `not json`} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})

		_, err := client.ListModels(context.Background())
		assert.ErrorIs(t, err, ErrParse, "body %s", body)
	}
}

func TestListModels_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.ListModels(context.Background())
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
}

func TestListModels_TransportError(t *testing.T) {
	client := NewClient("http://mockapi").WithHTTPClient(&mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("no route to host")
		},
	})

	_, err := client.ListModels(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestKeyFingerprint(t *testing.T) {
	assert.Equal(t, "none", KeyFingerprint(""))
	fp := KeyFingerprint(testKey)
	assert.Len(t, fp, 8)
	assert.Equal(t, fp, KeyFingerprint(testKey))
}
