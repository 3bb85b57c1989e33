// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/aimlchat/internal/cloud"
	"github.com/jeranaias/aimlchat/internal/model"
)

// fakeCompleter records requests and answers with a fixed reply or error.
type fakeCompleter struct {
	mu       sync.Mutex
	requests []cloud.ChatRequest
	keys     []string
	reply    func(req cloud.ChatRequest) (string, error)
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, apiKey string, req cloud.ChatRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.keys = append(f.keys, apiKey)
	reply := f.reply
	f.mu.Unlock()
	if reply == nil {
		return "ok", nil
	}
	return reply(req)
}

func (f *fakeCompleter) last() cloud.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func replyWith(content string) func(cloud.ChatRequest) (string, error) {
	return func(cloud.ChatRequest) (string, error) { return content, nil }
}

func failWith(err error) func(cloud.ChatRequest) (string, error) {
	return func(cloud.ChatRequest) (string, error) { return "", err }
}

func newTestChat(t *testing.T, fc *fakeCompleter) *Chat {
	t.Helper()
	return newChat(model.New("test-model"), fc, zaptest.NewLogger(t))
}

// =============================================================================
// EXCHANGE TESTS
// =============================================================================

func TestSendCompletion_SuccessAddsTwoTurns(t *testing.T) {
	fc := &fakeCompleter{reply: replyWith("hello back")}
	c := newTestChat(t, fc).WithHistory()

	require.NoError(t, c.SendCompletion(context.Background(), "key", model.NewUserCompletion("hello")))

	history := c.History()
	require.Len(t, history, 2)
	assert.Equal(t, model.NewAICompletion("hello back"), history[0])
	assert.Equal(t, model.NewUserCompletion("hello"), history[1])
	assert.Equal(t, "key", fc.keys[0])
}

func TestSendCompletion_FailureAddsSyntheticTurn(t *testing.T) {
	transportErr := fmt.Errorf("%w: connection refused", cloud.ErrTransport)
	fc := &fakeCompleter{reply: failWith(transportErr)}
	c := newTestChat(t, fc).WithHistory()

	err := c.SendCompletion(context.Background(), "key", model.NewUserCompletion("hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cloud.ErrTransport)

	history := c.History()
	require.Len(t, history, 2)
	assert.Equal(t, model.NewAICompletion(SendErrorMessage), history[0])
	assert.Equal(t, model.NewUserCompletion("hello"), history[1])
}

func TestSendCompletion_StatusFailureIsReturned(t *testing.T) {
	fc := &fakeCompleter{reply: failWith(&cloud.StatusError{Status: 200})}
	c := newTestChat(t, fc).WithHistory()

	err := c.SendCompletion(context.Background(), "key", model.NewUserCompletion("q"))
	assert.True(t, cloud.IsStatus(err, 200))
	assert.Equal(t, 2, c.Len())
}

func TestSendCompletion_OutboundFiltersAITurns(t *testing.T) {
	fc := &fakeCompleter{}
	c := newTestChat(t, fc).WithHistory()

	fc.reply = replyWith("r1")
	require.NoError(t, c.SendCompletion(context.Background(), "key", model.NewUserCompletion("q1")))

	fc.reply = replyWith("r2")
	require.NoError(t, c.SendCompletion(context.Background(), "key", model.NewUserCompletion("q2")))

	assert.Equal(t, []model.Completion{
		model.NewUserCompletion("q2"),
		model.NewUserCompletion("q1"),
	}, fc.last().Messages)

	assert.Equal(t, []model.Completion{
		model.NewAICompletion("r2"),
		model.NewUserCompletion("q2"),
		model.NewAICompletion("r1"),
		model.NewUserCompletion("q1"),
	}, c.History())

	require.NoError(t, c.SendCompletion(context.Background(), "key", model.NewSystemCompletion("s3")))
	assert.Equal(t, []model.Completion{
		model.NewSystemCompletion("s3"),
		model.NewUserCompletion("q2"),
		model.NewUserCompletion("q1"),
	}, fc.last().Messages)
}

func TestSendCompletion_WithoutHistory(t *testing.T) {
	fc := &fakeCompleter{reply: replyWith("r")}
	c := newTestChat(t, fc)

	require.NoError(t, c.SendCompletion(context.Background(), "key", model.NewUserCompletion("one")))
	require.NoError(t, c.SendCompletion(context.Background(), "key", model.NewUserCompletion("two")))

	assert.Equal(t, []model.Completion{model.NewUserCompletion("two")}, fc.last().Messages)
	assert.Nil(t, c.History())
	assert.Zero(t, c.Len())
	assert.False(t, c.HistoryEnabled())
}

func TestSendCompletion_RequestCarriesModelAndParams(t *testing.T) {
	fc := &fakeCompleter{}
	c := newTestChat(t, fc)
	c.SetParams(model.NewParams(64, 0.1, 0.2, 0.3, true))

	require.NoError(t, c.SendCompletion(context.Background(), "key", model.NewUserCompletion("x")))

	req := fc.last()
	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, uint32(64), req.MaxTokens)
	assert.Equal(t, float32(0.1), req.FrequencyPenalty)
	assert.Equal(t, float32(0.2), req.TopP)
	assert.Equal(t, float32(0.3), req.Temperature)
	assert.True(t, req.Stream)
}

func TestSendCompletion_DoesNotTouchTitleOrParams(t *testing.T) {
	fc := &fakeCompleter{reply: failWith(errors.New("boom"))}
	c := newTestChat(t, fc).WithTitle("kept").WithHistory()
	before := c.Params()

	_ = c.SendCompletion(context.Background(), "key", model.NewUserCompletion("x"))

	assert.Equal(t, "kept", c.Title())
	assert.Equal(t, before, c.Params())
	assert.Equal(t, model.New("test-model"), c.Model())
}

func TestSendCompletion_NoCompleter(t *testing.T) {
	c := newChat(model.New("m"), nil, nil).WithHistory()

	err := c.SendCompletion(context.Background(), "key", model.NewUserCompletion("x"))
	assert.ErrorIs(t, err, ErrNoCompleter)
	assert.Equal(t, 2, c.Len())
}

func TestSendCompletion_ConcurrentSendsAreSerialized(t *testing.T) {
	fc := &fakeCompleter{reply: func(req cloud.ChatRequest) (string, error) {
		return "re: " + req.Messages[0].Content, nil
	}}
	c := newTestChat(t, fc).WithHistory()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := model.NewUserCompletion(fmt.Sprintf("q%d", i))
			assert.NoError(t, c.SendCompletion(context.Background(), "key", msg))
		}(i)
	}
	wg.Wait()

	history := c.History()
	require.Len(t, history, 2*n)
	for i := 0; i < len(history); i += 2 {
		assert.True(t, history[i].IsAI())
		assert.Equal(t, model.RoleUser, history[i+1].Role)
		assert.Equal(t, "re: "+history[i+1].Content, history[i].Content)
	}
}

// =============================================================================
// HISTORY EDIT TESTS
// =============================================================================

func TestHistoryEdits(t *testing.T) {
	c := newTestChat(t, &fakeCompleter{})

	c.AddHistory(model.NewUserCompletion("ignored"))
	assert.Nil(t, c.History())

	c.WithHistory()
	c.AddHistory(model.NewUserCompletion("a"))
	c.AddHistory(model.NewAICompletion("b"))
	assert.Equal(t, []model.Completion{model.NewAICompletion("b"), model.NewUserCompletion("a")}, c.History())

	c.WithHistory()
	assert.Equal(t, 2, c.Len(), "enabling twice keeps history")

	c.ClearHistory()
	assert.Empty(t, c.History())
	assert.True(t, c.HistoryEnabled())

	c.AddHistory(model.NewUserCompletion("c"))
	c.WithoutHistory()
	assert.Nil(t, c.History())
	assert.False(t, c.HistoryEnabled())
}

func TestHistory_ReturnsCopy(t *testing.T) {
	c := newTestChat(t, &fakeCompleter{}).WithHistory()
	c.AddHistory(model.NewUserCompletion("a"))

	h := c.History()
	h[0].Content = "mutated"
	assert.Equal(t, "a", c.History()[0].Content)
}

func TestExchange_ReturnsReplyWithoutHistory(t *testing.T) {
	fc := &fakeCompleter{reply: replyWith("the reply")}
	c := newTestChat(t, fc)

	reply, err := c.Exchange(context.Background(), "key", model.NewUserCompletion("q"))
	require.NoError(t, err)
	assert.Equal(t, "the reply", reply)
	assert.Zero(t, c.Len())
}
