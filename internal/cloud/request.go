// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import "github.com/jeranaias/aimlchat/internal/model"

// ChatRequest is the body of POST /chat/completions. Every field is always
// sent, including zero values.
type ChatRequest struct {
	Model            string             `json:"model"`
	MaxTokens        uint32             `json:"max_tokens"`
	FrequencyPenalty float32            `json:"frequency_penalty"`
	TopP             float32            `json:"top_p"`
	Temperature      float32            `json:"temperature"`
	Stream           bool               `json:"stream"`
	Messages         []model.Completion `json:"messages"`
}

// NewChatRequest builds a request for m with params p and the given messages.
func NewChatRequest(m model.Model, p model.Params, messages []model.Completion) ChatRequest {
	if messages == nil {
		messages = []model.Completion{}
	}
	return ChatRequest{
		Model:            m.Name,
		MaxTokens:        p.MaxTokens,
		FrequencyPenalty: p.FrequencyPenalty,
		TopP:             p.TopP,
		Temperature:      p.Temperature,
		Stream:           p.Stream,
		Messages:         messages,
	}
}
