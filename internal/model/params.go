// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Default generation parameters for a new chat.
const (
	DefaultMaxTokens        uint32  = 512
	DefaultFrequencyPenalty float32 = 0.7
	DefaultTopP             float32 = 0.7
	DefaultTemperature      float32 = 0.7
	DefaultStream                   = false
)

// Params bundles the generation knobs sent with every completion request.
// Values are not range-checked locally; the provider rejects invalid ones.
type Params struct {
	MaxTokens        uint32  `json:"max_tokens"`
	FrequencyPenalty float32 `json:"frequency_penalty"`
	TopP             float32 `json:"top_p"`
	Temperature      float32 `json:"temperature"`
	Stream           bool    `json:"stream"`
}

// NewParams creates a parameter bundle.
func NewParams(maxTokens uint32, frequencyPenalty, topP, temperature float32, stream bool) Params {
	return Params{
		MaxTokens:        maxTokens,
		FrequencyPenalty: frequencyPenalty,
		TopP:             topP,
		Temperature:      temperature,
		Stream:           stream,
	}
}

// DefaultParams returns the parameters given to newly created chats.
func DefaultParams() Params {
	return NewParams(DefaultMaxTokens, DefaultFrequencyPenalty, DefaultTopP, DefaultTemperature, DefaultStream)
}
