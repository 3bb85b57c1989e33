// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a completion.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"

	// RoleAI marks turns produced by the remote model. Its wire value is a
	// placeholder: AI turns are never sent back to the API.
	RoleAI Role = "placeholder"
)

// ParseRole maps a wire role to a Role. Anything other than "user" or
// "system" is an AI turn.
func ParseRole(s string) Role {
	switch s {
	case string(RoleUser):
		return RoleUser
	case string(RoleSystem):
		return RoleSystem
	default:
		return RoleAI
	}
}

// Wire returns the role as sent on the wire.
func (r Role) Wire() string {
	return string(r)
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleSystem:
		return "System"
	default:
		return "AI"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.Wire()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseRole.
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion is a single turn in a conversation.
type Completion struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewCompletion creates a completion with the given role and content.
func NewCompletion(role Role, content string) Completion {
	return Completion{Role: role, Content: content}
}

// NewUserCompletion creates a user turn.
func NewUserCompletion(content string) Completion {
	return NewCompletion(RoleUser, content)
}

// NewSystemCompletion creates a system turn.
func NewSystemCompletion(content string) Completion {
	return NewCompletion(RoleSystem, content)
}

// NewAICompletion creates an AI turn.
func NewAICompletion(content string) Completion {
	return NewCompletion(RoleAI, content)
}

// IsAI reports whether the completion was authored by the remote model.
func (c Completion) IsAI() bool {
	return c.Role == RoleAI
}
