// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrChatNotFound is returned when a chat identifier is not registered.
	ErrChatNotFound = errors.New("chat does not exist")

	// ErrNoCurrentChat is returned by SendCurrentCompletion when no current
	// chat is selected. It matches ErrChatNotFound under errors.Is.
	ErrNoCurrentChat = fmt.Errorf("no current chat: %w", ErrChatNotFound)

	// ErrNoCompleter is returned when a chat has no completion client attached.
	ErrNoCompleter = errors.New("chat has no completion client")
)
