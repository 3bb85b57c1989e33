// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "errors"

var (
	// ErrUnknownModel is returned when creating a chat for a model the
	// catalog does not list.
	ErrUnknownModel = errors.New("model is not in the catalog")

	// ErrNoModels is returned when no model was given and none is known.
	ErrNoModels = errors.New("no model available")

	// ErrAmbiguousChat is returned when a chat id prefix matches several chats.
	ErrAmbiguousChat = errors.New("chat id prefix is ambiguous")

	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
)
