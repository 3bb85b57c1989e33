// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the value types exchanged with the completion API.
//
// This package defines the small, dependency-free types shared by the cloud
// client, the chat registry and the persistence layer.
//
// # Key Types
//
//   - Model: Remote model identifier, comparable and usable as a map key
//   - Role: Message role (user, system, AI) with its wire mapping
//   - Completion: Single role-tagged turn of text
//   - Params: Generation parameters attached to a chat
//
// # Usage
//
// Build a user turn and inspect its wire role:
//
//	msg := model.NewUserCompletion("Hello!")
//	fmt.Println(msg.Role.Wire()) // "user"
//
// Any wire role other than "user" or "system" is read back as RoleAI:
//
//	model.ParseRole("assistant") == model.RoleAI
package model
