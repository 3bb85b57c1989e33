// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
)

// =============================================================================
// MODEL TYPE
// =============================================================================

// Model names a remote model. Two models are equal when their names are equal.
type Model struct {
	Name string `json:"name"`
}

// New returns the model with the given identifier.
func New(name string) Model {
	return Model{Name: strings.TrimSpace(name)}
}

// String returns the model identifier.
func (m Model) String() string {
	return m.Name
}

// IsZero reports whether the model has no identifier.
func (m Model) IsZero() bool {
	return m.Name == ""
}

// =============================================================================
// CATALOG HELPERS
// =============================================================================

// NewSet builds a deduplicated, name-sorted model list from identifiers.
// Empty identifiers are dropped.
func NewSet(names ...string) []Model {
	seen := make(map[string]struct{}, len(names))
	models := make([]Model, 0, len(names))
	for _, name := range names {
		m := New(name)
		if m.IsZero() {
			continue
		}
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].Name < models[j].Name
	})
	return models
}

// Contains reports whether models holds a model named name.
func Contains(models []Model, name string) bool {
	for _, m := range models {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Filter returns the models whose identifier contains query (case-insensitive).
func Filter(models []Model, query string) []Model {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return models
	}
	var out []Model
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.Name), query) {
			out = append(out, m)
		}
	}
	return out
}
