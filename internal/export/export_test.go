// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aimlchat/internal/chat"
	"github.com/jeranaias/aimlchat/internal/model"
)

func sampleTranscript(t *testing.T) *Transcript {
	t.Helper()
	m := chat.NewManager(nil, nil)
	id := m.Create(model.New("gpt-4o"))
	c, _ := m.Get(id)
	c.WithTitle("Go: tips & tricks").WithHistory()
	c.AddHistory(model.NewUserCompletion("first question"))
	c.AddHistory(model.NewAICompletion("first answer"))
	c.AddHistory(model.NewUserCompletion("second question"))

	tr := FromChat(id, c)
	tr.ExportedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return tr
}

func TestFromChat_ReadingOrder(t *testing.T) {
	tr := sampleTranscript(t)

	require.Len(t, tr.Messages, 3)
	assert.Equal(t, "first question", tr.Messages[0].Content)
	assert.Equal(t, "first answer", tr.Messages[1].Content)
	assert.Equal(t, "second question", tr.Messages[2].Content)
	assert.Equal(t, []string{RoleUser, RoleAssistant, RoleUser},
		[]string{tr.Messages[0].Role, tr.Messages[1].Role, tr.Messages[2].Role})
	assert.Equal(t, "gpt-4o", tr.Model)
	assert.Equal(t, model.DefaultParams(), tr.Params)
}

func TestNewMessage_Roles(t *testing.T) {
	tests := []struct {
		in      model.Completion
		role    string
		speaker string
	}{
		{model.NewUserCompletion("q"), RoleUser, "You"},
		{model.NewSystemCompletion("s"), RoleSystem, "System"},
		{model.NewAICompletion("a"), RoleAssistant, "AI"},
	}
	for _, tt := range tests {
		msg := NewMessage(tt.in)
		assert.Equal(t, tt.role, msg.Role)
		assert.Equal(t, tt.speaker, msg.Speaker())
		assert.Equal(t, tt.in.Content, msg.Content)
	}
}

func TestDisplayTitle(t *testing.T) {
	tr := &Transcript{ID: uuid.MustParse("12345678-aaaa-bbbb-cccc-1234567890ab")}
	assert.Equal(t, "Chat 12345678", tr.DisplayTitle())
	tr.Title = "named"
	assert.Equal(t, "named", tr.DisplayTitle())
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleTranscript(t))
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, `title: "Go: tips & tricks"`)
	assert.Contains(t, md, "# Go: tips & tricks\n")
	assert.Contains(t, md, "- **Max tokens**: 512")
	assert.Contains(t, md, "### You\n\nfirst question")
	assert.Contains(t, md, "### AI\n\nfirst answer")

	first := strings.Index(md, "first question")
	second := strings.Index(md, "second question")
	assert.Less(t, first, second)
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	out, err := NewMarkdownExporter(&Options{}).Export(sampleTranscript(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# "))
	assert.NotContains(t, string(out), "## Parameters")
}

func TestMarkdownExporter_Empty(t *testing.T) {
	_, err := NewMarkdownExporter(nil).Export(&Transcript{})
	assert.ErrorIs(t, err, ErrEmptyTranscript)

	_, err = NewMarkdownExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestEscaping(t *testing.T) {
	assert.Equal(t, `\#1 \*bold\*`, escapeMarkdown("#1 *bold*"))
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: \"b\""`, escapeYAML(`a: "b"`))
}

// =============================================================================
// JSON
// =============================================================================

func TestJSONExporter(t *testing.T) {
	tr := sampleTranscript(t)
	out, err := NewJSONExporter(nil).Export(tr)
	require.NoError(t, err)

	var decoded Transcript
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, tr.ID, decoded.ID)
	assert.Equal(t, tr.Messages, decoded.Messages)
	assert.Contains(t, string(out), `"role": "assistant"`)
	assert.NotContains(t, string(out), model.RoleAI.Wire())
}

// =============================================================================
// FILES
// =============================================================================

func TestForFormat(t *testing.T) {
	for format, ext := range map[string]string{"": ".md", "md": ".md", "Markdown": ".md", "json": ".json"} {
		exp, err := ForFormat(format, nil)
		require.NoError(t, err, format)
		assert.Equal(t, ext, exp.FileExtension())
	}

	_, err := ForFormat("pdf", nil)
	assert.Error(t, err)
}

func TestToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	tr := sampleTranscript(t)

	path, err := ToFile(tr, NewJSONExporter(nil), &Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "chat_Go-_tips_&_tricks_20250301_120000.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "second question")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c_d", sanitizeFilename("a/b:c d"))
	assert.Equal(t, "chat", sanitizeFilename(""))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("é", 80))), 50)
}
