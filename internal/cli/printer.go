// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/aimlchat/internal/model"
)

// PrinterOptions controls how a Printer renders.
type PrinterOptions struct {
	Colors   bool
	Markdown bool
	Width    int
}

// Printer writes shell output. It implements commands.Output.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	colors palette

	// nil renders replies verbatim
	markdown *glamour.TermRenderer
}

// NewPrinter creates a printer writing normal output to out and errors to
// errOut. If the Markdown renderer cannot be built, replies are printed
// verbatim.
func NewPrinter(out, errOut io.Writer, opts PrinterOptions) *Printer {
	p := &Printer{
		out:    out,
		errOut: errOut,
		colors: newPalette(opts.Colors),
	}
	if opts.Markdown {
		width := opts.Width
		if width <= 0 {
			width = DefaultTerminalWidth
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			p.markdown = r
		}
	}
	return p
}

func (p *Printer) write(w io.Writer, s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	io.WriteString(w, s)
}

// Printf writes plain output.
func (p *Printer) Printf(format string, args ...any) {
	p.write(p.out, fmt.Sprintf(format, args...))
}

// Successf writes a confirmation.
func (p *Printer) Successf(format string, args ...any) {
	p.write(p.out, p.colors.success.Sprintf(format, args...))
}

// Warnf writes a warning.
func (p *Printer) Warnf(format string, args ...any) {
	p.write(p.out, p.colors.warn.Sprintf(format, args...))
}

// Errorf writes an error line to the error stream.
func (p *Printer) Errorf(format string, args ...any) {
	p.write(p.errOut, p.colors.err.Sprint("[Error]")+" "+fmt.Sprintf(format, args...)+"\n")
}

// Dimf writes de-emphasized output.
func (p *Printer) Dimf(format string, args ...any) {
	p.write(p.out, p.colors.dim.Sprintf(format, args...))
}

// Banner writes a bold heading line.
func (p *Printer) Banner(text string) {
	p.write(p.out, p.colors.banner.Sprint(text)+"\n")
}

// Turn writes one conversation turn: the speaker on its own line, then the
// content. AI turns go through the Markdown renderer.
func (p *Printer) Turn(msg model.Completion) {
	body := msg.Content
	if msg.IsAI() {
		body = p.render(body)
	}
	header := p.colors.role(msg.Role).Sprint(msg.Role.DisplayName() + ":")
	p.write(p.out, header+"\n"+strings.TrimRight(body, "\n")+"\n\n")
}

func (p *Printer) render(content string) string {
	if p.markdown == nil {
		return content
	}
	rendered, err := p.markdown.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}
