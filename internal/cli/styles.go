// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/fatih/color"

	"github.com/jeranaias/aimlchat/internal/model"
)

// palette holds the shell's colors. Every entry is disabled together when
// colors are off.
type palette struct {
	banner  *color.Color
	user    *color.Color
	system  *color.Color
	ai      *color.Color
	success *color.Color
	warn    *color.Color
	err     *color.Color
	dim     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		banner:  color.New(color.FgMagenta, color.Bold),
		user:    color.New(color.FgGreen, color.Bold),
		system:  color.New(color.FgYellow, color.Bold),
		ai:      color.New(color.FgCyan, color.Bold),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
		dim:     color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.banner, p.user, p.system, p.ai, p.success, p.warn, p.err, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// role returns the color for a speaker.
func (p palette) role(r model.Role) *color.Color {
	switch r {
	case model.RoleSystem:
		return p.system
	case model.RoleAI:
		return p.ai
	default:
		return p.user
	}
}
