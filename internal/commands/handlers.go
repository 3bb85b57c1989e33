// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jeranaias/aimlchat/internal/model"
	"github.com/jeranaias/aimlchat/internal/util"
)

// categoryOrder fixes the /help layout.
var categoryOrder = []string{"General", "Models", "Chats", "Conversation", "Settings"}

// =============================================================================
// GENERAL
// =============================================================================

func handleHelp(c *Context, _ []string) error {
	groups := c.Registry.ByCategory()
	for _, category := range categoryOrder {
		cmds := groups[category]
		if len(cmds) == 0 {
			continue
		}
		c.Out.Printf("%s:\n", category)
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			c.Out.Printf("  %s %s\n", util.PadRight(usage, 28), cmd.Description)
		}
	}
	c.Out.Printf("Anything not starting with / is sent to the current chat.\n")
	return nil
}

func handleQuit(_ *Context, _ []string) error {
	return ErrQuit
}

// =============================================================================
// MODELS
// =============================================================================

func handleModels(c *Context, args []string) error {
	models := c.App.Models()
	if len(args) > 0 {
		var err error
		if models, err = c.App.RefreshModels(c.Ctx); err != nil {
			return fmt.Errorf("refresh models: %w", err)
		}
		c.Out.Successf("Fetched %d models\n", len(models))
	}

	var currentModel string
	if _, ch, err := c.current(); err == nil {
		currentModel = ch.Model().Name
	}
	for _, m := range models {
		marker := " "
		if m.Name == currentModel {
			marker = "*"
		}
		c.Out.Printf("%s %s\n", marker, m.Name)
	}
	if len(models) == 0 {
		c.Out.Warnf("The catalog is empty\n")
	}
	return nil
}

// =============================================================================
// CHATS
// =============================================================================

func handleNew(c *Context, args []string) error {
	var modelName, title string
	if len(args) > 0 {
		modelName = args[0]
	}
	if len(args) > 1 {
		title = strings.Join(args[1:], " ")
	}

	id, err := c.App.CreateChat(modelName, title)
	if err != nil {
		return err
	}
	ch, _ := c.App.Chat(id)
	c.Out.Successf("Created chat %s (%s)\n", util.ShortID(id), ch.Model())

	if cur, _, _ := c.App.Current(); cur == id {
		c.Out.Printf("It is now the current chat.\n")
	} else {
		c.Out.Printf("Switch to it with /use %s\n", util.ShortID(id))
	}
	return nil
}

func handleList(c *Context, _ []string) error {
	infos := c.App.Chats()
	if len(infos) == 0 {
		c.Out.Printf("No chats yet. Create one with /new\n")
		return nil
	}
	for _, info := range infos {
		marker := " "
		if info.Current {
			marker = "*"
		}
		title := info.Title
		if title == "" {
			title = "(untitled)"
		}
		history := fmt.Sprintf("%d turns", info.Turns)
		if !info.HistoryEnabled {
			history = "no history"
		}
		c.Out.Printf("%s %s  %s  %s  %s\n",
			marker,
			util.ShortID(info.ID),
			util.PadRight(util.Truncate(info.Model.Name, 24), 24),
			util.PadRight(util.Truncate(title, 32), 32),
			history,
		)
	}
	return nil
}

func handleUse(c *Context, args []string) error {
	id, err := c.App.ResolveChat(args[0])
	if err != nil {
		return err
	}
	if err := c.App.SelectChat(id); err != nil {
		return err
	}
	ch, _ := c.App.Chat(id)
	c.Out.Successf("Now in chat %s (%s)\n", util.ShortID(id), ch.Model())
	return nil
}

func handleRemove(c *Context, args []string) error {
	id, err := c.App.ResolveChat(args[0])
	if err != nil {
		return err
	}
	if err := c.App.RemoveChat(id); err != nil {
		return err
	}
	c.Out.Successf("Removed chat %s\n", util.ShortID(id))
	if _, _, ok := c.App.Current(); !ok {
		c.Out.Warnf("No current chat. Pick one with /use\n")
	}
	return nil
}

func handleTitle(c *Context, _ []string) error {
	_, ch, err := c.current()
	if err != nil {
		return err
	}
	ch.WithTitle(c.RawArgs)
	c.App.Touch()
	c.Out.Successf("Title set\n")
	return nil
}

// =============================================================================
// CONVERSATION
// =============================================================================

func handleHistory(c *Context, args []string) error {
	_, ch, err := c.current()
	if err != nil {
		return err
	}

	switch strings.ToLower(args[0]) {
	case "on":
		ch.WithHistory()
		c.Out.Successf("History on\n")
	case "off":
		ch.WithoutHistory()
		c.Out.Successf("History off; recorded turns dropped\n")
	case "clear":
		ch.ClearHistory()
		c.Out.Successf("History cleared\n")
	}
	c.App.Touch()
	return nil
}

func handleShow(c *Context, args []string) error {
	_, ch, err := c.current()
	if err != nil {
		return err
	}
	if !ch.HistoryEnabled() {
		c.Out.Warnf("History is off for this chat. Turn it on with /history on\n")
		return nil
	}

	history := ch.History()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("/show: %q is not a count", args[0])
		}
		if n < len(history) {
			history = history[:n]
		}
	}
	if len(history) == 0 {
		c.Out.Printf("Nothing here yet.\n")
		return nil
	}

	for i := len(history) - 1; i >= 0; i-- {
		c.Out.Turn(history[i])
	}
	return nil
}

func handleSystem(c *Context, _ []string) error {
	reply, err := c.App.SendAs(c.Ctx, model.RoleSystem, c.RawArgs)
	if err != nil {
		return err
	}
	c.Out.Turn(model.NewAICompletion(reply))
	return nil
}

func handleExport(c *Context, args []string) error {
	id, _, err := c.current()
	if err != nil {
		return err
	}
	format, dir := "md", ""
	if len(args) > 0 {
		format = args[0]
	}
	if len(args) > 1 {
		dir = args[1]
	}

	path, err := c.App.Export(id, format, dir)
	if err != nil {
		return err
	}
	c.Out.Successf("Exported to %s\n", path)
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

var paramNames = []string{"max_tokens", "temperature", "top_p", "frequency_penalty", "stream"}

func handleParams(c *Context, _ []string) error {
	_, ch, err := c.current()
	if err != nil {
		return err
	}
	p := ch.Params()
	c.Out.Printf("model              %s\n", ch.Model())
	c.Out.Printf("max_tokens         %d\n", p.MaxTokens)
	c.Out.Printf("temperature        %g\n", p.Temperature)
	c.Out.Printf("top_p              %g\n", p.TopP)
	c.Out.Printf("frequency_penalty  %g\n", p.FrequencyPenalty)
	c.Out.Printf("stream             %t\n", p.Stream)
	return nil
}

func handleSet(c *Context, args []string) error {
	_, ch, err := c.current()
	if err != nil {
		return err
	}
	p, err := SetParam(ch.Params(), args[0], args[1])
	if err != nil {
		return err
	}
	ch.SetParams(p)
	c.App.Touch()
	c.Out.Successf("%s = %s\n", strings.ToLower(args[0]), args[1])
	return nil
}

// SetParam returns p with the named parameter parsed from value.
func SetParam(p model.Params, name, value string) (model.Params, error) {
	parseFloat := func(lo, hi float64) (float32, error) {
		f, err := strconv.ParseFloat(value, 32)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%s: %q is not a number", name, value)
		}
		if f < lo || f > hi {
			return 0, fmt.Errorf("%s must be between %g and %g", name, lo, hi)
		}
		return float32(f), nil
	}

	var err error
	switch strings.ToLower(name) {
	case "max_tokens":
		var n uint64
		n, err = strconv.ParseUint(value, 10, 32)
		if err != nil || n == 0 {
			return p, fmt.Errorf("max_tokens must be a positive integer")
		}
		p.MaxTokens = uint32(n)
	case "temperature":
		p.Temperature, err = parseFloat(0, 2)
	case "top_p":
		p.TopP, err = parseFloat(0, 1)
	case "frequency_penalty":
		p.FrequencyPenalty, err = parseFloat(-2, 2)
	case "stream":
		p.Stream, err = strconv.ParseBool(value)
		if err != nil {
			err = fmt.Errorf("stream must be true or false")
		}
	default:
		err = fmt.Errorf("unknown parameter %q (want one of %s)", name, strings.Join(paramNames, ", "))
	}
	return p, err
}

func handleSave(c *Context, args []string) error {
	if len(args) == 0 {
		if !c.App.LocalSave() {
			c.Out.Warnf("Saving is off. Turn it on with /save on\n")
			return nil
		}
		if err := c.App.Save(c.Ctx); err != nil {
			return err
		}
		c.Out.Successf("Saved to %s\n", c.App.StoreLocation())
		return nil
	}

	enabled := strings.EqualFold(args[0], "on")
	if err := c.App.SetLocalSave(c.Ctx, enabled); err != nil {
		return err
	}
	if enabled {
		c.Out.Successf("Saving on; saved to %s\n", c.App.StoreLocation())
	} else {
		c.Out.Successf("Saving off for this run\n")
	}
	return nil
}

func handleKey(c *Context, args []string) error {
	c.App.SetAPIKey(args[0])
	c.Out.Successf("API key set (sha256:%s)\n", c.App.KeyFingerprint())
	return nil
}
