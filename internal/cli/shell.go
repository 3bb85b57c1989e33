// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/app"
	"github.com/jeranaias/aimlchat/internal/chat"
	"github.com/jeranaias/aimlchat/internal/cloud"
	"github.com/jeranaias/aimlchat/internal/commands"
	"github.com/jeranaias/aimlchat/internal/model"
	"github.com/jeranaias/aimlchat/internal/util"
)

// HistoryFileName is the input history file inside the config directory.
const HistoryFileName = "input_history"

// Shell is the interactive read-eval-print loop.
type Shell struct {
	app       *app.App
	registry  *commands.Registry
	completer *commands.Completer
	out       *Printer
	logger    *zap.Logger

	historyFile string
	version     string
}

// NewShell creates a shell over a started app.
func NewShell(a *app.App, out *Printer, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := commands.NewRegistry()
	completer := commands.NewCompleter(registry)
	completer.ModelsFn = a.ModelNames
	completer.ChatsFn = func() []string {
		infos := a.Chats()
		ids := make([]string, 0, len(infos))
		for _, info := range infos {
			ids = append(ids, util.ShortID(info.ID))
		}
		return ids
	}

	return &Shell{
		app:       a,
		registry:  registry,
		completer: completer,
		out:       out,
		logger:    logger.Named("cli"),
	}
}

// WithHistoryFile persists input history to path. Empty disables it.
func (s *Shell) WithHistoryFile(path string) *Shell {
	s.historyFile = path
	return s
}

// WithVersion sets the version shown in the banner.
func (s *Shell) WithVersion(version string) *Shell {
	s.version = version
	return s
}

// =============================================================================
// REPL
// =============================================================================

// Run reads and handles lines until /quit, Ctrl+C at the prompt, EOF, or
// ctx ends.
func (s *Shell) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(s.completer.Complete)

	s.loadHistory(line)
	defer s.saveHistory(line)

	s.PrintWelcome()

	for ctx.Err() == nil {
		input, err := line.Prompt(s.prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				s.out.Printf("\n")
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if s.Handle(ctx, input) {
			return nil
		}
	}
	return nil
}

// Handle processes one input line and reports whether the shell should
// exit.
func (s *Shell) Handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	if commands.IsCommand(input) {
		err := s.registry.Execute(commands.NewContext(ctx, s.app, s.out), input)
		switch {
		case errors.Is(err, commands.ErrQuit):
			return true
		case err != nil:
			s.reportError(err)
		}
		return false
	}

	s.send(ctx, input)
	return false
}

// send runs one exchange. Ctrl+C while waiting cancels the request but not
// the shell.
func (s *Shell) send(parent context.Context, input string) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	reply, err := s.app.Send(ctx, input)
	switch {
	case err == nil:
		s.out.Turn(model.NewAICompletion(reply))
	case ctx.Err() != nil && parent.Err() == nil:
		s.out.Warnf("[Cancelled]\n")
	default:
		s.reportError(err)
	}
}

func (s *Shell) reportError(err error) {
	switch {
	case errors.Is(err, chat.ErrNoCurrentChat):
		s.out.Warnf("No current chat. Create one with /new or pick one with /use\n")
	case errors.Is(err, cloud.ErrMissingCredential):
		s.out.Errorf("no API key. Set one with /key or AIMLCHAT_API_KEY")
	case errors.Is(err, commands.ErrUnknownCommand):
		s.out.Errorf("%v (try /help)", err)
	default:
		s.out.Errorf("%v", err)
	}
	s.logger.Debug("command failed", zap.Error(err))
}

func (s *Shell) prompt() string {
	// liner measures the prompt in runes, so it stays uncolored.
	if id, _, ok := s.app.Current(); ok {
		return "aimlchat " + util.ShortID(id) + "> "
	}
	return "aimlchat> "
}

// PrintWelcome prints the startup banner.
func (s *Shell) PrintWelcome() {
	title := "aimlchat"
	if s.version != "" {
		title += " " + s.version
	}
	s.out.Banner(title)
	s.out.Dimf("%d models, %d chats, saving to %s\n",
		len(s.app.Models()), len(s.app.Chats()), s.app.StoreLocation())
	if !s.app.LocalSave() {
		s.out.Warnf("Saving is off. Turn it on with /save on\n")
	}
	if !s.app.HasAPIKey() {
		s.out.Warnf("No API key. Set one with /key or AIMLCHAT_API_KEY\n")
	}
	if _, _, ok := s.app.Current(); !ok {
		s.out.Dimf("Create a chat with /new. Type /help for commands.\n")
	}
	s.out.Printf("\n")
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

func (s *Shell) loadHistory(line *liner.State) {
	if s.historyFile == "" {
		return
	}
	f, err := os.Open(s.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	line.ReadHistory(f)
}

func (s *Shell) saveHistory(line *liner.State) {
	if s.historyFile == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := line.WriteHistory(&buf); err != nil {
		s.logger.Warn("write input history", zap.Error(err))
		return
	}
	if err := util.WritePrivateFile(s.historyFile, buf.Bytes()); err != nil {
		s.logger.Warn("save input history", zap.String("path", s.historyFile), zap.Error(err))
	}
}
