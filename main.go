// aimlchat - a terminal client for the AI/ML API chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/jeranaias/aimlchat/internal/app"
	"github.com/jeranaias/aimlchat/internal/cli"
	"github.com/jeranaias/aimlchat/internal/config"
	"github.com/jeranaias/aimlchat/internal/logging"
	"github.com/jeranaias/aimlchat/internal/model"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// shutdownTimeout bounds the final save on exit.
const shutdownTimeout = 10 * time.Second

// Options are the command-line flags. They override the config file and
// environment.
type Options struct {
	Config      string `long:"config" short:"c" description:"Config file (default ~/.aimlchat/config.toml)"`
	Store       string `long:"store" description:"Store backend" choice:"file" choice:"sqlite" choice:"redis"`
	Save        string `long:"save" description:"Save location for the selected store (file path or redis address)"`
	NoSave      bool   `long:"no-save" description:"Do not save anything during this run"`
	Key         string `long:"key" description:"API key (prefer AIMLCHAT_API_KEY; flags show up in ps)"`
	Model       string `long:"model" short:"m" description:"Default model for new chats"`
	Debug       bool   `long:"debug" description:"Log at debug level"`
	PrintConfig bool   `long:"print-config" description:"Print the effective config with the key masked and exit"`
	Version     bool   `long:"version" short:"v" description:"Show the program version"`
}

func parseOptions(args []string) (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "aimlchat"
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return &opts, nil
}

// loadConfig reads the config file, then applies flags on top and
// validates the result.
func loadConfig(opts *Options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.LoadFromPath(opts.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	applyOptions(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOptions(cfg *config.Config, opts *Options) {
	if opts.Store != "" {
		cfg.Store.Backend = opts.Store
	}
	if opts.Save != "" {
		cfg.Store.SetLocation(opts.Save)
	}
	if opts.NoSave {
		cfg.Store.LocalSave = false
	}
	if opts.Key != "" {
		cfg.API.APIKey = opts.Key
	}
	if opts.Model != "" {
		cfg.Chat.DefaultModel = model.New(opts.Model).Name
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
}

func historyPath() string {
	dir, err := config.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, cli.HistoryFileName)
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.Version {
		fmt.Printf("aimlchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aimlchat: config: %v\n", err)
		os.Exit(1)
	}
	if opts.PrintConfig {
		fmt.Print(cfg.String())
		return
	}

	logger, syncLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aimlchat: logging: %v\n", err)
		os.Exit(1)
	}
	defer syncLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	a, err := app.Start(ctx, cfg, logger)
	if err != nil {
		// Malformed saved state and an unreachable catalog both end here.
		fmt.Fprintf(os.Stderr, "aimlchat: %v\n", err)
		logger.Fatal("startup failed", zap.Error(err))
	}

	go a.RunAutoSave(ctx)

	shell := cli.NewShell(a, cli.NewPrinter(os.Stdout, os.Stderr, cli.DetectPrinterOptions()), logger).
		WithVersion(Version).
		WithHistoryFile(historyPath())
	runErr := shell.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := errors.Join(runErr, a.Close(closeCtx)); err != nil {
		fmt.Fprintf(os.Stderr, "aimlchat: %v\n", err)
		logger.Error("shutdown", zap.Error(err))
		syncLog()
		os.Exit(1)
	}
}
