// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/NVIDIA/ouch/cmd/cli/config"
	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/cmn/nlog"

	"github.com/fatih/color"
	"github.com/urfave/cli"
)

const (
	cliName  = "ouch"
	cliDescr = `Formats are inferred from file extensions (e.g. "a.tar.gz", "b.zst", "c.7z"),
   or else detected by content (with confirmation). Use '--format' to override.`
)

type acli struct {
	ctx       context.Context
	app       *cli.App
	cfg       *config.Config
	outWriter io.Writer
	errWriter io.Writer
	prompt    *prompter
	bars      *progressBars
}

// color
var (
	fred   = color.New(color.FgHiRed).SprintFunc()
	fcyan  = color.New(color.FgHiCyan).SprintFunc()
	fblue  = color.New(color.FgHiBlue).SprintFunc()
	fgreen = color.New(color.FgHiGreen).SprintFunc()
)

// main method
func Run(ctx context.Context, version, buildtime string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return redErr(err)
	}
	a := &acli{
		ctx:       ctx,
		app:       cli.NewApp(),
		cfg:       cfg,
		outWriter: os.Stdout,
		errWriter: os.Stderr,
		prompt:    newPrompter(os.Stdin, os.Stderr),
	}
	a.init(version, buildtime)
	return a.formatErr(a.app.Run(args))
}

// colored message, same cause
type errRed struct {
	err error
}

func (e *errRed) Error() string { return fred("Error: ") + strings.TrimRight(e.err.Error(), "\n") }
func (e *errRed) Unwrap() error { return e.err }

func redErr(err error) error { return &errRed{err} }

// Formats error message
func (a *acli) formatErr(err error) error {
	if err == nil {
		return nil
	}
	var eu *errUsage
	if errors.As(err, &eu) {
		return err
	}
	return redErr(err)
}

func (a *acli) before(c *cli.Context) error {
	// colors get disabled automatically when stdout is not a terminal
	// (or TERM is dumb); here, only disabling
	if flagIsSet(c, noColorFlag) || a.cfg.NoColor {
		color.NoColor = true
	}
	nlog.SetVerbose(a.cfg.Verbose || flagIsSet(c, verboseFlag))
	if a.cfg.LogFile != "" {
		return nlog.SetLogFile(cos.ExpandPath(a.cfg.LogFile))
	}
	return nil
}

func (a *acli) init(version, buildtime string) {
	app := a.app

	app.Name = cliName
	app.Usage = "painless compression and decompression"
	app.Version = version
	app.Compiled = parseBuildTime(buildtime)
	app.HideHelp = true
	app.Flags = []cli.Flag{cli.HelpFlag, noColorFlag}
	app.OnUsageError = incorrectUsageHandler
	app.Writer = a.outWriter
	app.ErrWriter = a.errWriter
	app.Before = a.before
	app.Description = cliDescr
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version, V",
		Usage: "print only the version",
	}
	app.Commands = []cli.Command{
		a.compressCmd(),
		a.decompressCmd(),
		a.listCmd(),
	}
	for i := range app.Commands {
		cmd := &app.Commands[i]
		cmd.HideHelp = true
		cmd.Flags = append(cmd.Flags, commonFlags...)
		cmd.Flags = append(cmd.Flags, cli.HelpFlag)
		cmd.OnUsageError = incorrectUsageHandler
		cmd.Before = a.before
	}
}
