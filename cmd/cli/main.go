// Package main is the ouch command-line entry point
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NVIDIA/ouch/cmd/cli/cli"
	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/cmn/nlog"
	"github.com/NVIDIA/ouch/xs"
)

const version = "0.6"

var (
	build     string
	buildtime string
)

func main() {
	// first SIGINT cancels the context (and with it, everything in progress)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.Run(ctx, version+"."+build, buildtime, os.Args)
	nlog.Flush()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, xs.ErrCancelled) {
		stop()
		os.Exit(cos.NewSignalError(syscall.SIGINT).ExitCode())
	}
	os.Exit(1)
}
