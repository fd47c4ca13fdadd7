// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"fmt"
	"strings"

	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/urfave/cli"
)

type errUsage struct {
	context *cli.Context
	message string
}

func (e *errUsage) Error() string {
	if e.context.Command.Name != "" {
		return fmt.Sprintf("Incorrect '%s %s' usage: %s.\n\nSee '%s %s --help'.",
			e.context.App.Name, e.context.Command.Name, e.message, e.context.App.Name, e.context.Command.Name)
	}
	return fmt.Sprintf("Incorrect usage: %s.\n\nSee '%s --help'.", e.message, e.context.App.Name)
}

func incorrectUsageMsg(c *cli.Context, fmtString string, args ...any) *errUsage {
	return &errUsage{context: c, message: fmt.Sprintf(fmtString, args...)}
}

func missingArgumentsError(c *cli.Context, missingArgs ...string) *errUsage {
	return &errUsage{context: c, message: "missing arguments " + strings.Join(missingArgs, ", ")}
}

func incorrectUsageHandler(c *cli.Context, err error, _ bool) error {
	return incorrectUsageMsg(c, "%v", err)
}

// cumulative error of independent jobs (in a batch)
func batchErr(errs *cos.Errs, total int) error {
	cnt, err := errs.JoinErr()
	if cnt == 0 {
		return nil
	}
	if total == 1 {
		return err
	}
	return fmt.Errorf("%d (out of %d) failed:\n%w", cnt, total, err)
}
