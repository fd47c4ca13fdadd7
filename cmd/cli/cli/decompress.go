// Package cli provides the compress, decompress, and list commands.
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"fmt"

	"github.com/NVIDIA/ouch/cmn/archive"
	"github.com/NVIDIA/ouch/cmn/cos"
	"github.com/NVIDIA/ouch/xs"

	"github.com/urfave/cli"
)

const decompressUsage = "decompress one or more files (in parallel),\n" +
	indent1 + "\te.g.:\n" +
	indent1 + "\t- 'ouch d a.tar.gz b.zip -d out'\t- extract both archives into 'out';\n" +
	indent1 + "\t- 'ouch d --flatten a.tar.gz'\t- single top-level item goes directly into the destination;\n" +
	indent1 + "\t- 'ouch d -f tar.zst backup.bin'\t- format override."

func (a *acli) decompressCmd() cli.Command {
	return cli.Command{
		Name:      "decompress",
		Aliases:   []string{"d"},
		Usage:     decompressUsage,
		ArgsUsage: "FILES...",
		Flags: []cli.Flag{
			dirFlag, removeFlag, mergeFlag, flattenFlag, materializeFlag, skipTraversalFlag,
		},
		Action: a.decompressHandler,
	}
}

func (a *acli) decompressHandler(c *cli.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return missingArgumentsError(c, "FILES...")
	}
	cfg, err := a.xsConfig(c)
	if err != nil {
		return err
	}
	var (
		dcfg = &a.cfg.Decompress
		dst  = parseStrFlag(c, dirFlag)
		errs = cos.NewErrs(len(args))
		jobs = make([]xs.Job, 0, len(args))
	)
	if dst == "" {
		dst = "."
	}
	cfg.RemoveSource = flagIsSet(c, removeFlag)
	cfg.Merge = flagIsSet(c, mergeFlag) || dcfg.Merge
	cfg.Flatten = flagIsSet(c, flattenFlag) || dcfg.Flatten
	cfg.MaterializeLinks = flagIsSet(c, materializeFlag) || dcfg.MaterializeLinks
	if flagIsSet(c, skipTraversalFlag) || dcfg.SkipTraversal {
		cfg.OnTraversal = xs.TraversalSkip
	}

	for _, src := range args {
		chain, err := a.inputChain(c, src, cfg)
		if err != nil {
			errs.Add(fmt.Errorf("%s: %w", src, err))
			continue
		}
		jobs = append(jobs, xs.Job{Src: src, Dst: dst, Chain: chain})
	}

	results := xs.RunAll(a.ctx, jobs, cfg)
	a.wait()
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			errs.Add(res.Err)
			continue
		}
		if !flagIsSet(c, quietFlag) {
			fmt.Fprintf(a.outWriter, "Decompressed %s into %s: %d entr%s, %s\n", fgreen(res.Job.Src), fcyan(dst),
				res.Stats.Entries, plural(res.Stats.Entries, "y", "ies"), cos.ToSizeIEC(res.Stats.Bytes, 2))
		}
		a.printWarnings(c, &res.Stats)
	}
	return batchErr(&errs, len(args))
}

func (a *acli) inputChain(c *cli.Context, src string, cfg xs.Config) (archive.Chain, error) {
	if flagIsSet(c, formatFlag) {
		return archive.ParseFormat(parseStrFlag(c, formatFlag))
	}
	chain, _, err := archive.ResolveInput(src, a.prompt.confirm(cfg.Policy))
	return chain, err
}

func (a *acli) printWarnings(c *cli.Context, stats *xs.Stats) {
	if flagIsSet(c, quietFlag) || len(stats.Warnings) == 0 {
		return
	}
	fmt.Fprintf(a.errWriter, "%d warning%s:\n", len(stats.Warnings), cos.Plural(len(stats.Warnings)))
	for i := range stats.Warnings {
		fmt.Fprintln(a.errWriter, indent1, stats.Warnings[i].String())
	}
}
