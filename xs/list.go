// Package xs materializes archives on the local filesystem (extract, create, list)
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package xs

import (
	"context"
	"io"
	"os"

	"github.com/NVIDIA/ouch/cmn/archive"

	"github.com/pkg/errors"
)

// List calls `fn` for each archived entry, in archive order
// without extracting anything; content is skipped over.
func List(ctx context.Context, src string, chain archive.Chain, cfg Config, fn func(e *archive.Entry) error) error {
	if !chain.IsArchive() {
		return errors.Wrapf(ErrNotArchive, "%s (%s)", src, chain)
	}
	fh, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fh.Close()
	r, err := archive.OpenReader(chain, fh, cfg.archiveOpts())
	if err != nil {
		return errors.Wrapf(err, "%s (%s)", src, chain)
	}
	defer r.Close()
	for {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		e, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "%s (%s)", src, chain)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}
