// Package nlog - ouch logger, provides buffering, timestamping, and writing
// to the console and (optionally) to a log file
/*
 * Copyright (c) 2023-2025, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"io"
	"os"
)

func Infoln(args ...any)                  { log(sevInfo, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, format, args...) }
func Warningln(args ...any)               { log(sevWarn, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, format, args...) }
func Errorln(args ...any)                 { log(sevErr, "", args...) }

// SetOutput replaces the console sink (default: os.Stderr); nil silences it.
func SetOutput(w io.Writer) {
	nl.mw.Lock()
	nl.out = w
	nl.mw.Unlock()
}

// SetVerbose enables info-level lines on the console
// (warnings and errors are always printed).
func SetVerbose(v bool) { nl.verbose.Store(v) }
func Verbose() bool     { return nl.verbose.Load() }

// SetLogFile opens (appends to) a log file that receives all severities.
// Empty path closes the current one, if any.
func SetLogFile(path string) error {
	nl.mw.Lock()
	defer nl.mw.Unlock()
	if nl.file != nil {
		nl.fb.flush(nl.file)
		nl.file.Close()
		nl.file = nil
	}
	if path == "" {
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return err
	}
	nl.file = file
	return nil
}

func Flush() {
	nl.mw.Lock()
	if nl.file != nil {
		nl.fb.flush(nl.file)
	}
	nl.mw.Unlock()
}
