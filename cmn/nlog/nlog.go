// Package nlog - ouch logger, provides buffering, timestamping, and writing
// to the console and (optionally) to a log file
/*
 * Copyright (c) 2023-2025, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	nlogBufSize  = 32 * 1024
	nlogLineSize = 4 * 1024
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

type nlog struct {
	out     io.Writer
	file    *os.File
	fb      *fixed // file buffer
	verbose atomic.Bool
	mw      sync.Mutex
}

var (
	nl = &nlog{
		out: os.Stderr,
		fb:  &fixed{buf: make([]byte, nlogBufSize)},
	}
	pool = sync.Pool{
		New: func() any {
			return &fixed{buf: make([]byte, nlogLineSize)}
		},
	}
)

// all severities end up here; info lines reach the console in verbose mode only
func log(sev severity, format string, args ...any) {
	console := sev >= sevWarn || nl.verbose.Load()
	nl.mw.Lock()
	defer nl.mw.Unlock()
	if nl.file == nil && (!console || nl.out == nil) {
		return
	}
	line := pool.Get().(*fixed)
	line.reset()
	header(sev, line)
	if format == "" {
		fmt.Fprintln(line, args...)
	} else {
		fmt.Fprintf(line, format, args...)
	}
	line.eol()

	if console && nl.out != nil {
		nl.out.Write(line.buf[:line.woff])
	}
	if nl.file != nil {
		if nl.fb.avail() < line.woff {
			nl.fb.flush(nl.file)
		}
		nl.fb.Write(line.buf[:line.woff])
	}
	pool.Put(line)
}

// "<sev> hh:mm:ss.mmm file:line "
func header(sev severity, line *fixed) {
	const sevChar = "IWE"
	line.writeByte(sevChar[sev])
	line.writeByte(' ')
	line.writeStamp(time.Now())
	line.writeByte(' ')

	// runtime.Caller: header <= log <= exported API <= caller
	_, fn, ln, ok := runtime.Caller(3)
	if !ok {
		return
	}
	fn = strings.TrimSuffix(filepath.Base(fn), ".go")
	line.writeString(fn)
	line.writeByte(':')
	line.writeString(strconv.Itoa(ln))
	line.writeByte(' ')
}
