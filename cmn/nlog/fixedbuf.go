// Package nlog - ouch logger, provides buffering, timestamping, and writing
// to the console and (optionally) to a log file
/*
 * Copyright (c) 2023-2025, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"io"
	"os"
	"time"
)

// fixed-capacity line (or file) buffer; overflow is silently dropped
type fixed struct {
	buf  []byte
	woff int
}

// interface guard
var _ io.Writer = (*fixed)(nil)

func (fb *fixed) Write(p []byte) (int, error) {
	fb.woff += copy(fb.buf[fb.woff:], p)
	return len(p), nil
}

func (fb *fixed) writeString(s string) { fb.woff += copy(fb.buf[fb.woff:], s) }

func (fb *fixed) writeByte(c byte) {
	if fb.avail() > 0 {
		fb.buf[fb.woff] = c
		fb.woff++
	}
}

// "15:04:05.000"
func (fb *fixed) writeStamp(now time.Time) {
	if fb.avail() < len("15:04:05.000") {
		return
	}
	hour, minute, second := now.Clock()
	fb.digits(hour, 2)
	fb.buf[fb.woff] = ':'
	fb.woff++
	fb.digits(minute, 2)
	fb.buf[fb.woff] = ':'
	fb.woff++
	fb.digits(second, 2)
	fb.buf[fb.woff] = '.'
	fb.woff++
	fb.digits(now.Nanosecond()/int(time.Millisecond), 3)
}

// zero-padded decimal of a given width (the caller checks capacity)
func (fb *fixed) digits(v, width int) {
	for i := width - 1; i >= 0; i-- {
		fb.buf[fb.woff+i] = byte('0' + v%10)
		v /= 10
	}
	fb.woff += width
}

func (fb *fixed) flush(w io.Writer) {
	if fb.woff == 0 {
		return
	}
	if _, err := w.Write(fb.buf[:fb.woff]); err != nil {
		os.Stderr.WriteString("nlog: " + err.Error() + "\n")
	}
	fb.reset()
}

func (fb *fixed) reset()     { fb.woff = 0 }
func (fb *fixed) avail() int { return cap(fb.buf) - fb.woff }

// terminate the line unless already terminated
func (fb *fixed) eol() {
	switch {
	case fb.woff > 0 && fb.buf[fb.woff-1] == '\n':
	case fb.avail() > 0:
		fb.buf[fb.woff] = '\n'
		fb.woff++
	default:
		fb.buf[fb.woff-1] = '\n'
	}
}
