// Package tassert provides common asserts for tests
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package tassert

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	modPrefix = "ouch/"
	maxFrames = 8
)

// tests that already failed fatally (a second CheckFatal from a helper
// goroutine must not call tb.Fatal again)
var fatal sync.Map

func stamp() string { return "[" + time.Now().Format("15:04:05.000000") + "]" }

func CheckFatal(tb testing.TB, err error) {
	if err == nil {
		return
	}
	if _, dup := fatal.LoadOrStore(tb.Name(), struct{}{}); dup {
		tb.Logf("--- %s: duplicate CheckFatal: %v", tb.Name(), err)
		runtime.Goexit()
	}
	printStack()
	tb.Fatal(stamp(), err)
}

func CheckError(tb testing.TB, err error) {
	if err == nil {
		return
	}
	printStack()
	tb.Error(stamp(), err)
}

// ErrorIs fails the test unless errors.Is(err, target)
func ErrorIs(tb testing.TB, err, target error) {
	if errors.Is(err, target) {
		return
	}
	printStack()
	tb.Fatalf("expected error %v, got %v", target, err)
}

func Fatal(tb testing.TB, cond bool, msg string) {
	if !cond {
		printStack()
		tb.Fatal(msg)
	}
}

func Fatalf(tb testing.TB, cond bool, format string, args ...any) {
	if !cond {
		printStack()
		tb.Fatalf(format, args...)
	}
}

func Error(tb testing.TB, cond bool, msg string) {
	if !cond {
		printStack()
		tb.Error(msg)
	}
}

func Errorf(tb testing.TB, cond bool, format string, args ...any) {
	if !cond {
		printStack()
		tb.Errorf(format, args...)
	}
}

// prints caller frames within this module, tassert itself excluded
func printStack() {
	var sb strings.Builder
	sb.WriteString("    tassert.printStack:\n")
	for skip := 2; skip < 2+maxFrames; skip++ {
		_, file, line, ok := runtime.Caller(skip)
		if !ok {
			break
		}
		i := strings.Index(file, modPrefix)
		if i < 0 {
			break
		}
		if strings.Contains(file, "/tassert/") {
			continue
		}
		fmt.Fprintf(&sb, "\t%s:%d\n", file[i+len(modPrefix):], line)
	}
	os.Stderr.WriteString(sb.String())
}
