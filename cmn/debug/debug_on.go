//go:build debug

// Package debug provides debug utilities
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import (
	"fmt"

	"github.com/NVIDIA/ouch/cmn/nlog"
)

func Assert(cond bool, a ...any) {
	if cond {
		return
	}
	msg := "DEBUG PANIC"
	if len(a) > 0 {
		msg += ": " + fmt.Sprint(a...)
	}
	nlog.Errorln(msg)
	nlog.Flush()
	panic(msg)
}
