// Package trand provides random strings and payloads for tests
/*
 * Copyright (c) 2018-2025, NVIDIA CORPORATION. All rights reserved.
 */
package trand

import (
	"math/rand/v2"
)

const (
	letterRunes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lenRunes    = len(letterRunes)
)

func String(n int) string {
	b := make([]byte, n)
	for i := range n {
		b[i] = letterRunes[rand.Int()%lenRunes]
	}
	return string(b)
}

// Bytes returns n pseudo-random bytes; every other KiB is text
// so that codecs have something to both compress and not
func Bytes(n int) []byte {
	b := make([]byte, n)
	for i := range n {
		if (i/1024)%2 == 0 {
			b[i] = letterRunes[rand.IntN(8)]
		} else {
			b[i] = byte(rand.Uint32())
		}
	}
	return b
}
