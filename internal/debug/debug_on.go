//go:build debug

/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import (
	"fmt"
	"os"
)

func ON() bool { return true }

func Infof(format string, args ...any) { fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...) }

func Func(f func()) { f() }

// Assert panics with INVARIANT semantics (spec.md §7): these are
// programmer errors that a release build never surfaces to callers.
func Assert(cond bool, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: %v", args))
	}
}

func AssertFunc(f func() bool, args ...any) {
	Assert(f(), args...)
}

func AssertNoErr(err error) {
	if err != nil {
		panic(fmt.Sprintf("assertion failed: unexpected error: %v", err))
	}
}

func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
