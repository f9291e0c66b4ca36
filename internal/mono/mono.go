// Package mono provides monotonic timestamps for latency bookkeeping
// (dispatcher event timing). The teacher corpus's
// cmn/mono uses a go:linkname into runtime.nanotime for a few extra
// nanoseconds of speed; that trick relies on the exact layout of an
// unexported runtime symbol and is not something a published library
// should carry, so this port falls back to the portable, always-correct
// equivalent (nanoseconds on Go's monotonic clock since package init)
// and keeps only the package name and call shape.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

var epoch = time.Now()

func NanoTime() int64 { return int64(time.Since(epoch)) }

func Since(start int64) time.Duration { return time.Duration(NanoTime() - start) }
