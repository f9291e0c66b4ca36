// Package nlog is a minimal severity-leveled logger, adapted from the
// teacher corpus's buffering/rotating logger for library use: a single
// process embedding corepb has no log file lifecycle of its own to
// manage, so rotation and pooled fixed buffers are dropped in favor of
// a plain io.Writer target. The severity routing and depth-aware call
// site convention are carried over unchanged.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

var sevText = [...]string{sevInfo: "I", sevWarn: "W", sevErr: "E"}

var (
	mu      sync.Mutex
	out     io.Writer = os.Stderr
	verbose int32
)

// SetOutput redirects all subsequent log lines; nil restores os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	out = w
}

// SetVerbose toggles Infof-level chatter used by hot paths (dispatch,
// refcount) that would otherwise be too noisy for default operation.
func SetVerbose(v bool) {
	if v {
		atomic.StoreInt32(&verbose, 1)
	} else {
		atomic.StoreInt32(&verbose, 0)
	}
}

func Verbose() bool { return atomic.LoadInt32(&verbose) != 0 }

func InfoDepth(depth int, args ...any)    { logln(sevInfo, depth+1, args...) }
func Infoln(args ...any)                  { logln(sevInfo, 1, args...) }
func Infof(format string, args ...any)    { logf(sevInfo, 1, format, args...) }
func Warningln(args ...any)               { logln(sevWarn, 1, args...) }
func Warningf(format string, args ...any) { logf(sevWarn, 1, format, args...) }
func ErrorDepth(depth int, args ...any)   { logln(sevErr, depth+1, args...) }
func Errorln(args ...any)                 { logln(sevErr, 1, args...) }
func Errorf(format string, args ...any)   { logf(sevErr, 1, format, args...) }

func logln(sev severity, depth int, args ...any) {
	write(sev, depth+1, fmt.Sprintln(args...))
}

func logf(sev severity, depth int, format string, args ...any) {
	write(sev, depth+1, fmt.Sprintf(format, args...)+"\n")
}

func write(sev severity, depth int, msg string) {
	_, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		file, line = "???", 0
	} else {
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				file = file[i+1:]
				break
			}
		}
	}
	ts := time.Now().Format("0102 15:04:05.000000")
	mu.Lock()
	fmt.Fprintf(out, "%s%s %s:%d] %s", sevText[sev], ts, file, line, msg)
	mu.Unlock()
}
