// Package dispatch implements the bounded stack machine of spec.md
// §4.3: it routes decoded events to the current handler set, manages
// delegation to child handler sets on nested submessages, and enforces
// a compile-time depth limit. Grounded on the teacher corpus's
// transport send/receive state machines (transport/sendmsg.go,
// transport/collect.go): a small, explicit state struct advanced by
// discrete events rather than a goroutine-per-message design, since
// dispatch must stay synchronous and allocation-free per spec.md §5.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package dispatch

import (
	"github.com/teris-io/shortid"

	"github.com/corepb/corepb/handler"
	"github.com/corepb/corepb/internal/debug"
	"github.com/corepb/corepb/internal/mono"
	"github.com/corepb/corepb/internal/nlog"
	"github.com/corepb/corepb/status"
)

// MaxNesting is the compile-time stack depth bound of spec.md §6
// ("a single compile-time constant MAX_NESTING (suggested: 64)").
// Unbounded recursion on attacker-controlled input is a denial-of-
// service risk (spec.md §9); this cap is load-bearing and not meant to
// be raised per call.
const MaxNesting = 64

// frame is the (handlers, depth) pair of spec.md §3. depth counts the
// nesting levels at which the current handler set applies.
type frame struct {
	handlers handler.Handlers
	depth    int
}

// Dispatcher is the fixed-size stack of frames described in spec.md §3
// and §4.3. The zero value is not usable; construct with New.
type Dispatcher struct {
	stack     [MaxNesting]frame
	top       int // invariant I6: 0 <= top < MaxNesting
	traceID   string
	metrics   *metrics
	startedAt int64 // mono.NanoTime() at the most recent StartMsg
}

// Option configures optional, zero-cost-when-absent instrumentation.
type Option func(*Dispatcher)

// WithMetrics registers the dispatcher with the package-level Prometheus
// collectors (see metrics.go). Metrics are entirely optional: a
// Dispatcher built without this option never touches prometheus.
func WithMetrics() Option {
	return func(d *Dispatcher) { d.metrics = defaultMetrics() }
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	id, err := shortid.Generate()
	if err != nil {
		id = "dispatch"
	}
	d.traceID = id
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Reset is spec.md §4.3's "Initial state": top <- stack[0]; top.handlers
// <- h; top.depth <- 1. The depth of 1, rather than 0, ensures
// end-submsg at the outermost level does not attempt to pop past the
// base frame.
func (d *Dispatcher) Reset(h handler.Handlers) {
	d.top = 0
	d.stack[0] = frame{handlers: h, depth: 1}
	if d.metrics != nil {
		d.metrics.depth.Set(1)
	}
}

func (d *Dispatcher) cur() *frame { return &d.stack[d.top] }

// StartMsg requires top == stack[0] (a fresh dispatcher, spec.md §4.3
// transition table).
func (d *Dispatcher) StartMsg() status.Status {
	if d.top != 0 {
		return invariant("StartMsg: not at the base frame (top=%d)", d.top)
	}
	d.startedAt = mono.NanoTime()
	d.cur().handlers.StartMsg()
	d.logf("start-msg")
	return status.OK()
}

// EndMsg requires top == stack[0], mirroring StartMsg.
func (d *Dispatcher) EndMsg() status.Status {
	if d.top != 0 {
		return invariant("EndMsg: not at the base frame (top=%d)", d.top)
	}
	d.cur().handlers.EndMsg()
	d.logf("end-msg (elapsed=%s)", mono.Since(d.startedAt))
	return status.OK()
}

// StartSubMsg implements the delegation protocol of spec.md §4.3.
//
// The caller's current handler set's StartSubMsg(closure, field,
// outparam) may:
//   - fill outparam with a non-empty Handlers and return Delegate;
//   - return Continue (stream into the current handlers);
//   - return SkipSubMsg or Break.
//
// DELEGATE ⇔ outparam is non-empty is a checked invariant. On Delegate,
// the dispatcher pushes a new frame (depth=0), invokes the new set's
// StartMsg, rewrites the outcome to Continue for the caller, then
// increments the new top's depth to 1. On any other outcome, the
// CURRENT top's depth is incremented instead.
func (d *Dispatcher) StartSubMsg(field handler.Field) (handler.Flow, status.Status) {
	var out handler.Handlers
	flow := d.cur().handlers.StartSubMsg(field, &out)

	if flow == handler.Delegate {
		if out.Empty() {
			return flow, invariant("StartSubMsg: DELEGATE with empty handlers")
		}
		if d.top+1 >= MaxNesting {
			return flow, status.Errorf(status.KindMaxDepth,
				"dispatcher stack overflow: depth would exceed MaxNesting=%d", MaxNesting)
		}
		d.top++
		d.stack[d.top] = frame{handlers: out, depth: 0}
		out.StartMsg()
		d.stack[d.top].depth = 1
		d.logf("start-submsg: delegate (top=%d)", d.top)
		if d.metrics != nil {
			d.metrics.depth.Set(float64(d.top + 1))
			d.metrics.events.Inc()
		}
		return handler.Continue, status.OK()
	}

	if !out.Empty() {
		return flow, invariant("StartSubMsg: non-DELEGATE outcome with non-empty handlers")
	}
	d.cur().depth++
	if d.metrics != nil {
		d.metrics.events.Inc()
	}
	return flow, status.OK()
}

// EndSubMsg pre-decrements the top frame's depth. When it reaches 0,
// that handler set's EndMsg fires and the frame is popped — this is the
// delegation hand-back: EndSubMsg is then invoked on the now-current
// (parent) handler set, even for a delegated child, per spec.md §4.3.
func (d *Dispatcher) EndSubMsg() (handler.Flow, status.Status) {
	d.cur().depth--
	if d.cur().depth < 0 {
		return handler.Break, invariant("EndSubMsg: depth underflow at top=%d", d.top)
	}
	if d.cur().depth == 0 {
		d.cur().handlers.EndMsg()
		if d.top == 0 {
			return handler.Break, invariant("EndSubMsg: attempted to pop the base frame")
		}
		d.top--
		if d.metrics != nil {
			d.metrics.depth.Set(float64(d.top + 1))
		}
	}
	flow := d.cur().handlers.EndSubMsg()
	d.logf("end-submsg (top=%d)", d.top)
	if d.metrics != nil {
		d.metrics.events.Inc()
	}
	return flow, status.OK()
}

func (d *Dispatcher) Value(field handler.Field, val handler.Value) handler.Flow {
	if d.metrics != nil {
		d.metrics.events.Inc()
	}
	return d.cur().handlers.Value(field, val)
}

func (d *Dispatcher) UnknownValue(fieldNum uint32, val handler.Value) handler.Flow {
	if d.metrics != nil {
		d.metrics.events.Inc()
	}
	return d.cur().handlers.UnknownValue(fieldNum, val)
}

// Depth reports the current frame's nesting count, mostly useful for
// tests asserting property P5/P6 from spec.md §8.
func (d *Dispatcher) Depth() int { return d.cur().depth }

// Top reports the index of the currently active frame.
func (d *Dispatcher) Top() int { return d.top }

func (d *Dispatcher) logf(format string, args ...any) {
	if !nlog.Verbose() {
		return
	}
	nlog.Infof("[%s] "+format, append([]any{d.traceID}, args...)...)
}

func invariant(format string, args ...any) status.Status {
	debug.Assertf(false, format, args...)
	return status.Errorf(status.KindInvariant, format, args...)
}
