// Package handler implements the handler-set value object of spec.md
// §2.2 and §3: an immutable table of six event callbacks bundled with a
// user closure, conveyed by value on the dispatcher's stack. Grounded on
// the teacher corpus's transport.ObjSentCB / RecvObj / RecvMsg callback
// shapes (transport/api.go), generalized from "one callback per stream"
// to "six callbacks per handler set" as spec.md §4.3 requires.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package handler

// Field is an opaque field-descriptor handle. Descriptor parsing is an
// external collaborator (spec.md §1); the dispatcher never inspects a
// Field's contents, it only forwards whatever the decoder supplied.
type Field any

// Value is an opaque decoded scalar/message value, likewise supplied
// and interpreted entirely by external collaborators.
type Value any

// Flow is the enum a handler callback returns to steer the dispatcher
// (spec.md §4.3, §6, §9 "Flow enum"). The zero value is Continue so a
// handler that returns nothing unusual behaves as a pass-through.
type Flow int

const (
	Continue Flow = iota
	SkipSubMsg
	Break
	Delegate
)

func (f Flow) String() string {
	switch f {
	case Continue:
		return "continue"
	case SkipSubMsg:
		return "skip-submsg"
	case Break:
		return "break"
	case Delegate:
		return "delegate"
	default:
		return "flow(?)"
	}
}

// Set is the immutable vtable of six callbacks (spec.md §3 "Handler
// set"). A Set is registered once and then only ever read — handler-set
// registration conveniences are an external collaborator (spec.md §1);
// this package just defines the shape a registered Set has.
type Set struct {
	StartMsg     func(closure any)
	EndMsg       func(closure any)
	StartSubMsg  func(closure any, field Field, out *Handlers) Flow
	EndSubMsg    func(closure any) Flow
	Value        func(closure any, field Field, val Value) Flow
	UnknownValue func(closure any, fieldNum uint32, val Value) Flow
}

// Handlers is the (handler-set, closure) pair conveyed by value on the
// dispatcher's frame stack (spec.md §3 "Handlers"). The zero value is
// empty.
type Handlers struct {
	Set     *Set
	Closure any
}

// Empty reports whether both the set and closure are unset, per
// spec.md §3: "Empty when both are null."
func (h Handlers) Empty() bool { return h.Set == nil && h.Closure == nil }

func (h Handlers) StartMsg() {
	if h.Set != nil && h.Set.StartMsg != nil {
		h.Set.StartMsg(h.Closure)
	}
}

func (h Handlers) EndMsg() {
	if h.Set != nil && h.Set.EndMsg != nil {
		h.Set.EndMsg(h.Closure)
	}
}

func (h Handlers) StartSubMsg(field Field, out *Handlers) Flow {
	if h.Set == nil || h.Set.StartSubMsg == nil {
		return Continue
	}
	return h.Set.StartSubMsg(h.Closure, field, out)
}

func (h Handlers) EndSubMsg() Flow {
	if h.Set == nil || h.Set.EndSubMsg == nil {
		return Continue
	}
	return h.Set.EndSubMsg(h.Closure)
}

func (h Handlers) Value(field Field, val Value) Flow {
	if h.Set == nil || h.Set.Value == nil {
		return Continue
	}
	return h.Set.Value(h.Closure, field, val)
}

func (h Handlers) UnknownValue(fieldNum uint32, val Value) Flow {
	if h.Set == nil || h.Set.UnknownValue == nil {
		return Continue
	}
	return h.Set.UnknownValue(h.Closure, fieldNum, val)
}
