/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package dispatch_test

import (
	"testing"

	"github.com/corepb/corepb/dispatch"
	"github.com/corepb/corepb/handler"
	"github.com/corepb/corepb/status"
)

// TestDelegation is spec.md §8 scenario 4: S1.StartSubMsg -> S2.StartMsg
// -> S2.Value -> S2.EndMsg -> S1.EndSubMsg.
func TestDelegation(t *testing.T) {
	var calls []string

	s2 := &handler.Set{
		StartMsg: func(any) { calls = append(calls, "s2.startmsg") },
		EndMsg:   func(any) { calls = append(calls, "s2.endmsg") },
		Value: func(any, handler.Field, handler.Value) handler.Flow {
			calls = append(calls, "s2.value")
			return handler.Continue
		},
	}
	s1 := &handler.Set{
		StartSubMsg: func(_ any, _ handler.Field, out *handler.Handlers) handler.Flow {
			calls = append(calls, "s1.startsubmsg")
			*out = handler.Handlers{Set: s2}
			return handler.Delegate
		},
		EndSubMsg: func(any) handler.Flow {
			calls = append(calls, "s1.endsubmsg")
			return handler.Continue
		},
	}

	d := dispatch.New()
	d.Reset(handler.Handlers{Set: s1})
	if st := d.StartMsg(); !st.OK() {
		t.Fatalf("StartMsg: %v", st)
	}

	flow, st := d.StartSubMsg("field1")
	if !st.OK() {
		t.Fatalf("StartSubMsg: %v", st)
	}
	if flow != handler.Continue {
		t.Fatalf("dispatcher must rewrite DELEGATE to CONTINUE for the caller, got %v", flow)
	}
	if d.Depth() != 1 {
		t.Fatalf("want delegated frame depth 1, got %d", d.Depth())
	}

	d.Value("field2", 42)

	if _, st := d.EndSubMsg(); !st.OK() {
		t.Fatalf("EndSubMsg: %v", st)
	}

	want := []string{"s1.startsubmsg", "s2.startmsg", "s2.value", "s2.endmsg", "s1.endsubmsg"}
	if len(calls) != len(want) {
		t.Fatalf("call order mismatch: got %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call order mismatch at %d: got %v, want %v", i, calls, want)
		}
	}

	if d.Top() != 0 {
		t.Fatalf("dispatcher must return to the base frame, top=%d", d.Top())
	}
	if d.Depth() != 1 {
		t.Fatalf("P5: base frame depth must return to 1, got %d", d.Depth())
	}
}

// TestNonDelegatedNesting is spec.md §8 scenario 5.
func TestNonDelegatedNesting(t *testing.T) {
	var calls []string

	s1 := &handler.Set{
		StartSubMsg: func(any, handler.Field, *handler.Handlers) handler.Flow {
			calls = append(calls, "s1.startsubmsg")
			return handler.Continue
		},
		Value: func(any, handler.Field, handler.Value) handler.Flow {
			calls = append(calls, "s1.value")
			return handler.Continue
		},
		EndSubMsg: func(any) handler.Flow {
			calls = append(calls, "s1.endsubmsg")
			return handler.Continue
		},
	}

	d := dispatch.New()
	d.Reset(handler.Handlers{Set: s1})
	_ = d.StartMsg()

	if d.Depth() != 1 {
		t.Fatalf("initial depth must be 1, got %d", d.Depth())
	}

	flow, st := d.StartSubMsg("f")
	if !st.OK() || flow != handler.Continue {
		t.Fatalf("StartSubMsg: flow=%v st=%v", flow, st)
	}
	if d.Depth() != 2 {
		t.Fatalf("depth must transition 1->2, got %d", d.Depth())
	}

	d.Value("f", "v")

	if _, st := d.EndSubMsg(); !st.OK() {
		t.Fatalf("EndSubMsg: %v", st)
	}
	if d.Depth() != 1 {
		t.Fatalf("depth must transition 2->1, got %d", d.Depth())
	}

	want := []string{"s1.startsubmsg", "s1.value", "s1.endsubmsg"}
	if len(calls) != len(want) {
		t.Fatalf("call order mismatch: got %v, want %v", calls, want)
	}
}

// TestDelegateWithEmptyHandlersIsInvariant checks the checked invariant
// DELEGATE ⇔ outparam non-empty (spec.md §4.3).
func TestDelegateWithEmptyHandlersIsInvariant(t *testing.T) {
	s1 := &handler.Set{
		StartSubMsg: func(any, handler.Field, *handler.Handlers) handler.Flow {
			return handler.Delegate // out left empty
		},
	}
	d := dispatch.New()
	d.Reset(handler.Handlers{Set: s1})
	_ = d.StartMsg()

	_, st := d.StartSubMsg("f")
	if st.OK() {
		t.Fatalf("expected an invariant failure, got ok")
	}
	if st.Kind() != status.KindInvariant {
		t.Fatalf("want KindInvariant, got %v", st.Kind())
	}
}

// TestDepthBound enforces the MAX_NESTING hard error (spec.md §4.3,
// §9's DoS-mitigation rationale).
func TestDepthBound(t *testing.T) {
	var s *handler.Set
	s = &handler.Set{
		StartSubMsg: func(_ any, _ handler.Field, out *handler.Handlers) handler.Flow {
			*out = handler.Handlers{Set: s}
			return handler.Delegate
		},
	}
	d := dispatch.New()
	d.Reset(handler.Handlers{Set: s})
	_ = d.StartMsg()

	var st status.Status
	for i := 0; i < dispatch.MaxNesting+2; i++ {
		_, st = d.StartSubMsg("f")
		if !st.OK() {
			break
		}
	}
	if st.OK() {
		t.Fatalf("expected MAX_NESTING overflow to be surfaced before exceeding the bound")
	}
	if st.Kind() != status.KindMaxDepth {
		t.Fatalf("want KindMaxDepth, got %v", st.Kind())
	}
}

