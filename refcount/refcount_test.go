/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package refcount_test

import (
	"testing"
	"unsafe"

	"github.com/corepb/corepb/internal/tassert"
	"github.com/corepb/corepb/refcount"
)

// node is a minimal refcounted test fixture: it embeds refcount.Base and
// holds pointers to other nodes via ref2, exactly the shape spec.md §6
// expects a real message/field-descriptor type to have.
type node struct {
	refcount.Base
	name     string
	children []*node
	freed    *bool
}

func newNode(name string, freed *bool) *node {
	*freed = false
	return &node{name: name, freed: freed}
}

func (n *node) Visit(emit func(refcount.Object)) {
	for _, c := range n.children {
		emit(c)
	}
}

func (n *node) Free() { *n.freed = true }

func owner() refcount.Owner {
	var x int
	return unsafe.Pointer(&x)
}

func TestInitStartsWithOneRef(t *testing.T) {
	var freed bool
	n := newNode("a", &freed)
	refcount.Init(n, owner())
	tassert.Fatal(t, !freed, "freshly initialized node must not be freed")
}

func TestUnrefLastFrees(t *testing.T) {
	var freed bool
	n := newNode("a", &freed)
	o := owner()
	refcount.Init(n, o)
	refcount.Unref(n, o)
	tassert.Fatal(t, freed, "dropping the sole ref1 must free the object")
}

func TestRefUnrefBalanced(t *testing.T) {
	var freed bool
	n := newNode("a", &freed)
	o1, o2 := owner(), owner()
	refcount.Init(n, o1)
	refcount.Ref(n, o2)
	refcount.Unref(n, o1)
	tassert.Fatal(t, !freed, "object must survive while o2's ref1 is outstanding")
	refcount.Unref(n, o2)
	tassert.Fatal(t, freed, "dropping the last ref1 must free the object")
}

// TestScenario1ChainedRef2 is spec.md §8 scenario 1: a chain A<-B<-C
// joined entirely by ref2 merges into one group; dropping the sole
// external ref1 (held on C) frees all three.
func TestScenario1ChainedRef2(t *testing.T) {
	var freedA, freedB, freedC bool
	a := newNode("a", &freedA)
	b := newNode("b", &freedB)
	c := newNode("c", &freedC)

	// Each object is born with one ref1 held by a shared pool owner (a
	// pool-style creator ref), mirroring spec.md §3's "born with... one
	// ref1 owned by the initializing caller" — the pool releases its
	// holds below.
	pool := owner()
	refcount.Init(a, pool)
	refcount.Init(b, pool)
	refcount.Init(c, pool)

	a.children = nil
	b.children = []*node{a}
	c.children = []*node{b}

	tassert.CheckOK(t, refcount.Ref2(a, b), "ref2(a<-b) must succeed")
	tassert.CheckOK(t, refcount.Ref2(b, c), "ref2(b<-c) must succeed")

	// Release the pool's holds on a and b; only c's external ref1
	// remains (scenario 1: "External ref1 on C only").
	refcount.Unref(a, pool)
	refcount.Unref(b, pool)
	tassert.Fatal(t, !freedA && !freedB && !freedC,
		"group must survive while C's ref1 is outstanding")

	refcount.Unref(c, pool)
	tassert.Fatal(t, freedA && freedB && freedC,
		"dropping the sole external ref must free the whole merged group: a=%v b=%v c=%v",
		freedA, freedB, freedC)
}

// TestRef2ForbiddenOnFrozen checks the invariant guarding spec.md §4.4's
// "ref2 is forbidden [on frozen graphs]".
func TestRef2ForbiddenOnFrozen(t *testing.T) {
	var freedA, freedB bool
	a := newNode("a", &freedA)
	b := newNode("b", &freedB)
	o := owner()
	refcount.Init(a, o)
	refcount.Init(b, o)

	tassert.CheckOK(t, refcount.Freeze([]refcount.Object{a}, 64), "freeze must succeed")
	tassert.CheckFailed(t, refcount.Ref2(a, b), "ref2 on a frozen object must fail")
}

func TestCheckRefWithoutAuditorIsFalse(t *testing.T) {
	var freed bool
	n := newNode("a", &freed)
	o := owner()
	refcount.Init(n, o)
	tassert.Fatal(t, !refcount.CheckRef(n, o), "CheckRef must report false with no auditor installed")
}
