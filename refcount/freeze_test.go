/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package refcount_test

import (
	"testing"

	"github.com/corepb/corepb/internal/tassert"
	"github.com/corepb/corepb/refcount"
)

// TestScenario3FreezeSplitsGroup is spec.md §8 scenario 3: P, Q form a
// 2-cycle via ref2, and Q also ref2s R with no back-edge. Freezing with
// roots={P, R} must produce two SCCs, {P,Q} and {R}; dropping the
// external ref on R frees R alone.
func TestScenario3FreezeSplitsGroup(t *testing.T) {
	var freedP, freedQ, freedR bool
	p := newNode("p", &freedP)
	q := newNode("q", &freedQ)
	r := newNode("r", &freedR)

	po, qo, ro := owner(), owner(), owner()
	refcount.Init(p, po)
	refcount.Init(q, qo)
	refcount.Init(r, ro)

	p.children = []*node{q}
	q.children = []*node{p, r}
	r.children = nil

	tassert.CheckOK(t, refcount.Freeze([]refcount.Object{p, r}, 64), "freeze must succeed")
	tassert.Fatal(t, p.IsFrozen() && q.IsFrozen() && r.IsFrozen(),
		"freeze must mark every reachable object frozen")

	refcount.Unref(r, ro)
	tassert.Fatal(t, freedR, "dropping R's sole external ref must free R")
	tassert.Fatal(t, !freedP && !freedQ, "P and Q's SCC must be unaffected by R's collection")

	refcount.Unref(p, po)
	tassert.Fatal(t, !freedP && !freedQ,
		"P and Q's SCC must survive while Q's own ref1 is outstanding")
	refcount.Unref(q, qo)
	tassert.Fatal(t, freedP && freedQ, "dropping the last ref1 in the {P,Q} SCC must free both")
}

// TestFreezeMaxDepth exercises the DFS-depth abort path (spec.md §4.4).
func TestFreezeMaxDepth(t *testing.T) {
	const chainLen = 8
	nodes := make([]*node, chainLen)
	freed := make([]bool, chainLen)
	o := owner()
	for i := range nodes {
		nodes[i] = newNode("n", &freed[i])
		refcount.Init(nodes[i], o)
	}
	for i := 0; i < chainLen-1; i++ {
		nodes[i].children = []*node{nodes[i+1]}
		tassert.CheckOK(t, refcount.Ref2(nodes[i+1], nodes[i]), "ref2 must succeed")
	}

	st := refcount.Freeze([]refcount.Object{nodes[0]}, 3)
	tassert.CheckFailed(t, st, "expected freeze to abort once DFS depth exceeds maxdepth")
	tassert.Fatal(t, !nodes[0].IsFrozen(), "a failed freeze must leave the graph observationally unchanged")
}
