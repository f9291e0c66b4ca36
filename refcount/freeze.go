/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package refcount

import (
	"github.com/corepb/corepb/internal/debug"
	"github.com/corepb/corepb/internal/nlog"
	"github.com/corepb/corepb/status"
)

// maxReachableObjects bounds a single freeze call, surfacing
// KindTooManyObjs rather than letting a pathological graph run
// unbounded (spec.md §4.4 "freeze(roots, n, out_status, maxdepth)",
// which puts this threshold at 2^31 objects).
const maxReachableObjects = 1 << 31

// workItem is one explicit call frame of the non-recursive Tarjan walk.
// neighbors is materialized once, by calling Visit exactly when the
// object is first discovered, so the DFS can pause and resume between
// children without needing Visit itself to be resumable.
type workItem struct {
	obj       *Base
	neighbors []*Base
	next      int
}

// Freeze is the one-way mutable -> frozen transition of spec.md §4.4.
// It computes the exact strongly connected components reachable from
// roots via ref2 edges (an iterative, non-recursive Tarjan's algorithm,
// so freeze depth is bounded by maxDepth rather than the Go call
// stack), then, having touched nothing yet, atomically repartitions
// every discovered object into its SCC's new group and marks it frozen.
//
// Because no object's group/next/frozen fields are written until SCC
// computation has fully succeeded, a failing freeze (KindMaxDepth or
// KindTooManyObjs) leaves the graph observationally unchanged — the
// transactional requirement of spec.md §4.4 falls out of "compute
// first, mutate second" rather than needing an explicit undo log.
func Freeze(roots []Object, maxDepth int) status.Status {
	globalLock.Lock()
	defer globalLock.Unlock()

	sccs, st := tarjanSCCs(roots, maxDepth)
	if !st.OK() {
		return st
	}

	for _, scc := range sccs {
		newGrp := &group{}
		var sum int32
		for _, b := range scc {
			sum += b.individualCount
		}
		newGrp.count.Store(sum)
		for i, b := range scc {
			b.grp = newGrp
			b.next = scc[(i+1)%len(scc)]
			b.frozen.Store(true)
		}
		if nlog.Verbose() {
			nlog.Infof("refcount: froze SCC of size %d into group %x (count=%d)",
				len(scc), groupID(newGrp), sum)
		}
	}
	return status.OK()
}

// tarjanSCCs walks the graph reachable from roots via Visit and returns
// its strongly connected components, each as a slice of *Base in an
// arbitrary order within the SCC. Grounded on the classic iterative
// (explicit-stack) reformulation of Tarjan's algorithm; the teacher
// corpus has no direct analog, so this is built from first principles
// per spec.md §4.4's "index/lowlink/onstack bookkeeping" prescription.
func tarjanSCCs(roots []Object, maxDepth int) ([][]*Base, status.Status) {
	index := make(map[*Base]int)
	low := make(map[*Base]int)
	onStack := make(map[*Base]bool)
	var tstack []*Base // the Tarjan stack (not the DFS work stack)
	var work []workItem
	var sccs [][]*Base
	nextIndex := 0
	reachable := 0

	discover := func(b *Base) status.Status {
		reachable++
		if reachable > maxReachableObjects {
			return status.Errorf(status.KindTooManyObjs,
				"freeze: reachable object count exceeds %d", maxReachableObjects)
		}
		index[b] = nextIndex
		low[b] = nextIndex
		nextIndex++
		tstack = append(tstack, b)
		onStack[b] = true

		var neighbors []*Base
		b.self.Visit(func(o Object) { neighbors = append(neighbors, o.base()) })
		work = append(work, workItem{obj: b, neighbors: neighbors})
		return status.OK()
	}

	for _, root := range roots {
		rb := root.base()
		if rb.IsFrozen() {
			return nil, status.Errorf(status.KindInvariant, "freeze: root is already frozen")
		}
		if _, seen := index[rb]; seen {
			continue
		}
		if st := discover(rb); !st.OK() {
			return nil, st
		}

		for len(work) > 0 {
			if len(work) > maxDepth {
				return nil, status.Errorf(status.KindMaxDepth,
					"freeze: DFS depth exceeds maxdepth=%d", maxDepth)
			}
			top := &work[len(work)-1]
			if top.next < len(top.neighbors) {
				w := top.neighbors[top.next]
				top.next++
				if w.IsFrozen() {
					return nil, status.Errorf(status.KindInvariant,
						"freeze: reachable object is already frozen")
				}
				if _, seen := index[w]; !seen {
					if st := discover(w); !st.OK() {
						return nil, st
					}
					continue
				}
				if onStack[w] && index[w] < low[top.obj] {
					low[top.obj] = index[w]
				}
				continue
			}

			v := top.obj
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if low[v] < low[parent.obj] {
					low[parent.obj] = low[v]
				}
			}
			if low[v] == index[v] {
				var scc []*Base
				for {
					n := len(tstack) - 1
					w := tstack[n]
					tstack = tstack[:n]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}

	debug.Assert(len(tstack) == 0, "freeze: Tarjan stack not empty at completion")
	return sccs, status.OK()
}
