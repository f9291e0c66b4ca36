/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package refcount

import "unsafe"

// Auditor is the tracked-ref diagnostic collaborator of spec.md §4.4
// ("Tracked refs (audit)"). It is decoupled from the core refcount
// operations: SetAuditor installs one, a nil Auditor (the default)
// disables auditing entirely with no change to observable behavior.
//
// The concrete implementation (package audit) is a separate component;
// this interface is the seam between them, the same shape the teacher
// corpus uses for stats.Tracker (ais/backend/common.go) — a narrow
// interface owned by the consumer, not the producer.
type Auditor interface {
	// TrackRef records that owner now holds a reference to target,
	// established at the call site named by op ("init", "ref", "ref2",
	// "donateref").
	TrackRef(owner, target unsafe.Pointer, op string)

	// UntrackRef removes a previously tracked reference. It is legal to
	// call this for a reference TrackRef never saw (e.g. Unref2 on an
	// edge that predates auditing) — implementations must tolerate it.
	UntrackRef(owner, target unsafe.Pointer)

	// Check reports whether owner currently holds a tracked reference to
	// target. Backs CheckRef, and Ref's double-ref assertion in debug
	// builds.
	Check(owner, target unsafe.Pointer) bool
}
