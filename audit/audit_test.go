/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package audit_test

import (
	"unsafe"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/corepb/corepb/audit"
)

var _ = Describe("Store", func() {
	var (
		s      *audit.Store
		owner  int
		target int
	)

	BeforeEach(func() {
		var err error
		s, err = audit.NewStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
	})

	It("reports untracked pairs as not checked", func() {
		Expect(s.Check(unsafe.Pointer(&owner), unsafe.Pointer(&target))).To(BeFalse())
	})

	It("tracks and then forgets a reference", func() {
		s.TrackRef(unsafe.Pointer(&owner), unsafe.Pointer(&target), "ref")
		Expect(s.Check(unsafe.Pointer(&owner), unsafe.Pointer(&target))).To(BeTrue())

		s.UntrackRef(unsafe.Pointer(&owner), unsafe.Pointer(&target))
		Expect(s.Check(unsafe.Pointer(&owner), unsafe.Pointer(&target))).To(BeFalse())
	})

	It("tolerates untracking a pair it never saw", func() {
		Expect(func() {
			s.UntrackRef(unsafe.Pointer(&owner), unsafe.Pointer(&target))
		}).NotTo(Panic())
	})

	It("exports a signed snapshot containing tracked records", func() {
		s.TrackRef(unsafe.Pointer(&owner), unsafe.Pointer(&target), "ref")
		token, err := s.ExportSigned([]byte("test-signing-key"))
		Expect(err).NotTo(HaveOccurred())
		Expect(token).NotTo(BeEmpty())
	})
})
