// Package bytesio implements the byte-channel contract of spec.md §4.1
// and §4.2: a pull-style Source and a push-style Sink, each a small
// polymorphic object with bulk-string operations and a status/eof slot,
// decoupled from any concrete transport. Concrete transports live under
// adapters/.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package bytesio

// ByteString is the growable byte-string handle of spec.md §4.1: it may
// either own a copied buffer or alias memory belonging to a Source, so
// that zero-copy sources (memory-mapped, already-buffered) can hand back
// pointers instead of forcing a copy.
type ByteString struct {
	buf     []byte
	aliased bool
}

// Alias wraps b without copying. The caller must guarantee b outlives
// the ByteString, which is always true for the GetStr contract: the
// source promises its internal buffer stays valid until the caller's
// next read.
func Alias(b []byte) ByteString { return ByteString{buf: b, aliased: true} }

// Own takes ownership of b (no copy, but not marked as an alias of
// someone else's buffer — appends are safe).
func Own(b []byte) ByteString { return ByteString{buf: b} }

func (s *ByteString) Bytes() []byte  { return s.buf }
func (s *ByteString) Len() int       { return len(s.buf) }
func (s *ByteString) Aliased() bool  { return s.aliased }
func (s *ByteString) Reset()         { s.buf = s.buf[:0]; s.aliased = false }

// grow ensures s owns a mutable tail of at least n additional bytes,
// copying out of aliased storage first if necessary.
func (s *ByteString) grow(n int) {
	if s.aliased {
		cp := make([]byte, len(s.buf), len(s.buf)+n)
		copy(cp, s.buf)
		s.buf = cp
		s.aliased = false
		return
	}
	if cap(s.buf)-len(s.buf) < n {
		cp := make([]byte, len(s.buf), len(s.buf)+n)
		copy(cp, s.buf)
		s.buf = cp
	}
}

// append copies b onto the tail, converting out of aliased mode first.
func (s *ByteString) append(b []byte) {
	s.grow(len(b))
	s.buf = append(s.buf, b...)
}

// truncate resizes the (owned) buffer down to exactly n bytes.
func (s *ByteString) truncate(n int) {
	s.buf = s.buf[:n]
}
