// Package mem implements an in-memory bytesio.Source/Sink pair that
// always aliases on GetStr — the baseline reference collaborator used by
// corepb's own core tests (spec.md §8 scenario 6 is exactly this
// adapter's behavior).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package mem

import (
	"github.com/corepb/corepb/bytesio"
)

// Source reads out of a fixed in-memory buffer.
type Source struct {
	bytesio.SourceBase
	buf []byte
	off int
}

func NewSource(buf []byte) *Source { return &Source{buf: buf} }

func (s *Source) Read(dst []byte) int {
	if s.off >= len(s.buf) {
		s.SetEOF()
		return 0
	}
	n := copy(dst, s.buf[s.off:])
	s.off += n
	if s.off >= len(s.buf) {
		s.SetEOF()
	}
	return n
}

// GetStr always aliases the remaining buffer in a single call, up to
// max bytes, which is the zero-copy behavior spec.md §4.1 calls out as
// the entire reason GetStr exists.
func (s *Source) GetStr(bs *bytesio.ByteString, max int) bool {
	if s.off >= len(s.buf) {
		s.SetEOF()
		*bs = bytesio.Alias(nil)
		return true
	}
	end := len(s.buf)
	if max < end-s.off {
		end = s.off + max
	}
	*bs = bytesio.Alias(s.buf[s.off:end])
	s.off = end
	if s.off >= len(s.buf) {
		s.SetEOF()
	}
	return true
}

// Sink appends into a growable in-memory buffer.
type Sink struct {
	bytesio.SinkBase
	Buf []byte
}

func NewSink() *Sink { return &Sink{} }

func (s *Sink) Write(src []byte) int {
	s.Buf = append(s.Buf, src...)
	return len(src)
}

func (s *Sink) PutStr(bs *bytesio.ByteString) int {
	n := bs.Len()
	s.Buf = append(s.Buf, bs.Bytes()...)
	return n
}

var _ bytesio.Source = (*Source)(nil)
var _ bytesio.Sink = (*Sink)(nil)
