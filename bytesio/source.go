/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package bytesio

import "github.com/corepb/corepb/status"

// ErrRead is the sentinel spec.md §4.1 specifies: "any negative value"
// signals an error from Read, and callers must not interpret magnitude.
const ErrRead = -1

// IMPLChunk is the chunk size GetFullStr reads in once aliasing is no
// longer possible (spec.md §4.1: "4096 is the reference tuning").
const IMPLChunk = 4096

// Source is the byte-source contract of spec.md §4.1. Read and GetStr
// are the two primitive operations a concrete transport implements;
// GetFullStr (below) is built on top of them and needs no
// transport-specific support.
type Source interface {
	// Read fills dst and returns the number of bytes written, which may
	// legitimately be 0 if not at eof (no progress signals nothing by
	// itself). A negative return is ErrRead; query Status() for detail.
	Read(dst []byte) (n int)

	// GetStr fills bs with up to max bytes, aliasing the source's
	// internal buffer when possible instead of copying. Returns false
	// on error (see Status()); EOF() is independent of the return value.
	GetStr(bs *ByteString, max int) (ok bool)

	// Status returns the most recently observed error, if any.
	Status() status.Status

	// EOF reports whether the source has been exhausted.
	EOF() bool
}

// GetFullStr is the convenience described in spec.md §4.1: it first
// attempts a maximal GetStr so that zero-copy sources can alias their
// entire buffer, and only falls back to copying IMPLChunk-sized reads
// once eof has not yet been reached by that first call.
func GetFullStr(src Source, bs *ByteString) (ok bool, out status.Status) {
	bs.Reset()
	if !src.GetStr(bs, int(^uint(0)>>1)) {
		return false, src.Status()
	}
	if src.EOF() {
		return true, status.OK()
	}

	// Fall back to copying reads: bs now holds whatever the aliasing
	// attempt produced (possibly nothing), and we own it from here on
	// since we're about to append to it.
	tail := make([]byte, IMPLChunk)
	for !src.EOF() {
		n := src.Read(tail)
		if n < 0 {
			return false, src.Status()
		}
		if n > 0 {
			bs.append(tail[:n])
		}
	}
	return true, status.OK()
}
