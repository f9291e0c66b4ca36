/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package bytesio

import "github.com/corepb/corepb/status"

// Sink is the byte-sink contract of spec.md §4.2, dual of Source.
type Sink interface {
	// Write accepts up to len(src) bytes, returning the number actually
	// accepted or ErrRead (reused as the sink's negative error sentinel)
	// on failure.
	Write(src []byte) (n int)

	// PutStr writes an entire ByteString, letting sinks that can take
	// ownership of its buffer do so instead of copying.
	PutStr(bs *ByteString) (n int)

	Status() status.Status
}

// WriteFull is the sink-side dual of GetFullStr: it loops Write until
// every byte of src has been accepted or an error occurs.
func WriteFull(snk Sink, src []byte) (ok bool, out status.Status) {
	for len(src) > 0 {
		n := snk.Write(src)
		if n < 0 {
			return false, snk.Status()
		}
		src = src[n:]
	}
	return true, status.OK()
}
