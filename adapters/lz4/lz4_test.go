/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package lz4_test

import (
	"bytes"
	"testing"

	"github.com/corepb/corepb/adapters/lz4"
	"github.com/corepb/corepb/adapters/mem"
	"github.com/corepb/corepb/bytesio"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	want := bytes.Repeat([]byte("corepb-lz4-round-trip "), 500)

	under := mem.NewSink()
	zw := lz4.NewSink(under)
	if ok, st := bytesio.WriteFull(zw, want); !ok {
		t.Fatalf("WriteFull: %v", st)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	zr := lz4.NewSource(mem.NewSource(under.Buf))
	var bs bytesio.ByteString
	ok, st := bytesio.GetFullStr(zr, &bs)
	if !ok {
		t.Fatalf("GetFullStr: %v", st)
	}
	if !bytes.Equal(bs.Bytes(), want) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(bs.Bytes()), len(want))
	}
}
