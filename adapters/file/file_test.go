/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package file_test

import (
	"path/filepath"
	"testing"

	"github.com/corepb/corepb/adapters/file"
	"github.com/corepb/corepb/bytesio"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obj")
	want := make([]byte, 3*bytesio.IMPLChunk+17)
	for i := range want {
		want[i] = byte(i)
	}

	sink, st := file.CreateSink(path)
	if !st.OK() {
		t.Fatalf("CreateSink: %v", st)
	}
	if ok, st := bytesio.WriteFull(sink, want); !ok {
		t.Fatalf("WriteFull: %v", st)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close sink: %v", err)
	}

	src, st := file.OpenSource(path)
	if !st.OK() {
		t.Fatalf("OpenSource: %v", st)
	}
	defer src.Close()

	var bs bytesio.ByteString
	ok, st := bytesio.GetFullStr(src, &bs)
	if !ok {
		t.Fatalf("GetFullStr: %v", st)
	}
	if len(bs.Bytes()) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(bs.Bytes()), len(want))
	}
	for i := range want {
		if bs.Bytes()[i] != want[i] {
			t.Fatalf("byte mismatch at %d: got %d, want %d", i, bs.Bytes()[i], want[i])
		}
	}
}

func TestOpenSourceMissingFile(t *testing.T) {
	_, st := file.OpenSource(filepath.Join(t.TempDir(), "does-not-exist"))
	if st.OK() {
		t.Fatalf("expected an error opening a missing file")
	}
}
