// Package lz4 decorates an existing bytesio.Source or bytesio.Sink with
// transparent LZ4 framing via github.com/pierrec/lz4/v3, grounded on the
// teacher's own lz4Writer/lz4.NewReader usage for archive member
// compression. Like adapters/file, it never aliases: a compressed
// stream has no backing memory a GetStr call could point into, so
// GetStr always copies.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package lz4

import (
	"io"

	"github.com/pierrec/lz4/v3"

	"github.com/corepb/corepb/bytesio"
	"github.com/corepb/corepb/status"
)

// srcReader adapts a bytesio.Source to io.Reader so the stdlib-shaped
// lz4.Reader can sit on top of it.
type srcReader struct{ src bytesio.Source }

func (r srcReader) Read(p []byte) (int, error) {
	n := r.src.Read(p)
	if n < 0 {
		err := r.src.Status().Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	if n == 0 && r.src.EOF() {
		return 0, io.EOF
	}
	return n, nil
}

// Source decompresses an LZ4 stream read from an underlying
// bytesio.Source.
type Source struct {
	bytesio.SourceBase
	under bytesio.Source
	zr    *lz4.Reader
}

// NewSource wraps under, decoding the LZ4 frame it produces.
func NewSource(under bytesio.Source) *Source {
	return &Source{under: under, zr: lz4.NewReader(srcReader{under})}
}

func (s *Source) Read(dst []byte) int {
	n, err := s.zr.Read(dst)
	if err == io.EOF {
		s.SetEOF()
		return n
	}
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "lz4: decompress"))
		return bytesio.ErrRead
	}
	return n
}

func (s *Source) GetStr(bs *bytesio.ByteString, max int) bool {
	buf := make([]byte, 0, bytesio.IMPLChunk)
	chunk := make([]byte, bytesio.IMPLChunk)
	for len(buf) < max && !s.EOF() {
		n := s.Read(chunk)
		if n < 0 {
			return false
		}
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
	}
	if len(buf) > max {
		buf = buf[:max]
	}
	*bs = bytesio.Own(buf)
	return true
}

// sinkWriter adapts a bytesio.Sink to io.Writer.
type sinkWriter struct{ snk bytesio.Sink }

func (w sinkWriter) Write(p []byte) (int, error) {
	ok, st := bytesio.WriteFull(w.snk, p)
	if !ok {
		return 0, st.Err()
	}
	return len(p), nil
}

// Sink compresses writes into an LZ4 stream on an underlying
// bytesio.Sink. Close must be called to flush the final LZ4 frame.
type Sink struct {
	bytesio.SinkBase
	under bytesio.Sink
	zw    *lz4.Writer
}

func NewSink(under bytesio.Sink) *Sink {
	return &Sink{under: under, zw: lz4.NewWriter(sinkWriter{under})}
}

func (s *Sink) Write(src []byte) int {
	n, err := s.zw.Write(src)
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "lz4: compress"))
		return bytesio.ErrRead
	}
	return n
}

func (s *Sink) PutStr(bs *bytesio.ByteString) int {
	return s.Write(bs.Bytes())
}

// Close flushes the trailing LZ4 frame bytes into the underlying sink.
func (s *Sink) Close() error {
	return s.zw.Close()
}

var (
	_ bytesio.Source = (*Source)(nil)
	_ bytesio.Sink   = (*Sink)(nil)
)
