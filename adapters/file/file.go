// Package file implements a bytesio.Source/Sink pair backed by the
// local filesystem, buffered through bufio the way the teacher corpus
// wraps its own os.File handles (fs package's buffered readers/writers)
// rather than issuing a syscall per Read/Write.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package file

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/corepb/corepb/bytesio"
	"github.com/corepb/corepb/status"
)

// Source reads a single file, bufio-buffered. GetStr cannot alias an
// os.File's contents (there is no backing memory to point into), so it
// always copies into bs, same as any non-memory-mapped transport.
type Source struct {
	bytesio.SourceBase
	f  *os.File
	br *bufio.Reader
}

// OpenSource opens path for reading. The caller must Close it.
func OpenSource(path string) (*Source, status.Status) {
	f, err := os.Open(path)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "file: open source")
	}
	return &Source{f: f, br: bufio.NewReaderSize(f, bytesio.IMPLChunk)}, status.OK()
}

func (s *Source) Close() error { return s.f.Close() }

func (s *Source) Read(dst []byte) int {
	n, err := s.br.Read(dst)
	if err != nil {
		if err == io.EOF {
			s.SetEOF()
		} else {
			s.SetStatus(status.Wrap(status.KindIO, err, "file: read"))
			return bytesio.ErrRead
		}
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

// Sink writes to a single file, bufio-buffered and flushed on Close.
type Sink struct {
	bytesio.SinkBase
	f  *os.File
	bw *bufio.Writer
}

// CreateSink truncates (or creates) path for writing. The caller must
// Close it to flush the final buffered bytes.
func CreateSink(path string) (*Sink, status.Status) {
	f, err := os.Create(path)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "file: create sink")
	}
	return &Sink{f: f, bw: bufio.NewWriterSize(f, bytesio.IMPLChunk)}, status.OK()
}

func (s *Sink) Close() error {
	if err := s.bw.Flush(); err != nil {
		return errors.Wrap(err, "file: flush sink")
	}
	return s.f.Close()
}

func (s *Sink) Write(src []byte) int {
	n, err := s.bw.Write(src)
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "file: write"))
		return bytesio.ErrRead
	}
	return n
}

func (s *Sink) PutStr(bs *bytesio.ByteString) int {
	return s.Write(bs.Bytes())
}

var (
	_ bytesio.Source = (*Source)(nil)
	_ bytesio.Sink   = (*Sink)(nil)
)
