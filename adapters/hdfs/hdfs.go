// Package hdfs implements a bytesio.Source over HDFS via
// github.com/colinmarc/hdfs/v2. Source-only, per the domain stack: HDFS
// write support needs a NameNode lease-renewal loop this module has no
// use for, and no retrieved corpus file demonstrates it.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package hdfs

import (
	"io"

	"github.com/colinmarc/hdfs/v2"

	"github.com/corepb/corepb/bytesio"
	"github.com/corepb/corepb/status"
)

// Source streams a single HDFS file.
type Source struct {
	bytesio.SourceBase
	client *hdfs.Client
	f      *hdfs.FileReader
}

// NewSource connects to namenode and opens path for reading. The
// caller must Close it.
func NewSource(namenode, path string) (*Source, status.Status) {
	client, err := hdfs.New(namenode)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "hdfs: connect "+namenode)
	}
	f, err := client.Open(path)
	if err != nil {
		client.Close()
		return nil, status.Wrap(status.KindIO, err, "hdfs: open "+path)
	}
	return &Source{client: client, f: f}, status.OK()
}

func (s *Source) Close() error {
	ferr := s.f.Close()
	cerr := s.client.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

func (s *Source) Read(dst []byte) int {
	n, err := s.f.Read(dst)
	if err == io.EOF {
		s.SetEOF()
		return n
	}
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "hdfs: read"))
		return bytesio.ErrRead
	}
	return n
}

// GetStr always copies: an HDFS FileReader has nothing to alias.
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

var _ bytesio.Source = (*Source)(nil)
