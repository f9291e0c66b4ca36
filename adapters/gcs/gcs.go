// Package gcs implements a bytesio.Source/Sink pair over Google Cloud
// Storage via cloud.google.com/go/storage. Unlike s3 and azure, GCS's
// ObjectHandle.NewWriter is already a push-style io.WriteCloser, so the
// Sink here needs no io.Pipe indirection.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/corepb/corepb/bytesio"
	"github.com/corepb/corepb/status"
)

// Config carries optional client options. CredentialsFile, when set, is
// passed through as option.WithCredentialsFile; an empty Config falls
// back to storage.NewClient's default application-credentials lookup.
type Config struct {
	CredentialsFile string
}

func (c Config) clientOpts() []option.ClientOption {
	if c.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.CredentialsFile)}
}

// Source streams a single GCS object.
type Source struct {
	bytesio.SourceBase
	r *storage.Reader
}

// NewSource opens bucket/object for reading. The caller must Close it.
func NewSource(ctx context.Context, cfg Config, bucket, object string) (*Source, status.Status) {
	client, err := storage.NewClient(ctx, cfg.clientOpts()...)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "gcs: client")
	}
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "gcs: open "+bucket+"/"+object)
	}
	return &Source{r: r}, status.OK()
}

func (s *Source) Close() error { return s.r.Close() }

func (s *Source) Read(dst []byte) int {
	n, err := s.r.Read(dst)
	if err == io.EOF {
		s.SetEOF()
		return n
	}
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "gcs: read"))
		return bytesio.ErrRead
	}
	return n
}

// GetStr always copies: a GCS reader has nothing to alias.
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

// Sink uploads a single GCS object.
type Sink struct {
	bytesio.SinkBase
	w *storage.Writer
}

// NewSink opens bucket/object for writing. Close must be called
// exactly once to commit the upload.
func NewSink(ctx context.Context, cfg Config, bucket, object string) (*Sink, status.Status) {
	client, err := storage.NewClient(ctx, cfg.clientOpts()...)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "gcs: client")
	}
	return &Sink{w: client.Bucket(bucket).Object(object).NewWriter(ctx)}, status.OK()
}

func (s *Sink) Write(src []byte) int {
	n, err := s.w.Write(src)
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "gcs: write"))
		return bytesio.ErrRead
	}
	return n
}

func (s *Sink) PutStr(bs *bytesio.ByteString) int {
	return s.Write(bs.Bytes())
}

// Close commits the upload.
func (s *Sink) Close() error { return s.w.Close() }

var (
	_ bytesio.Source = (*Source)(nil)
	_ bytesio.Sink   = (*Sink)(nil)
)
