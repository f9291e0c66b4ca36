// Package s3 implements a bytesio.Source/Sink pair over Amazon S3 via
// github.com/aws/aws-sdk-go-v2, its config loader, service/s3 client,
// and feature/s3/manager's multipart uploader, grounded on the
// teacher's ais/backend provider shape (one concrete ByteSource/Sink
// per remote object store, constructed from ambient credentials).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package s3

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/corepb/corepb/bytesio"
	"github.com/corepb/corepb/status"
)

func newClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// Source streams a single S3 object.
type Source struct {
	bytesio.SourceBase
	body io.ReadCloser
}

// NewSource opens bucket/key for reading. The caller must Close it.
func NewSource(ctx context.Context, bucket, key string) (*Source, status.Status) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "s3: client")
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "s3: get "+bucket+"/"+key)
	}
	return &Source{body: out.Body}, status.OK()
}

func (s *Source) Close() error { return s.body.Close() }

func (s *Source) Read(dst []byte) int {
	n, err := s.body.Read(dst)
	if err == io.EOF {
		s.SetEOF()
		return n
	}
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "s3: read"))
		return bytesio.ErrRead
	}
	return n
}

// GetStr always copies: an S3 response body stream has nothing to
// alias.
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

// Sink multipart-uploads a single S3 object, fed by an io.Pipe so the
// push-style Write contract can drive manager.Uploader's pull-style
// Body reader without buffering the whole object in memory.
type Sink struct {
	bytesio.SinkBase
	pw   *io.PipeWriter
	done chan error
}

// NewSink begins a multipart upload to bucket/key. Close must be
// called exactly once to finish the upload and observe its result.
func NewSink(ctx context.Context, bucket, key string) (*Sink, status.Status) {
	client, err := newClient(ctx)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "s3: client")
	}
	uploader := manager.NewUploader(client)
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		_, uerr := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   pr,
		})
		pr.CloseWithError(uerr)
		done <- uerr
	}()
	return &Sink{pw: pw, done: done}, status.OK()
}

func (s *Sink) Write(src []byte) int {
	n, err := s.pw.Write(src)
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "s3: write"))
		return bytesio.ErrRead
	}
	return n
}

func (s *Sink) PutStr(bs *bytesio.ByteString) int {
	return s.Write(bs.Bytes())
}

// Close finishes the multipart upload and reports its outcome.
func (s *Sink) Close() error {
	_ = s.pw.Close()
	return <-s.done
}

var (
	_ bytesio.Source = (*Source)(nil)
	_ bytesio.Sink   = (*Sink)(nil)
)
