// Package azure implements a bytesio.Source/Sink pair over Azure Blob
// Storage, adapted directly from the teacher's ais/backend/azure.go:
// the same github.com/Azure/azure-sdk-for-go/sdk/azcore +
// .../sdk/storage/azblob shared-key client construction, generalized
// from a full BackendProvider down to the narrower byte-channel
// contract this module needs.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package azure

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/corepb/corepb/bytesio"
	"github.com/corepb/corepb/status"
)

// Config names the account and container a Source/Sink operates
// against, mirroring azAccNameEnvVar/azAccKeyEnvVar from the teacher's
// adapter but supplied explicitly rather than read from the process
// environment, since this package has no daemon-wide config to hook
// into.
type Config struct {
	AccountURL string
	Account    string
	Key        string
	Container  string
}

func newClient(cfg Config) (*azblob.Client, error) {
	creds, err := azblob.NewSharedKeyCredential(cfg.Account, cfg.Key)
	if err != nil {
		return nil, err
	}
	return azblob.NewClientWithSharedKeyCredential(cfg.AccountURL, creds, nil)
}

// Source streams a single blob's contents.
type Source struct {
	bytesio.SourceBase
	body io.ReadCloser
}

// NewSource opens a download stream for blobName. The caller must
// Close it.
func NewSource(ctx context.Context, cfg Config, blobName string) (*Source, status.Status) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "azure: client")
	}
	resp, err := client.DownloadStream(ctx, cfg.Container, blobName, nil)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "azure: download "+blobName)
	}
	return &Source{body: resp.Body}, status.OK()
}

func (s *Source) Close() error { return s.body.Close() }

func (s *Source) Read(dst []byte) int {
	n, err := s.body.Read(dst)
	if err == io.EOF {
		s.SetEOF()
		return n
	}
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "azure: read"))
		return bytesio.ErrRead
	}
	return n
}

// GetStr always copies: a blob download stream has no backing memory a
// zero-copy alias could point into.
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

// Sink uploads a single blob, fed by an io.Pipe so that the push-style
// bytesio.Sink.Write contract can drive azblob's pull-style
// UploadStream without buffering the whole object in memory.
type Sink struct {
	bytesio.SinkBase
	pw   *io.PipeWriter
	done chan error
}

// NewSink begins an upload stream for blobName. Close must be called
// exactly once to finish the upload and observe its result.
func NewSink(ctx context.Context, cfg Config, blobName string) (*Sink, status.Status) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "azure: client")
	}
	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		_, uerr := client.UploadStream(ctx, cfg.Container, blobName, pr, nil)
		pr.CloseWithError(uerr)
		done <- uerr
	}()
	return &Sink{pw: pw, done: done}, status.OK()
}

func (s *Sink) Write(src []byte) int {
	n, err := s.pw.Write(src)
	if err != nil {
		s.SetStatus(status.Wrap(status.KindIO, err, "azure: write"))
		return bytesio.ErrRead
	}
	return n
}

func (s *Sink) PutStr(bs *bytesio.ByteString) int {
	return s.Write(bs.Bytes())
}

// Close finishes the upload and reports its outcome.
func (s *Sink) Close() error {
	_ = s.pw.Close()
	return <-s.done
}

var (
	_ bytesio.Source = (*Source)(nil)
	_ bytesio.Sink   = (*Sink)(nil)
)
