// Package dirwalk discovers a tree of files with godirwalk (chosen by
// the teacher corpus over filepath.Walk for its lower allocation rate)
// and hands them out as bytesio.Source adapters, opened concurrently by
// a golang.org/x/sync/errgroup-bounded worker pool.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package dirwalk

import (
	"context"

	"github.com/karrick/godirwalk"
	"golang.org/x/sync/errgroup"

	"github.com/corepb/corepb/adapters/file"
	"github.com/corepb/corepb/internal/cos"
	"github.com/corepb/corepb/status"
)

// Pool is the set of regular files discovered under a root directory.
// Stop lets a caller abandon an in-progress Open early, independent of
// context cancellation — the same close-once shutdown-channel idiom the
// teacher corpus's long-running collectors use (transport/collect.go's
// gc.stopCh).
type Pool struct {
	paths []string
	stop  cos.StopCh
}

// NewPool walks root and records every regular file found. Symlinks
// and directories are skipped.
func NewPool(root string) (*Pool, status.Status) {
	var paths []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsRegular() {
				paths = append(paths, osPathname)
			}
			return nil
		},
	})
	if err != nil {
		return nil, status.Wrap(status.KindIO, err, "dirwalk: walk "+root)
	}
	return &Pool{paths: paths}, status.OK()
}

// Len reports how many files the walk discovered.
func (p *Pool) Len() int { return len(p.paths) }

// Paths returns the discovered file paths, in walk order.
func (p *Pool) Paths() []string { return p.paths }

// Stop abandons any Open currently in flight; already-yielded sources
// remain valid and must still be Closed by their receiver.
func (p *Pool) Stop() { p.stop.Close() }

// Open opens every discovered file concurrently, at most concurrency at
// a time (via errgroup.Group.SetLimit), streaming the resulting sources
// on the returned channel. A file that fails to open is skipped, not
// fatal: its error is accumulated into errs rather than cancelling the
// remaining opens — errgroup's own fan-out/fan-in bounds concurrency,
// but its first-error-wins semantics would otherwise abort a large walk
// over one unreadable file. errs is only safe to inspect once out has
// been drained and closed.
func (p *Pool) Open(ctx context.Context, concurrency int) (out <-chan *file.Source, errs *cos.Errs) {
	ch := make(chan *file.Source)
	acc := &cos.Errs{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range p.paths {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			case <-p.stop.Listen():
				return nil
			default:
			}

			src, st := file.OpenSource(path)
			if !st.OK() {
				acc.Add(st.Err())
				return nil
			}
			select {
			case ch <- src:
			case <-gctx.Done():
				src.Close()
			case <-p.stop.Listen():
				src.Close()
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(ch)
	}()
	return ch, acc
}
