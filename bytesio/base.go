/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package bytesio

import "github.com/corepb/corepb/status"

// SourceBase and SinkBase hold the status/eof slot every concrete
// Source/Sink owns per spec.md §3 ("each owns: ... a status, and an
// end-of-stream boolean"); adapters embed them instead of re-deriving
// the bookkeeping.
type SourceBase struct {
	st  status.Status
	eof bool
}

func (b *SourceBase) Status() status.Status { return b.st }
func (b *SourceBase) EOF() bool             { return b.eof }

func (b *SourceBase) SetStatus(st status.Status) { b.st = st }
func (b *SourceBase) SetEOF()                    { b.eof = true }

type SinkBase struct {
	st status.Status
}

func (b *SinkBase) Status() status.Status      { return b.st }
func (b *SinkBase) SetStatus(st status.Status) { b.st = st }
