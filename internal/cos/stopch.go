/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import "sync"

// StopCh is the close-once shutdown channel used throughout the teacher
// corpus's long-running collectors (see transport/collect.go's gc.stopCh).
type StopCh struct {
	ch     chan struct{}
	once   sync.Once
	initMu sync.Mutex
}

func (sc *StopCh) init() {
	sc.initMu.Lock()
	if sc.ch == nil {
		sc.ch = make(chan struct{})
	}
	sc.initMu.Unlock()
}

func (sc *StopCh) Listen() <-chan struct{} {
	sc.init()
	return sc.ch
}

func (sc *StopCh) Close() {
	sc.init()
	sc.once.Do(func() { close(sc.ch) })
}
