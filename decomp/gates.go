package decomp

import "sync"

// gates holds the four condition variables spec §4.8 names, all guarded by
// one mutex (the spec text treats them as logically distinct wait queues
// over shared worker state, which is exactly what four *sync.Cond sharing
// one sync.Mutex gives us).
type gates struct {
	mu           sync.Mutex
	pipeReady    *sync.Cond
	pipeClose    *sync.Cond
	pipeZstream  *sync.Cond
	partReady    *sync.Cond
	initialized  bool
}

func (g *gates) init() {
	if g.initialized {
		return
	}
	g.pipeReady = sync.NewCond(&g.mu)
	g.pipeClose = sync.NewCond(&g.mu)
	g.pipeZstream = sync.NewCond(&g.mu)
	g.partReady = sync.NewCond(&g.mu)
	g.initialized = true
}
