// Package sideeffect runs best-effort fan-out tasks. Each task is issued
// independently: a failure is logged and swallowed, never propagated, and
// never blocks or rolls back a sibling. Delivery is at most once; a crash
// after the core write leaves the write durable and the fan-out unsent.
package sideeffect

import (
	"sync"

	"go.uber.org/zap"
)

// Dispatcher spawns fan-out tasks on their own goroutines and logs their
// failures.
type Dispatcher struct {
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func NewDispatcher(log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{log: log}
}

// Go runs fn asynchronously. Errors and panics are logged under name and
// dropped.
func (d *Dispatcher) Go(name string, fn func() error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Errorw("side effect panicked", "task", name, "panic", r)
			}
		}()
		if err := fn(); err != nil {
			d.log.Warnw("side effect failed", "task", name, "error", err)
		}
	}()
}

// Wait blocks until all dispatched tasks have finished. Used on shutdown
// and by tests that need deterministic fan-out completion.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
