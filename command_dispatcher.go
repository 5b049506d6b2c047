// command_dispatcher.go - Serial command delivery from all transports

package main

import (
	"sync"
	"sync/atomic"
)

const DEFAULT_COMMAND_QUEUE_DEPTH = 16

// CommandDispatcher delivers commands to the router one at a time, in
// submission order, on its own goroutine.
type CommandDispatcher struct {
	router *CommandRouter
	queue  chan Command

	stopCh   chan struct{}
	done     chan struct{}
	startOne sync.Once
	stopOnce sync.Once

	handled atomic.Uint64
	panics  atomic.Uint64
}

func NewCommandDispatcher(router *CommandRouter, depth int) *CommandDispatcher {
	if depth <= 0 {
		depth = DEFAULT_COMMAND_QUEUE_DEPTH
	}
	return &CommandDispatcher{
		router: router,
		queue:  make(chan Command, depth),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (d *CommandDispatcher) Start() {
	d.startOne.Do(func() { go d.run() })
}

// Submit enqueues cmd, blocking while the queue is full.
func (d *CommandDispatcher) Submit(cmd Command) error {
	select {
	case <-d.stopCh:
		return ErrDispatcherStopped
	default:
	}
	select {
	case d.queue <- cmd:
		return nil
	case <-d.stopCh:
		return ErrDispatcherStopped
	}
}

// TrySubmit enqueues cmd without blocking, for callers on the host thread.
func (d *CommandDispatcher) TrySubmit(cmd Command) error {
	select {
	case <-d.stopCh:
		return ErrDispatcherStopped
	default:
	}
	select {
	case d.queue <- cmd:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

func (d *CommandDispatcher) run() {
	defer close(d.done)
	for {
		select {
		case <-d.stopCh:
			return
		case cmd := <-d.queue:
			d.dispatch(cmd)
		}
	}
}

func (d *CommandDispatcher) dispatch(cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			d.panics.Add(1)
			dispatchLog.Errorf("command %s from %s panicked: %v", cmd, cmd.Origin, r)
		}
	}()
	dispatchLog.Debugf("dispatching %s from %s", cmd, cmd.Origin)
	d.router.Dispatch(cmd)
	d.handled.Add(1)
}

// Stop rejects further submissions and waits for the in-flight command.
// Queued commands that were not started are discarded.
func (d *CommandDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		started := true
		d.startOne.Do(func() { started = false })
		if started {
			<-d.done
		}
		if n := len(d.queue); n > 0 {
			dispatchLog.Debugf("discarding %d queued commands", n)
		}
	})
}

func (d *CommandDispatcher) Handled() uint64 { return d.handled.Load() }
