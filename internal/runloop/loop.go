// Package runloop is the single-goroutine, cooperatively scheduled task loop
// that every backend dispatches through.
//
// Tasks may be posted from any goroutine. They run one at a time on the
// goroutine that called Run, interleaved with the backend's native event
// source. Stop takes effect once the task being dispatched returns. Tasks
// still queued at that point are dropped and never run.
package runloop

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/sash/internal/logging"
)

var (
	// ErrStopped is returned when posting to, or pumping, a stopped loop.
	ErrStopped = errors.New("run loop stopped")
	// ErrTimeout is returned by PumpUntil when the condition was not met in time.
	ErrTimeout = errors.New("run loop pump timed out")
	// ErrRunning is returned by Run when the loop is already being run.
	ErrRunning = errors.New("run loop already running")
)

// Task is a unit of work executed on the loop goroutine.
type Task func()

// Source is a native event source multiplexed into the loop. Ready fires
// when the source has an event; Dispatch then handles it on the loop
// goroutine.
type Source interface {
	Ready() <-chan struct{}
	Dispatch()
}

// Loop is a FIFO of tasks with a wakeup channel.
type Loop struct {
	mu      sync.Mutex
	queue   []Task
	stopped bool

	wake     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	running  atomic.Bool
}

// New creates an idle loop.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

// Post queues task for the loop goroutine. It is safe from any goroutine.
func (l *Loop) Post(task Task) error {
	if task == nil {
		return nil
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Wake fires whenever tasks have been posted. Drivers that own their own
// native loop (Win32) forward it into their message queue and then call
// RunPending.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// Done is closed once Stop has been called.
func (l *Loop) Done() <-chan struct{} {
	return l.quit
}

// Pending reports how many tasks are queued.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RunPending runs the tasks that were queued when it was called, in order,
// and returns how many ran. Tasks posted meanwhile wait for the next wakeup.
// A Stop issued by one of the tasks prevents the rest from running.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	n := len(l.queue)
	l.mu.Unlock()

	ran := 0
	for ran < n {
		l.mu.Lock()
		if l.stopped || len(l.queue) == 0 {
			l.mu.Unlock()
			break
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		task()
		ran++
	}
	return ran
}

// Run dispatches tasks and events from src until Stop is called. src may be
// nil when every native event already arrives as a posted task.
func (l *Loop) Run(src Source) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	var ready <-chan struct{}
	if src != nil {
		ready = src.Ready()
	}

	for {
		if l.Stopped() {
			l.drop()
			return nil
		}
		select {
		case <-l.quit:
			l.drop()
			return nil
		case <-l.wake:
			l.RunPending()
		case _, ok := <-ready:
			if !ok {
				ready = nil
				continue
			}
			src.Dispatch()
		}
	}
}

// RunNative marks the loop running while native dispatches it. It is for
// backends whose event source must be pumped on the calling thread: native
// calls RunPending whenever Wake fires and returns once Done is closed.
// Tasks still queued afterwards are dropped as in Run.
func (l *Loop) RunNative(native func() error) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	err := native()
	l.drop()
	return err
}

// PumpUntil runs posted tasks on the calling goroutine until cond holds. It
// must only be called from the loop goroutine (typically from inside a task)
// and is how asynchronous protocols are resolved into synchronous answers.
func (l *Loop) PumpUntil(cond func() bool, timeout time.Duration) error {
	l.RunPending()
	if cond() {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for !cond() {
		if l.Stopped() {
			return ErrStopped
		}
		select {
		case <-l.wake:
			l.RunPending()
		case <-timer.C:
			return ErrTimeout
		}
	}
	return nil
}

// Stop asks the loop to exit once the current dispatch completes. It is safe
// to call more than once and from any goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.quitOnce.Do(func() { close(l.quit) })
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Running reports whether Run is currently executing.
func (l *Loop) Running() bool {
	return l.running.Load()
}

func (l *Loop) drop() {
	l.mu.Lock()
	n := len(l.queue)
	l.queue = nil
	l.mu.Unlock()
	if n > 0 {
		logging.Warn("run loop stopped with queued callbacks; dropping them", "dropped", n)
	}
}
