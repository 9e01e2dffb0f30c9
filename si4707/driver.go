// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ke4roh/si4707nwr"
	"github.com/ke4roh/si4707nwr/same"
	"github.com/sirupsen/logrus"
)

const (
	commandQueueCapacity = 50
	eventQueueCapacity   = 50
)

// Driver operates a single Si4707 chip: it owns the command queue, the
// event queue, and the two goroutines that drain them.
//
// The methods on Driver are safe to call concurrently; all of them end up
// submitting a Command and waiting on its Future rather than touching the
// hardware context directly.
type Driver struct {
	hw  devices.HardwareContext
	log logrus.FieldLogger

	commandSerial uint64
	commandMu     sync.Mutex

	queue     commandQueue
	queueMu   sync.Mutex
	queueCond *sync.Cond
	delayed   delayedEventHeap
	delayedMu sync.Mutex

	events     chan Event
	listeners  []func(Event)
	listenerMu sync.Mutex

	stop    chan struct{}
	stopped bool
	stopMu  sync.Mutex

	done chan struct{} // closed once both worker goroutines have exited

	radioPower  bool
	tuneAfter   time.Time
	transmitter string
	toneStart   *time.Time
	sameMessage *same.Message
	lastEOM     time.Time
	status      Status
}

// New creates a Driver around a hardware context. The driver is inert
// until Start is called.
func New(hw devices.HardwareContext, log logrus.FieldLogger) *Driver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Driver{
		hw:        hw,
		log:       log,
		tuneAfter: time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC), // effectively +inf
		events:    make(chan Event, eventQueueCapacity),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	d.queueCond = sync.NewCond(&d.queueMu)
	heap.Init(&d.queue)
	heap.Init(&d.delayed)
	return d
}

// Start resets the chip, confirms it responds, and launches the command
// and event worker goroutines. Call Shutdown to stop them.
func (d *Driver) Start(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := d.hw.ResetRadio(); err != nil {
			lastErr = err
			continue
		}
		if _, err := d.waitForClearToSend(ctx, 5*time.Second); err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return fmt.Errorf("si4707: startup failed: %w", lastErr)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.commandLoop()
	}()
	go func() {
		defer wg.Done()
		d.eventLoop()
	}()
	go func() {
		wg.Wait()
		close(d.done)
	}()

	d.log.Info("si4707 ready")
	return nil
}

// RegisterEventListener adds a callback invoked, from the event goroutine,
// for every dispatched Event.
func (d *Driver) RegisterEventListener(fn func(Event)) {
	d.listenerMu.Lock()
	defer d.listenerMu.Unlock()
	d.listeners = append(d.listeners, fn)
}

func (d *Driver) fireEvent(e Event) {
	select {
	case d.events <- e:
	default:
		d.log.Warn("event queue full, dropping event")
	}
}

func (d *Driver) delayEvent(e Event, at time.Time) {
	d.delayedMu.Lock()
	defer d.delayedMu.Unlock()
	heap.Push(&d.delayed, delayedEvent{at: secondsSinceEpoch(at), event: e})
}

func secondsSinceEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// DoCommand submits a command for execution and returns its Future. The
// command's priority (0 uninterruptable, 1 interrupt handler, 2 user)
// combines with a monotonically increasing serial number so that commands
// of the same priority still execute in submission order.
func (d *Driver) DoCommand(cmd Command) (*Future, error) {
	if d.isStopped() {
		return nil, ErrStopped
	}

	d.commandMu.Lock()
	serial := d.commandSerial
	d.commandSerial++
	d.commandMu.Unlock()

	future := newFuture()
	key := uint64(cmd.Priority())<<56 | serial

	d.queueMu.Lock()
	if len(d.queue) >= commandQueueCapacity {
		d.queueMu.Unlock()
		return nil, fmt.Errorf("si4707: command queue full")
	}
	heap.Push(&d.queue, &queuedCommand{key: key, command: cmd, future: future})
	d.queueCond.Signal()
	d.queueMu.Unlock()

	return future, nil
}

// do submits cmd and blocks for its result, the common case for the
// driver's own convenience methods (Tune, SetVolume, and so on).
func (d *Driver) do(cmd Command) (interface{}, error) {
	f, err := d.DoCommand(cmd)
	if err != nil {
		return nil, err
	}
	return f.Get()
}

func (d *Driver) isStopped() bool {
	d.stopMu.Lock()
	defer d.stopMu.Unlock()
	return d.stopped
}

// Shutdown stops the radio and both worker goroutines. If hard is true, a
// PowerDown is pushed to the front of the queue ahead of anything already
// queued; otherwise it is queued as an uninterruptable command, behind any
// uninterruptable commands already queued but ahead of queued
// interrupt-handler and user commands. Commands still queued once the
// PowerDown has run fail with ErrStopped.
func (d *Driver) Shutdown(hard bool) {
	d.stopMu.Lock()
	if d.stopped {
		d.stopMu.Unlock()
		return
	}
	d.stopped = true
	d.stopMu.Unlock()

	if d.radioPower {
		future := newFuture()
		key := uint64(0)
		if !hard {
			d.commandMu.Lock()
			key = uint64(PriorityUninterruptable)<<56 | d.commandSerial
			d.commandSerial++
			d.commandMu.Unlock()
		}
		d.queueMu.Lock()
		heap.Push(&d.queue, &queuedCommand{key: key, command: &PowerDown{}, future: future})
		d.queueCond.Signal()
		d.queueMu.Unlock()
		future.Get()
	}

	close(d.stop)
	d.queueCond.Broadcast()
	<-d.done
	d.log.Debug("si4707 stopped")
}
