// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import (
	"container/heap"
	"context"
	"time"

	"github.com/ke4roh/si4707nwr/thread"
)

func (d *Driver) writeBytes(data []byte) error {
	return d.hw.WriteBytes(data)
}

func (d *Driver) readBytes(n int) ([]byte, error) {
	return d.hw.ReadBytes(n)
}

// waitForClearToSend polls the status register until CTS is asserted or
// timeout elapses.
func (d *Driver) waitForClearToSend(ctx context.Context, timeout time.Duration) (Status, error) {
	deadline := time.Now().Add(timeout)
	for {
		b, err := d.readBytes(1)
		if err != nil {
			return 0, err
		}
		status, serr := newStatus(b[0])
		d.status = status
		if serr != nil {
			return status, serr
		}
		if status.IsClearToSend() {
			return status, nil
		}
		if time.Now().After(deadline) {
			return status, ErrNotClearToSend
		}
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-time.After(2 * time.Millisecond):
		}
	}
}

// checkInterrupts asks the chip to populate the interrupt status bits and
// returns the resulting Status.
func (d *Driver) checkInterrupts(ctx context.Context) (Status, error) {
	if _, err := d.waitForClearToSend(ctx, 5*time.Second); err != nil {
		return 0, err
	}
	if err := d.writeBytes([]byte{opGetIntStatus}); err != nil {
		return 0, err
	}
	return d.waitForClearToSend(ctx, 100*time.Millisecond)
}

// dispatchAnyMessage checks whether the in-progress SAME message is
// complete (or asserts that it is, when finished is true); Message's own
// FullyReceived fires the one-shot completion callback.
func (d *Driver) dispatchAnyMessage(finished bool) {
	if d.sameMessage != nil {
		d.sameMessage.FullyReceived(finished, false)
	}
}

// commandLoop is the sole goroutine that talks to the hardware: it
// watches for chip interrupts, dispatches any completed SAME message, and
// runs whatever command is next in priority order.
//
// It asks the OS for realtime scheduling on its own kernel thread so that
// polling for SAME interrupts isn't starved by the rest of the process;
// failure to get it (unprivileged, non-Linux, sandboxed) is logged and
// otherwise ignored.
func (d *Driver) commandLoop() {
	if err := thread.Realtime(); err != nil {
		d.log.WithError(err).Debug("could not get realtime scheduling")
	}

	ctx := context.Background()
	for {
		select {
		case <-d.stop:
			d.drainQueue()
			return
		default:
		}

		if status, err := d.checkInterrupts(ctx); err == nil {
			if status.IsSAMEInterrupt() {
				d.runCommand(&SameInterruptCheck{Intack: true})
			}
			if status.IsAudioSignalQualityInterrupt() {
				d.runCommand(&AlertToneCheck{Intack: true})
			}
			if status.IsReceivedSignalQualityInterrupt() {
				d.runCommand(&ReceivedSignalQualityCheck{Intack: true})
			}
		}

		d.dispatchAnyMessage(false)

		select {
		case <-d.stop:
			d.drainQueue()
			return
		default:
		}

		cmd := d.popCommand(50 * time.Millisecond)
		if cmd == nil {
			continue
		}
		d.runQueued(cmd)
	}
}

func (d *Driver) popCommand(wait time.Duration) *queuedCommand {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	if len(d.queue) == 0 {
		timer := time.AfterFunc(wait, d.queueCond.Signal)
		defer timer.Stop()
		d.queueCond.Wait()
	}
	if len(d.queue) == 0 {
		return nil
	}
	return heap.Pop(&d.queue).(*queuedCommand)
}

func (d *Driver) runQueued(q *queuedCommand) {
	result, err := q.command.execute(d)
	if err != nil {
		d.log.WithError(err).Debug("command failed")
		q.future.resolve(nil, err)
		d.fireEvent(newCommandExceptionEvent(err, true))
		return
	}
	q.future.resolve(result, nil)
}

// runCommand runs a command the driver itself generated (in response to an
// interrupt) without a caller waiting on a Future.
func (d *Driver) runCommand(cmd Command) {
	if _, err := cmd.execute(d); err != nil {
		d.log.WithError(err).Debug("interrupt-driven command failed")
		d.fireEvent(newCommandExceptionEvent(err, false))
	}
}

func (d *Driver) drainQueue() {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	for len(d.queue) > 0 {
		q := heap.Pop(&d.queue).(*queuedCommand)
		q.future.resolve(nil, ErrStopped)
	}
}

// eventLoop dispatches fired events, including delayed events whose time
// has come, to every registered listener.
func (d *Driver) eventLoop() {
	for {
		for _, e := range d.dueDelayedEvents() {
			d.dispatch(e)
		}

		select {
		case e, ok := <-d.events:
			if !ok {
				return
			}
			d.dispatch(e)
		case <-time.After(50 * time.Millisecond):
			select {
			case <-d.stop:
				if len(d.events) == 0 {
					return
				}
			default:
			}
		}
	}
}

func (d *Driver) dueDelayedEvents() []Event {
	d.delayedMu.Lock()
	defer d.delayedMu.Unlock()
	now := secondsSinceEpoch(time.Now())
	var due []Event
	for len(d.delayed) > 0 && d.delayed[0].at <= now {
		due = append(due, heap.Pop(&d.delayed).(delayedEvent).event)
	}
	return due
}

func (d *Driver) dispatch(e Event) {
	d.listenerMu.Lock()
	listeners := append([]func(Event){}, d.listeners...)
	d.listenerMu.Unlock()
	for _, l := range listeners {
		d.callListener(l, e)
	}
}

// callListener invokes a single listener, recovering from a panic so that
// one broken listener can't take down the event loop or stop delivery to
// every other listener.
func (d *Driver) callListener(l func(Event), e Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("panic", r).Error("listener panicked")
		}
	}()
	l(e)
}
