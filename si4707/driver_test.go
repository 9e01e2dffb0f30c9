// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ke4roh/si4707nwr/same"
	"github.com/ke4roh/si4707nwr/si4707"
	"github.com/ke4roh/si4707nwr/si4707/mock"
	"github.com/sirupsen/logrus"
)

func newTestDriver(t *testing.T) (*si4707.Driver, *mock.Context) {
	t.Helper()
	hw := mock.New()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	d := si4707.New(hw, log)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { d.Shutdown(true) })
	return d, hw
}

func Test_Driver_PowerOnTuneVolume(t *testing.T) {
	d, _ := newTestDriver(t)

	if err := d.PowerOn(nil, nil); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}
	if _, err := d.Tune("162.550"); err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if err := d.SetVolume(40); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	v, err := d.GetVolume()
	if err != nil {
		t.Fatalf("GetVolume: %v", err)
	}
	if v != 40 {
		t.Fatalf("GetVolume = %d, want 40", v)
	}
}

func Test_Driver_TuneRejectsOutOfRangeFrequency(t *testing.T) {
	d, _ := newTestDriver(t)
	if err := d.PowerOn(nil, nil); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}
	if _, err := d.Tune("100.0"); err == nil {
		t.Fatal("expected an error tuning to an out-of-band frequency")
	}
}

func Test_Driver_ReceivesSAMEMessage(t *testing.T) {
	d, hw := newTestDriver(t)
	if err := d.PowerOn(nil, nil); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}
	if _, err := d.Tune("WXL58"); err != nil {
		t.Fatalf("Tune: %v", err)
	}

	received := make(chan *same.Message, 1)
	d.RegisterEventListener(func(e si4707.Event) {
		if ev, ok := e.(si4707.SAMEMessageReceivedEvent); ok {
			select {
			case received <- ev.Message:
			default:
			}
		}
	})

	hw.SendMessage(
		"-WXR-RWT-037183-037185+0030-0000000-KRAH/NWS-",
		3, 0, 0, 1, 0.001,
	)

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SAMEMessageReceivedEvent")
	}
}

// Test_Driver_TuneFrequencyRoundTrip submits TuneFrequency against the mock
// and confirms both the future's result and a subsequent TuneStatus read
// agree on the exact frequency register the chip was told to tune to
// (round(400 x MHz), per TuneFrequency's documented encoding).
func Test_Driver_TuneFrequencyRoundTrip(t *testing.T) {
	d, _ := newTestDriver(t)
	if err := d.PowerOn(nil, nil); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}

	const freq = 162.400
	wantCode := uint16(math.Round(freq * 400))
	wantFreq := float64(wantCode) / 400

	r, err := d.Tune(fmt.Sprintf("%.3f", freq))
	if err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if r.Frequency != wantFreq {
		t.Fatalf("TuneFrequency result frequency = %v, want %v (code 0x%04X)", r.Frequency, wantFreq, wantCode)
	}
	if r.RSSI == 0 && r.SNR == 0 {
		t.Fatal("expected the mock's rssi/snr to be reported alongside the tune result")
	}

	status, err := d.TuneStatus()
	if err != nil {
		t.Fatalf("TuneStatus: %v", err)
	}
	if status.Frequency != wantFreq {
		t.Fatalf("frequency register reads back %v, want %v (code 0x%04X = 400 x %v)", status.Frequency, wantFreq, wantCode, freq)
	}
}

// opCountingHW wraps the mock radio and, on the Nth GET_PROPERTY write,
// synchronously raises the audio-signal-quality interrupt so the command
// worker's priority preemption can be observed deterministically. The
// mock's own interrupt injection (SendMessage) runs in a goroutine and
// would race against how fast these in-memory commands execute.
type opCountingHW struct {
	*mock.Context
	mu        sync.Mutex
	ops       []byte
	propCount int
	triggerAt int
	triggered bool
}

func (h *opCountingHW) WriteBytes(data []byte) error {
	h.mu.Lock()
	op := data[0]
	h.ops = append(h.ops, op)
	trigger := false
	if op == 0x13 { // GET_PROPERTY
		h.propCount++
		if h.propCount == h.triggerAt && !h.triggered {
			h.triggered = true
			trigger = true
		}
	}
	h.mu.Unlock()
	if trigger {
		h.Context.AlertTone(true)
	}
	return h.Context.WriteBytes(data)
}

func (h *opCountingHW) snapshot() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.ops...)
}

// Test_Driver_InterruptPreemptsQueuedCommands pre-submits 10 GetProperty
// commands and, synchronously with the 3rd one's write, raises the
// audio-signal-quality interrupt. The command worker checks for interrupts
// once per loop iteration, ahead of popping the next queued command, so
// the interrupt-driven AlertToneCheck must run immediately after the 3rd
// GetProperty completes and before the 4th one does.
func Test_Driver_InterruptPreemptsQueuedCommands(t *testing.T) {
	hw := &opCountingHW{Context: mock.New(), triggerAt: 3}
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	d := si4707.New(hw, log)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { d.Shutdown(true) })
	if err := d.PowerOn(nil, nil); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}

	futures := make([]*si4707.Future, 10)
	for i := range futures {
		f, err := d.DoCommand(&si4707.GetProperty{Mnemonic: "RX_VOLUME"})
		if err != nil {
			t.Fatalf("DoCommand #%d: %v", i, err)
		}
		futures[i] = f
	}
	for i, f := range futures {
		if _, err := f.Get(); err != nil {
			t.Fatalf("GetProperty #%d: %v", i, err)
		}
	}

	propsSeen, tonePos := 0, -1
	for _, op := range hw.snapshot() {
		if op == 0x55 && tonePos == -1 { // WB_ASQ_STATUS, AlertToneCheck
			tonePos = propsSeen
		}
		if op == 0x13 {
			propsSeen++
		}
	}
	if tonePos == -1 {
		t.Fatal("the interrupt-driven AlertToneCheck never ran")
	}
	if tonePos != 3 {
		t.Fatalf("AlertToneCheck ran after %d queued GetProperty commands, want exactly 3 (preempting the 4th)", tonePos)
	}
}

// gatedHW wraps the mock radio and blocks the next GET_INT_STATUS poll
// until released, letting a test pause the command worker at a known,
// queue-free point without racing its very fast in-memory execution.
type gatedHW struct {
	*mock.Context
	armed   int32 // atomic; CAS'd to 0 the one time the gate fires
	entered chan struct{}
	release chan struct{}
}

func (h *gatedHW) WriteBytes(data []byte) error {
	if len(data) > 0 && data[0] == 0x14 && atomic.CompareAndSwapInt32(&h.armed, 1, 0) {
		h.entered <- struct{}{}
		<-h.release
	}
	return h.Context.WriteBytes(data)
}

// Test_Driver_ShutdownDrainsQueuedCommandsWithErrStopped submits 5 commands
// while the command worker is frozen, then shuts down. None of the 5 ever
// get a chance to run, so all 5 futures must fail with ErrStopped, and the
// drain itself (drainQueue) must not emit any events of its own.
func Test_Driver_ShutdownDrainsQueuedCommandsWithErrStopped(t *testing.T) {
	hw := &gatedHW{Context: mock.New(), entered: make(chan struct{}), release: make(chan struct{})}
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	d := si4707.New(hw, log)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.PowerOn(nil, nil); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}
	if err := d.PowerOff(); err != nil {
		t.Fatalf("PowerOff: %v", err)
	}

	var mu sync.Mutex
	var events []si4707.Event
	d.RegisterEventListener(func(e si4707.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	// Freeze the worker at the start of its next idle cycle, before it can
	// look at the queue.
	atomic.StoreInt32(&hw.armed, 1)
	select {
	case <-hw.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the command worker to reach the gate")
	}

	futures := make([]*si4707.Future, 5)
	for i := range futures {
		f, err := d.DoCommand(&si4707.GetProperty{Mnemonic: "RX_VOLUME"})
		if err != nil {
			t.Fatalf("DoCommand #%d: %v", i, err)
		}
		futures[i] = f
	}

	shutdownDone := make(chan struct{})
	go func() {
		d.Shutdown(true)
		close(shutdownDone)
	}()
	// The radio is already off, so Shutdown has nothing left to wait on but
	// the two worker goroutines: give it a moment to reach close(d.stop)
	// before letting the gated worker continue.
	time.Sleep(20 * time.Millisecond)
	close(hw.release)

	select {
	case <-shutdownDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Shutdown to return")
	}

	for i, f := range futures {
		if _, err := f.Get(); err != si4707.ErrStopped {
			t.Fatalf("future #%d resolved with %v, want ErrStopped", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	sawPowerDown := false
	for _, e := range events {
		if pe, ok := e.(si4707.RadioPowerEvent); ok && !pe.PowerOn {
			sawPowerDown = true
		}
		if _, ok := e.(si4707.CommandExceptionEvent); ok {
			t.Fatalf("unexpected CommandExceptionEvent fired by the drained queue: %v", e)
		}
	}
	if !sawPowerDown {
		t.Fatal("expected the PowerOff to have fired a power-down event")
	}
}
