// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import (
	"time"

	"github.com/ke4roh/si4707nwr/same"
)

// Event is anything the driver's event goroutine can dispatch to
// registered listeners: one of the concrete event types below, fired by a
// command as it runs or by the command worker when a command fails.
type Event interface {
	// Time returns when the event was generated (command completion, or
	// interrupt detection).
	Time() time.Time
}

type baseEvent struct{ at time.Time }

// Time implements Event.
func (e baseEvent) Time() time.Time { return e.at }

func newBaseEvent() baseEvent { return baseEvent{at: time.Now()} }

// CommandExceptionEvent reports a failure executing a queued command.
type CommandExceptionEvent struct {
	baseEvent
	Err        error
	PassedBack bool // true if Err was also delivered via the command's Future
}

// RadioPowerEvent reports the chip powering on or off.
type RadioPowerEvent struct {
	baseEvent
	PowerOn bool
}

// ReadyToTuneEvent fires once the crystal oscillator has stabilized after
// power-up (or immediately, if the oscillator was disabled).
type ReadyToTuneEvent struct{ baseEvent }

// SAMEHeaderReceived fires each time a new header copy is captured,
// whether or not the message it belongs to is complete yet.
type SAMEHeaderReceived struct {
	baseEvent
	Message *same.Message
	Header  same.Header
}

// SAMEMessageReceivedEvent fires exactly once per message, the first time
// it is considered fully received.
type SAMEMessageReceivedEvent struct {
	baseEvent
	Message *same.Message
}

// EndOfMessage fires when the chip reports end-of-message detection.
type EndOfMessage struct{ baseEvent }

// TuneStatusEvent reports the outcome of a TuneStatus read, whether
// requested directly or as part of TuneFrequency's completion polling.
type TuneStatusEvent struct {
	baseEvent
	Frequency float64
	RSSI      byte
	SNR       byte
}

// ReceivedSignalQualityEvent reports a WB_RSQ_STATUS read, fired whenever
// the command worker services a received-signal-quality interrupt.
type ReceivedSignalQualityEvent struct {
	baseEvent
	RSSI           byte
	ASNR           byte
	FreqOffset     int8
	AFCRail        bool
	ValidChannel   bool
	SNRHi, SNRLo   bool
	RSSIHi, RSSILo bool
}

// AlertToneEvent reports a transition or steady-state read of the 1050 Hz
// SAME alert tone. Duration is set only on the edge where the tone stops.
type AlertToneEvent struct {
	baseEvent
	StartEdge bool
	EndEdge   bool
	OnNow     bool
	Duration  time.Duration
}

func newRadioPowerEvent(on bool) RadioPowerEvent {
	return RadioPowerEvent{baseEvent: newBaseEvent(), PowerOn: on}
}

func newReadyToTuneEvent() ReadyToTuneEvent {
	return ReadyToTuneEvent{baseEvent: newBaseEvent()}
}

func newEndOfMessage() EndOfMessage {
	return EndOfMessage{baseEvent: newBaseEvent()}
}

func newCommandExceptionEvent(err error, passedBack bool) CommandExceptionEvent {
	return CommandExceptionEvent{baseEvent: newBaseEvent(), Err: err, PassedBack: passedBack}
}

func newSAMEHeaderReceived(msg *same.Message, h same.Header) SAMEHeaderReceived {
	return SAMEHeaderReceived{baseEvent: newBaseEvent(), Message: msg, Header: h}
}

func newSAMEMessageReceivedEvent(msg *same.Message) SAMEMessageReceivedEvent {
	return SAMEMessageReceivedEvent{baseEvent: newBaseEvent(), Message: msg}
}

func newTuneStatusEvent(r TuneStatusResult) TuneStatusEvent {
	return TuneStatusEvent{
		baseEvent: newBaseEvent(),
		Frequency: r.Frequency,
		RSSI:      r.RSSI,
		SNR:       r.SNR,
	}
}

func newReceivedSignalQualityEvent(rssi, asnr byte, freqOffset int8, afcRail, validChannel, snrHi, snrLo, rssiHi, rssiLo bool) ReceivedSignalQualityEvent {
	return ReceivedSignalQualityEvent{
		baseEvent:    newBaseEvent(),
		RSSI:         rssi,
		ASNR:         asnr,
		FreqOffset:   freqOffset,
		AFCRail:      afcRail,
		ValidChannel: validChannel,
		SNRHi:        snrHi,
		SNRLo:        snrLo,
		RSSIHi:       rssiHi,
		RSSILo:       rssiLo,
	}
}

func newAlertToneEvent(startEdge, endEdge, onNow bool, duration time.Duration) AlertToneEvent {
	return AlertToneEvent{
		baseEvent: newBaseEvent(),
		StartEdge: startEdge,
		EndEdge:   endEdge,
		OnNow:     onNow,
		Duration:  duration,
	}
}
