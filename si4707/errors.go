// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import "errors"

// ErrStopped is returned by DoCommand once the driver is shutting down, and
// to any command still queued when the command worker stops.
var ErrStopped = errors.New("si4707: driver stopped")

// ErrNotClearToSend is returned when the chip does not assert clear-to-send
// within the requested timeout.
var ErrNotClearToSend = errors.New("si4707: not clear to send")

// ErrPoweredDown is returned by any command that requires the chip to be
// powered up when it is not.
var ErrPoweredDown = errors.New("si4707: radio is powered down")

// ErrFrequencyOutOfRange is returned by TuneFrequency when asked to tune
// outside the Si4707's weather-band receive range (162.4-162.55 MHz).
var ErrFrequencyOutOfRange = errors.New("si4707: frequency out of range")

// StatusError wraps a Status reporting both clear-to-send and an error
// condition: the chip is saying the previous command was malformed.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return "si4707: chip reported an error status: " + e.Status.String()
}
