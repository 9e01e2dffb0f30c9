// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package si4707 drives a Silicon Labs Si4707 NOAA Weather Radio receiver
// chip over I2C. It powers the chip up, tunes it, watches for its
// interrupts, and turns received SAME headers into same.Message values, but
// it does not decide what to do with the messages it hears.
//
// The chip is operated through a dedicated command goroutine that owns all
// I2C traffic, and a dedicated event goroutine that dispatches the events
// commands fire as they run (tone detection, SAME headers, power state
// changes, command failures) to registered listeners. Callers submit commands with
// DoCommand and use the returned Future to wait for the result without
// blocking either goroutine.
//
// Reference: http://www.silabs.com/Support%20Documents/TechnicalDocs/AN332.pdf
package si4707
