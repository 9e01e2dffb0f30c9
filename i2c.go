// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package devices

import (
	"fmt"
	"time"

	"github.com/kidoman/embd"
)

// DefaultAddress is the Si4707's 7-bit I2C slave address when SEN is tied low.
const DefaultAddress = 0x11

// I2COpts configures an I2CContext.
type I2COpts struct {
	Bus      int    // I2C bus number, e.g. 1 on a Raspberry Pi
	Address  byte   // 7-bit I2C address, usually DefaultAddress
	ResetPin string // GPIO name driving the chip's RST line
	IntrPin  string // GPIO name wired to the chip's interrupt output
}

// I2CContext adapts github.com/kidoman/embd's I2CBus and DigitalPin to the
// HardwareContext interface, the same wrapper-struct-around-an-external-bus
// shape the teacher uses for SPI in its shim.
type I2CContext struct {
	bus      embd.I2CBus
	addr     byte
	resetPin embd.DigitalPin
	intrPin  embd.DigitalPin
	opts     I2COpts
}

// NewI2CContext opens the I2C bus and the reset/interrupt GPIO pins named in
// opts, but does not yet reset or power the chip; call ResetRadio for that.
func NewI2CContext(opts I2COpts) (*I2CContext, error) {
	if opts.Address == 0 {
		opts.Address = DefaultAddress
	}
	reset, err := embd.NewDigitalPin(opts.ResetPin)
	if err != nil {
		return nil, fmt.Errorf("devices: reset pin %s: %w", opts.ResetPin, err)
	}
	intr, err := embd.NewDigitalPin(opts.IntrPin)
	if err != nil {
		return nil, fmt.Errorf("devices: interrupt pin %s: %w", opts.IntrPin, err)
	}
	return &I2CContext{
		bus:      embd.NewI2CBus(byte(opts.Bus)),
		addr:     opts.Address,
		resetPin: reset,
		intrPin:  intr,
		opts:     opts,
	}, nil
}

// ResetRadio implements HardwareContext. It tears down any previously
// configured pin direction, then drives RST low for 100us, high, and waits
// the datasheet's power-up settling time before the chip will answer I2C
// traffic. The interrupt pin is reconfigured as an input with a pull-up so
// repeated calls leave it in a known state.
func (c *I2CContext) ResetRadio() error {
	if err := c.resetPin.SetDirection(embd.Out); err != nil {
		return fmt.Errorf("devices: reset pin direction: %w", err)
	}
	if err := c.resetPin.Write(embd.Low); err != nil {
		return fmt.Errorf("devices: reset pin low: %w", err)
	}
	time.Sleep(100 * time.Microsecond)
	if err := c.resetPin.Write(embd.High); err != nil {
		return fmt.Errorf("devices: reset pin high: %w", err)
	}
	time.Sleep(time.Millisecond)

	if err := c.intrPin.SetDirection(embd.In); err != nil {
		return fmt.Errorf("devices: interrupt pin direction: %w", err)
	}
	if err := c.intrPin.PullUp(); err != nil {
		return fmt.Errorf("devices: interrupt pin pull-up: %w", err)
	}
	return nil
}

// WriteBytes implements HardwareContext.
func (c *I2CContext) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("devices: write of zero bytes")
	}
	if err := c.bus.WriteBytes(c.addr, data); err != nil {
		return fmt.Errorf("devices: write: %w", err)
	}
	return nil
}

// ReadBytes implements HardwareContext.
func (c *I2CContext) ReadBytes(n int) ([]byte, error) {
	b, err := c.bus.ReadBytes(c.addr, n)
	if err != nil {
		return nil, fmt.Errorf("devices: read: %w", err)
	}
	return b, nil
}

// Close releases the underlying bus and pins.
func (c *I2CContext) Close() error {
	var firstErr error
	for _, closer := range []interface {
		Close() error
	}{c.resetPin, c.intrPin, c.bus} {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
