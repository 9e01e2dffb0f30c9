// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package devices

// HardwareContext is the pluggable adapter between the si4707 driver and the
// physical bus. It knows how to reset the chip and move bytes across the
// wire; everything above this layer is oblivious to whether the bytes
// travel over I2C, a mock, or anything else.
//
// The context is not internally synchronized: the driver's command worker
// is its sole caller.
type HardwareContext interface {
	// ResetRadio drives the chip's reset line low then high and arms the
	// interrupt pin. Idempotent: calling it again tears down and
	// re-establishes pin state rather than erroring.
	ResetRadio() error

	// WriteBytes transmits a command frame. The first byte is the
	// opcode/register, the remainder are its arguments.
	WriteBytes(data []byte) error

	// ReadBytes reads n bytes starting at the response register.
	ReadBytes(n int) ([]byte, error)
}
