// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package mock provides a HardwareContext that emulates the Si4707's
// register-level behavior well enough to exercise the driver without real
// hardware: PowerUp/PowerDown/GetRev/SetProperty/GetProperty respond
// plausibly, and SendMessage injects a synthetic SAME broadcast, complete
// with start-of-message/preamble/header-ready/end-of-message timing, for
// integration tests.
package mock

import (
	"fmt"
	"sync"
	"time"

	devices "github.com/ke4roh/si4707nwr"
)

var _ devices.HardwareContext = (*Context)(nil)

// Context emulates an Si4707 chip closely enough to drive the si4707
// package's command set.
type Context struct {
	mu sync.Mutex

	registers []byte // last response, read back by ReadBytes

	power  bool
	opmode byte
	props  map[uint16]uint16

	rssi, snr byte
	afcValid  byte
	freqCode  uint16

	interrupts byte // STATUS low nibble: RSQINT ASQINT SAMEINT STCINT

	sameState byte // RESP1 of WB_SAME_STATUS: HDRRDY PREDET SOMDET EOMDET
	header    [255]byte
	confid    [255]byte

	asqTone, asqStarted, asqStopped bool

	agcDisabled byte
}

// New returns a freshly reset Context.
func New() *Context {
	c := &Context{}
	c.reset()
	return c
}

func (c *Context) reset() {
	c.registers = []byte{0x80, 1, 2, 3, 4, 5, 6, 7}
	c.power = false
	c.props = defaultProps()
	c.rssi, c.snr = 20, 29
	c.afcValid = 1
}

func defaultProps() map[uint16]uint16 {
	return map[uint16]uint16{
		0x0001: 0x0000, 0x0201: 0x8000, 0x0202: 0x0001, 0x5108: 0x000A,
		0x5200: 0x0000, 0x5201: 0x007F, 0x5202: 0x0000, 0x5203: 0x007F,
		0x5204: 0x0000, 0x5403: 0x0003, 0x5404: 0x0014, 0x5500: 0x0000,
		0x5600: 0x0000, 0x4000: 0x003F, 0x4001: 0x0000,
	}
}

// ResetRadio implements si4707nwr.HardwareContext.
func (c *Context) ResetRadio() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	return nil
}

// WriteBytes implements si4707nwr.HardwareContext.
func (c *Context) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("mock: write of zero bytes")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatch(data[0], data[1:])
	return nil
}

// ReadBytes implements si4707nwr.HardwareContext.
func (c *Context) ReadBytes(n int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, n)
	copy(out, c.registers)
	return out, nil
}

func (c *Context) status() byte {
	return 0x80 | c.interrupts
}

func (c *Context) dispatch(op byte, args []byte) {
	switch op {
	case 0x01: // POWER_UP
		c.powerUp(args)
	case 0x10: // GET_REV
		c.registers = []byte{c.status(), 7, '5', '0', 0xD1, 0x95, '5', '0', 0}
	case 0x11: // POWER_DOWN
		c.power = false
		c.registers = []byte{c.status()}
	case 0x12: // SET_PROPERTY
		code := uint16(args[1])<<8 | uint16(args[2])
		val := uint16(args[3])<<8 | uint16(args[4])
		c.props[code] = val
		c.registers = []byte{c.status()}
	case 0x13: // GET_PROPERTY
		code := uint16(args[1])<<8 | uint16(args[2])
		val := c.props[code]
		c.registers = []byte{c.status(), 0, byte(val >> 8), byte(val)}
	case 0x14: // GET_INT_STATUS
		c.registers = []byte{c.status()}
	case 0x50: // WB_TUNE_FREQ
		c.freqCode = uint16(args[1])<<8 | uint16(args[2])
		c.afcValid = 0
		go func() {
			time.Sleep(10 * time.Millisecond)
			c.mu.Lock()
			c.interrupts |= 0x01 // STCINT
			c.afcValid = 1
			c.mu.Unlock()
		}()
		c.registers = []byte{c.status()}
	case 0x52: // WB_TUNE_STATUS
		if len(args) > 0 && args[0]&1 != 0 {
			c.interrupts &^= 0x01
		}
		c.registers = []byte{c.status(), c.afcValid, byte(c.freqCode >> 8), byte(c.freqCode), c.rssi, c.snr}
	case 0x53: // WB_RSQ_STATUS
		if len(args) > 0 && args[0]&1 != 0 {
			c.interrupts &^= 0x08
		}
		c.registers = []byte{c.status(), 0, c.afcValid, 0, c.rssi, c.snr, 0, 0}
	case 0x54: // WB_SAME_STATUS
		c.sameStatus(args)
	case 0x55: // WB_ASQ_STATUS
		if len(args) > 0 && args[0]&1 != 0 {
			c.interrupts &^= 0x02
		}
		resp1 := byte(0)
		if c.asqStarted {
			resp1 |= 0x01
		}
		if c.asqStopped {
			resp1 |= 0x02
		}
		tone := byte(0)
		if c.asqTone {
			tone = 1
		}
		c.registers = []byte{c.status(), resp1, tone}
		if len(args) > 0 && args[0]&1 != 0 {
			c.asqStarted, c.asqStopped = false, false
		}
	case 0x57: // WB_AGC_STATUS
		c.registers = []byte{c.status(), c.agcDisabled}
	case 0x58: // WB_AGC_OVERRIDE
		c.agcDisabled = args[0]
		c.registers = []byte{c.status()}
	default:
		c.registers = []byte{0xC0}
	}
}

func (c *Context) powerUp(args []byte) {
	fn := args[0] & 0x0F
	c.opmode = args[1]
	switch fn {
	case 3:
		c.power = true
		c.registers = []byte{0x80}
	case 15:
		c.registers = []byte{0x80, 7, '5', '0', 0xFC, 0xFF, '4', '2', 9}
	default:
		c.registers = []byte{0xC0}
	}
}

func (c *Context) sameStatus(args []byte) {
	intack := len(args) > 0 && args[0]&0x01 != 0
	readBuf := len(args) > 0 && args[0]&0x02 != 0

	if intack {
		c.interrupts &^= 0x04
	}

	if !readBuf {
		c.registers = []byte{c.status(), c.sameState, 0, 0}
		if intack {
			c.sameState = 0
		}
		return
	}

	out := make([]byte, 2+2*len(c.header))
	out[0] = c.status()
	out[1] = c.sameState
	for i := range c.header {
		out[2+2*i] = c.confid[i]
		out[2+2*i+1] = c.header[i]
	}
	c.registers = out
	if intack {
		c.sameState = 0
	}
}

// AlertTone simulates the 1050 Hz SAME alert tone starting or stopping.
func (c *Context) AlertTone(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.asqTone != playing {
		if playing {
			c.asqStarted = true
		} else {
			c.asqStopped = true
		}
		c.asqTone = playing
		c.interrupts |= 0x02
	}
}

// SendMessage spawns a goroutine that replays a SAME broadcast: start of
// message, headerCount header copies of message, an optional alert tone,
// a voice pause, and finally eom end-of-message markers. timeFactor scales
// every delay, letting tests run the ~13-second real cadence in
// milliseconds.
func (c *Context) SendMessage(message string, headerCount int, tone time.Duration, voiceDuration time.Duration, eom int, timeFactor float64) {
	go c.sendMessage(message, headerCount, tone, voiceDuration, eom, timeFactor)
}

func (c *Context) sendMessage(message string, headerCount int, tone time.Duration, voiceDuration time.Duration, eom int, timeFactor float64) {
	const charTime = time.Second / 520.83 * 8

	scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * timeFactor) }

	c.mu.Lock()
	c.sameState |= sameSOM
	c.interrupts |= 0x04
	c.mu.Unlock()

	for h := 0; h < headerCount; h++ {
		time.Sleep(scale(charTime * 16))
		c.mu.Lock()
		c.sameState |= samePreamble
		c.interrupts |= 0x04
		c.mu.Unlock()

		time.Sleep(scale(charTime * 4))
		c.mu.Lock()
		for i := 0; i < len(c.header) && i < len(message); i++ {
			c.header[i] = message[i] & 0x7F
			c.confid[i] = 3
		}
		c.sameState |= sameHeaderRdy
		c.interrupts |= 0x04
		c.mu.Unlock()

		time.Sleep(scale(time.Second))
	}

	if tone > 0 {
		c.AlertTone(true)
		time.Sleep(scale(tone))
		c.AlertTone(false)
	}
	if voiceDuration > 0 {
		time.Sleep(scale(voiceDuration))
	}

	for e := 0; e < eom; e++ {
		time.Sleep(scale(time.Second))
		c.mu.Lock()
		c.sameState |= sameEOM
		c.interrupts |= 0x04
		c.mu.Unlock()
	}
}

const (
	sameHeaderRdy = 1 << 0
	samePreamble  = 1 << 1
	sameSOM       = 1 << 2
	sameEOM       = 1 << 3
)
