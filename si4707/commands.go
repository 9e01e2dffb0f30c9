// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"math"
	"time"

	"github.com/ke4roh/si4707nwr/same"
)

// Opcodes, from the Si4707 programming guide (AN332).
const (
	opPowerUp       = 0x01
	opGetRev        = 0x10
	opPowerDown     = 0x11
	opSetProperty   = 0x12
	opGetProperty   = 0x13
	opGetIntStatus  = 0x14
	opWBTuneFreq    = 0x50
	opWBTuneStatus  = 0x52
	opWBRSQStatus   = 0x53
	opWBSAMEStatus  = 0x54
	opWBASQStatus   = 0x55
	opWBAGCStatus   = 0x57
	opWBAGCOverride = 0x58
)

const (
	minFrequencyMHz = 162.400
	maxFrequencyMHz = 162.550
)

// PowerUp boots the chip into weather-band receive mode (or, with Func set
// to 15, queries the library ID without a full boot).
type PowerUp struct {
	CTSInterruptEnable bool
	GPO2OutputEnable   bool
	PatchEnable        bool
	CrystalOscillator  bool
	Func               byte // 3: WB receive, 15: query library ID
	Opmode             byte // 0x30: analog audio out
}

// Priority implements Command.
func (c *PowerUp) Priority() int { return PriorityUninterruptable }

func (c *PowerUp) arg0() byte {
	var b byte
	if c.CTSInterruptEnable {
		b |= 1 << 7
	}
	if c.GPO2OutputEnable {
		b |= 1 << 6
	}
	if c.PatchEnable {
		b |= 1 << 5
	}
	if c.CrystalOscillator {
		b |= 1 << 4
	}
	return b | (c.Func & 0x0F)
}

func (c *PowerUp) execute(d *Driver) (interface{}, error) {
	if err := d.writeBytes([]byte{opPowerUp, c.arg0(), c.Opmode}); err != nil {
		return nil, err
	}
	wait := 110 * time.Millisecond
	if c.Func == 15 {
		wait = 10 * time.Millisecond
	}
	if _, err := d.waitForClearToSend(context.Background(), wait); err != nil {
		return nil, err
	}

	if c.Func == 15 {
		b, err := d.readBytes(8)
		if err != nil {
			return nil, err
		}
		return parsePupRevision(b)
	}

	d.radioPower = true
	d.fireEvent(newRadioPowerEvent(true))
	if c.CrystalOscillator {
		d.delayEvent(newReadyToTuneEvent(), time.Now().Add(500*time.Millisecond))
	} else {
		d.fireEvent(newReadyToTuneEvent())
	}
	return nil, nil
}

// PatchCommand loads a firmware patch (base64-encoded, zlib-compressed
// binary) before booting the chip, verifying against ExpectedPatchID once
// booted.
type PatchCommand struct {
	PowerUp
	Patch           string // base64(zlib(patch bytes))
	ExpectedPatchID uint16
}

func (c *PatchCommand) execute(d *Driver) (interface{}, error) {
	raw, err := base64.StdEncoding.DecodeString(c.Patch)
	if err != nil {
		return nil, fmt.Errorf("si4707: decoding patch: %w", err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("si4707: inflating patch: %w", err)
	}
	defer zr.Close()
	patch, err := ioutil.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("si4707: inflating patch: %w", err)
	}

	for i := 0; i < len(patch); i += 8 {
		end := i + 8
		if end > len(patch) {
			end = len(patch)
		}
		if err := d.writeBytes(patch[i:end]); err != nil {
			return nil, err
		}
		if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
			return nil, err
		}
	}

	if _, err := c.PowerUp.execute(d); err != nil {
		return nil, err
	}

	rev, err := (&GetRevision{}).execute(d)
	if err != nil {
		return nil, err
	}
	if got := rev.(Revision).PatchID; got != c.ExpectedPatchID {
		return nil, fmt.Errorf("si4707: patch ID mismatch: got %d, want %d", got, c.ExpectedPatchID)
	}
	return rev, nil
}

// PowerDown puts the chip into its lowest-power state.
type PowerDown struct{}

// Priority implements Command.
func (c *PowerDown) Priority() int { return PriorityUninterruptable }

func (c *PowerDown) execute(d *Driver) (interface{}, error) {
	if err := d.writeBytes([]byte{opPowerDown}); err != nil {
		return nil, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return nil, err
	}
	d.radioPower = false
	d.fireEvent(newRadioPowerEvent(false))
	return nil, nil
}

// GetRevision reads the chip's firmware and patch identification.
type GetRevision struct{}

// Priority implements Command.
func (c *GetRevision) Priority() int { return PriorityUser }

func (c *GetRevision) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	if err := d.writeBytes([]byte{opGetRev}); err != nil {
		return nil, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return nil, err
	}
	b, err := d.readBytes(9)
	if err != nil {
		return nil, err
	}
	return parseRevision(b)
}

// SetProperty writes one chip property by mnemonic.
type SetProperty struct {
	Mnemonic string
	Value    uint16
}

// Priority implements Command.
func (c *SetProperty) Priority() int { return PriorityUser }

func (c *SetProperty) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	def, err := lookupProperty(c.Mnemonic, c.Value)
	if err != nil {
		return nil, err
	}
	data := []byte{
		opSetProperty, 0x00,
		byte(def.code >> 8), byte(def.code),
		byte(c.Value >> 8), byte(c.Value),
	}
	if err := d.writeBytes(data); err != nil {
		return nil, err
	}
	_, err = d.waitForClearToSend(context.Background(), 10*time.Millisecond)
	return nil, err
}

// GetProperty reads one chip property by mnemonic.
type GetProperty struct {
	Mnemonic string
}

// Priority implements Command.
func (c *GetProperty) Priority() int { return PriorityUser }

func (c *GetProperty) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	def, ok := properties[c.Mnemonic]
	if !ok {
		return nil, fmt.Errorf("si4707: unknown property %q", c.Mnemonic)
	}
	data := []byte{opGetProperty, 0x00, byte(def.code >> 8), byte(def.code)}
	if err := d.writeBytes(data); err != nil {
		return nil, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return nil, err
	}
	b, err := d.readBytes(4)
	if err != nil {
		return nil, err
	}
	return uint16(b[2])<<8 | uint16(b[3]), nil
}

// TuneFrequency tunes the chip to a frequency in MHz (162.400-162.550),
// sent to the chip as round(400 x MHz), then re-polls TuneStatus every
// 10 ms until the tune completes, for at most 50 polls; the last status is
// returned either way, its Complete field telling whether the tune
// finished. It neither waits for ReadyToTune nor checks that the
// frequency the chip reports matches the one requested. Transmitter, if
// set, names the call sign being tuned to, so SAME message reconstruction
// can use its known county list; it is only ever touched from the command
// worker goroutine.
type TuneFrequency struct {
	Frequency   float64
	Transmitter string
}

// Priority implements Command.
func (c *TuneFrequency) Priority() int { return PriorityUser }

func (c *TuneFrequency) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	if c.Frequency < minFrequencyMHz || c.Frequency > maxFrequencyMHz {
		return nil, ErrFrequencyOutOfRange
	}
	d.transmitter = c.Transmitter
	code := uint16(math.Round(c.Frequency * 400))
	data := []byte{opWBTuneFreq, 0x00, byte(code >> 8), byte(code)}
	if err := d.writeBytes(data); err != nil {
		return nil, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return nil, err
	}

	var status TuneStatusResult
	for attempt := 0; attempt < 50; attempt++ {
		r, err := (&TuneStatus{Intack: attempt == 0}).execute(d)
		if err != nil {
			return nil, err
		}
		status = r.(TuneStatusResult)
		if status.Complete {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	return status, nil
}

// TuneStatusResult is the decoded response to a TuneStatus command.
type TuneStatusResult struct {
	Complete  bool
	Valid     bool
	Frequency float64
	RSSI      byte
	SNR       byte
}

// TuneStatus reports the outcome of the most recent tune.
type TuneStatus struct {
	Intack bool
}

// Priority implements Command.
func (c *TuneStatus) Priority() int { return PriorityUser }

func (c *TuneStatus) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	var arg0 byte
	if c.Intack {
		arg0 = 1
	}
	if err := d.writeBytes([]byte{opWBTuneStatus, arg0}); err != nil {
		return nil, err
	}
	status, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond)
	if err != nil {
		return nil, err
	}
	b, err := d.readBytes(6)
	if err != nil {
		return nil, err
	}
	result := TuneStatusResult{
		Complete:  status.IsSeekTuneComplete() || !status.IsClearToSend(),
		Valid:     b[1]&0x01 != 0,
		Frequency: float64(uint16(b[2])<<8|uint16(b[3])) / 400,
		RSSI:      b[4],
		SNR:       b[5],
	}
	d.fireEvent(newTuneStatusEvent(result))
	return result, nil
}

// ReceivedSignalQualityCheck reads RSSI/SNR and clears the RSQ interrupt
// when Intack is set; the command worker issues this on every RSQINT.
type ReceivedSignalQualityCheck struct {
	Intack bool
}

// Priority implements Command.
func (c *ReceivedSignalQualityCheck) Priority() int { return PriorityInterruptHandler }

func (c *ReceivedSignalQualityCheck) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	var arg0 byte
	if c.Intack {
		arg0 = 1
	}
	if err := d.writeBytes([]byte{opWBRSQStatus, arg0}); err != nil {
		return nil, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return nil, err
	}
	b, err := d.readBytes(6)
	if err != nil {
		return nil, err
	}
	rssi, asnr := b[4], b[5]
	afcRail := b[2]&0x01 == 0
	validChannel := rssi >= byte(properties["WB_VALID_RSSI_THRESHOLD"].value) &&
		asnr >= byte(properties["WB_VALID_SNR_THRESHOLD"].value)
	d.fireEvent(newReceivedSignalQualityEvent(rssi, asnr, 0, afcRail, validChannel,
		asnr >= byte(properties["WB_RSQ_SNR_HI_THRESHOLD"].value),
		asnr <= byte(properties["WB_RSQ_SNR_LO_THRESHOLD"].value),
		rssi >= byte(properties["WB_RSQ_RSSI_HI_THRESHOLD"].value),
		rssi <= byte(properties["WB_RSQ_RSSI_LO_THRESHOLD"].value)))
	return TuneStatusResult{RSSI: rssi, SNR: asnr}, nil
}

// AlertToneCheck polls for the 1050 Hz alert tone that follows the SAME
// headers of a broadcast, clearing the ASQ interrupt when Intack is set.
type AlertToneCheck struct {
	Intack bool
}

// Priority implements Command.
func (c *AlertToneCheck) Priority() int { return PriorityInterruptHandler }

func (c *AlertToneCheck) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	var arg0 byte
	if c.Intack {
		arg0 = 1
	}
	if err := d.writeBytes([]byte{opWBASQStatus, arg0}); err != nil {
		return nil, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return nil, err
	}
	b, err := d.readBytes(2)
	if err != nil {
		return nil, err
	}
	present := b[1]&0x01 != 0
	now := time.Now()
	var startEdge, endEdge bool
	var duration time.Duration
	switch {
	case present && d.toneStart == nil:
		d.toneStart = &now
		startEdge = true
	case !present && d.toneStart != nil:
		duration = now.Sub(*d.toneStart)
		d.toneStart = nil
		endEdge = true
	}
	d.fireEvent(newAlertToneEvent(startEdge, endEdge, present, duration))
	return present, nil
}

// sameStatusResponse bit layout, RESP1 of WB_SAME_STATUS: HDRRDY, PREDET,
// SOMDET, EOMDET from bit 0 up.
const (
	sameHeaderReady = 1 << 0
	samePreambleDet = 1 << 1
	sameStartOfMsg  = 1 << 2
	sameEndOfMsg    = 1 << 3
)

// SameInterruptCheck drains the chip's SAME symbol buffer, reassembling
// header copies into the in-progress same.Message and firing
// SAMEHeaderReceived/SAMEMessageReceivedEvent/EndOfMessage as appropriate.
// The command worker issues this on every SAMEINT.
type SameInterruptCheck struct {
	Intack bool
}

// Priority implements Command.
func (c *SameInterruptCheck) Priority() int { return PriorityInterruptHandler }

func (c *SameInterruptCheck) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	var arg0 byte
	if c.Intack {
		arg0 = 1
	}
	if err := d.writeBytes([]byte{opWBSAMEStatus, arg0}); err != nil {
		return nil, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return nil, err
	}
	b, err := d.readBytes(2)
	if err != nil {
		return nil, err
	}
	resp1 := b[1]

	if resp1&sameStartOfMsg != 0 && d.sameMessage == nil {
		d.sameMessage = same.NewMessage(d.transmitter, func(m *same.Message) {
			d.fireEvent(newSAMEMessageReceivedEvent(m))
		})
	}

	if resp1&sameHeaderReady != 0 && d.sameMessage != nil {
		h, err := c.readHeader(d)
		if err != nil {
			return nil, err
		}
		if err := d.sameMessage.AddHeader(h); err == nil {
			d.fireEvent(newSAMEHeaderReceived(d.sameMessage, h))
		}
	}

	if resp1&sameEndOfMsg != 0 {
		if d.sameMessage != nil {
			d.sameMessage.FullyReceived(true, false)
			d.sameMessage = nil
		}
		d.lastEOM = time.Now()
		d.fireEvent(newEndOfMessage())
	}

	return resp1, nil
}

// sameHeaderSymbols bounds how many symbol bytes a single header-ready
// readout carries; a real broadcast's header is rarely more than sixty-odd
// characters, but the field allows up to 31 counties, so size it the way
// the reference receiver's symbol buffer is sized and let trailing bytes
// come back null (zero confidence, ignored by the scrubber).
const sameHeaderSymbols = 255

// readHeader issues a READCHBUFF request and decodes the returned
// symbol/confidence pairs into a Header.
func (c *SameInterruptCheck) readHeader(d *Driver) (same.Header, error) {
	arg0 := byte(0x02) // READCHBUFF
	if c.Intack {
		arg0 |= 0x01
	}
	if err := d.writeBytes([]byte{opWBSAMEStatus, arg0}); err != nil {
		return same.Header{}, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return same.Header{}, err
	}
	b, err := d.readBytes(2 + 2*sameHeaderSymbols)
	if err != nil {
		return same.Header{}, err
	}

	symbols := make([]byte, sameHeaderSymbols)
	confidence := make([]int, sameHeaderSymbols)
	for i := 0; i < sameHeaderSymbols; i++ {
		confByte := b[2+2*i]
		symbols[i] = b[2+2*i+1]
		confidence[i] = int(confByte & 0x03)
	}
	return same.NewHeaderFromString(string(symbols), confidence, time.Now()), nil
}

// GetAGCStatus reports whether the chip's automatic gain control is
// disabled.
type GetAGCStatus struct{}

// Priority implements Command.
func (c *GetAGCStatus) Priority() int { return PriorityUser }

func (c *GetAGCStatus) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	if err := d.writeBytes([]byte{opWBAGCStatus}); err != nil {
		return nil, err
	}
	if _, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond); err != nil {
		return nil, err
	}
	b, err := d.readBytes(2)
	if err != nil {
		return nil, err
	}
	return b[1]&0x01 != 0, nil
}

// SetAGCStatus enables or disables automatic gain control, optionally
// overriding the gain index.
type SetAGCStatus struct {
	Disable bool
	GainIdx byte
}

// Priority implements Command.
func (c *SetAGCStatus) Priority() int { return PriorityUser }

func (c *SetAGCStatus) execute(d *Driver) (interface{}, error) {
	if !d.radioPower {
		return nil, ErrPoweredDown
	}
	var arg0 byte
	if c.Disable {
		arg0 = 1
	}
	if err := d.writeBytes([]byte{opWBAGCOverride, arg0, c.GainIdx}); err != nil {
		return nil, err
	}
	_, err := d.waitForClearToSend(context.Background(), 10*time.Millisecond)
	return nil, err
}

// Callback runs an arbitrary function on the command worker goroutine,
// giving test harnesses and one-off maintenance tasks exclusive access to
// the hardware context without defining a dedicated Command type.
type Callback struct {
	Func func(d *Driver) (interface{}, error)
}

// Priority implements Command.
func (c *Callback) Priority() int { return PriorityUser }

func (c *Callback) execute(d *Driver) (interface{}, error) { return c.Func(d) }
