// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import (
	"fmt"
	"sort"

	"github.com/ke4roh/si4707nwr/nwrdata"
)

// PowerOn boots the chip (optionally loading patch first) and applies the
// given properties on top of DefaultProperties.
func (d *Driver) PowerOn(patch *PatchCommand, overrides map[string]uint16) error {
	var boot Command = &PowerUp{
		CTSInterruptEnable: true,
		CrystalOscillator:  true,
		Func:               3,
		Opmode:             0x30,
	}
	if patch != nil {
		patch.CTSInterruptEnable = true
		patch.CrystalOscillator = true
		patch.Func = 3
		patch.Opmode = 0x30
		patch.PatchEnable = true
		boot = patch
	}
	if _, err := d.do(boot); err != nil {
		return err
	}

	props := make(map[string]uint16, len(DefaultProperties)+len(overrides))
	for k, v := range DefaultProperties {
		props[k] = v
	}
	for k, v := range overrides {
		props[k] = v
	}
	for mnemonic, value := range props {
		if _, err := d.do(&SetProperty{Mnemonic: mnemonic, Value: value}); err != nil {
			return fmt.Errorf("si4707: setting %s: %w", mnemonic, err)
		}
	}
	return nil
}

// PowerOff powers the chip down gracefully.
func (d *Driver) PowerOff() error {
	_, err := d.do(&PowerDown{})
	return err
}

// Tune tunes to a known transmitter call sign, looked up via nwrdata, or
// directly to a frequency in MHz if transmitterOrFreq doesn't name a known
// station.
func (d *Driver) Tune(transmitterOrFreq string) (TuneStatusResult, error) {
	transmitter := transmitterOrFreq
	freq, err := nwrdata.Frequency(transmitterOrFreq)
	if err != nil {
		transmitter = ""
		if _, ferr := fmt.Sscanf(transmitterOrFreq, "%g", &freq); ferr != nil {
			return TuneStatusResult{}, fmt.Errorf("si4707: unknown transmitter or frequency %q", transmitterOrFreq)
		}
	}
	r, err := d.do(&TuneFrequency{Frequency: freq, Transmitter: transmitter})
	if err != nil {
		return TuneStatusResult{}, err
	}
	return r.(TuneStatusResult), nil
}

// TuneStatus reports the outcome of the most recent tune.
func (d *Driver) TuneStatus() (TuneStatusResult, error) {
	r, err := d.do(&TuneStatus{Intack: false})
	if err != nil {
		return TuneStatusResult{}, err
	}
	return r.(TuneStatusResult), nil
}

// SetVolume sets the analog output volume, 0 (mute) to 63 (loudest).
func (d *Driver) SetVolume(volume uint16) error {
	_, err := d.do(&SetProperty{Mnemonic: "RX_VOLUME", Value: volume})
	return err
}

// GetVolume reads back the current analog output volume.
func (d *Driver) GetVolume() (uint16, error) {
	r, err := d.do(&GetProperty{Mnemonic: "RX_VOLUME"})
	if err != nil {
		return 0, err
	}
	return r.(uint16), nil
}

// Mute hushes or restores the analog audio output.
func (d *Driver) Mute(hush bool) error {
	value := uint16(0)
	if hush {
		value = 3
	}
	_, err := d.do(&SetProperty{Mnemonic: "RX_HARD_MUTE", Value: value})
	return err
}

// GetMute reports whether the analog audio output is hushed.
func (d *Driver) GetMute() (bool, error) {
	r, err := d.do(&GetProperty{Mnemonic: "RX_HARD_MUTE"})
	if err != nil {
		return false, err
	}
	return r.(uint16) != 0, nil
}

// GetAGC reports whether automatic gain control is enabled.
func (d *Driver) GetAGC() (bool, error) {
	r, err := d.do(&GetAGCStatus{})
	if err != nil {
		return false, err
	}
	return !r.(bool), nil
}

// SetAGC enables or disables automatic gain control.
func (d *Driver) SetAGC(enabled bool) error {
	_, err := d.do(&SetAGCStatus{Disable: !enabled})
	return err
}

// Scan sweeps every known transmitter and returns the call signs whose SNR
// and RSSI meet the default WB_VALID_SNR_THRESHOLD and
// WB_VALID_RSSI_THRESHOLD values in the driver's property catalog, ordered
// by call sign.
func (d *Driver) Scan() ([]string, error) {
	names := make([]string, 0, len(nwrdata.Transmitters))
	for name := range nwrdata.Transmitters {
		names = append(names, name)
	}
	sort.Strings(names)

	var found []string
	for _, name := range names {
		if _, err := d.Tune(name); err != nil {
			return nil, err
		}
		r, err := d.do(&ReceivedSignalQualityCheck{})
		if err != nil {
			return nil, err
		}
		rsq := r.(TuneStatusResult)
		if rsq.SNR >= byte(properties["WB_VALID_SNR_THRESHOLD"].value) &&
			rsq.RSSI >= byte(properties["WB_VALID_RSSI_THRESHOLD"].value) {
			found = append(found, name)
		}
	}
	return found, nil
}
