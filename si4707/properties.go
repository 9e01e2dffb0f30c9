// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import "fmt"

// propertyDef describes one chip property: its 16-bit code, the chip's
// default value after reset, and a validator for values a caller tries to
// set.
type propertyDef struct {
	code  uint16
	value uint16
	valid func(uint16) bool
}

// properties is the catalog of Si4707 properties this driver knows about,
// keyed by mnemonic.
var properties = map[string]propertyDef{
	"GPO_IEN": {0x0001, 0x0000, func(x uint16) bool { return x&0xF030 == 0 }},
	"REFCLK_FREQ": {0x0201, 0x8000, func(x uint16) bool {
		return (x >= 31130 && x <= 34406) || x == 0
	}},
	"REFCLK_PRESCALE":          {0x0202, 0x0001, func(x uint16) bool { return x >= 1 && x <= 4095 }},
	"WB_MAX_TUNE_ERROR":        {0x5108, 0x000A, func(x uint16) bool { return x >= 1 && x <= 15 }},
	"WB_RSQ_INT_SOURCE":        {0x5200, 0x0000, func(x uint16) bool { return x <= 15 }},
	"WB_RSQ_SNR_HI_THRESHOLD":  {0x5201, 0x007F, func(x uint16) bool { return x <= 127 }},
	"WB_RSQ_SNR_LO_THRESHOLD":  {0x5202, 0x0000, func(x uint16) bool { return x <= 127 }},
	"WB_RSQ_RSSI_HI_THRESHOLD": {0x5203, 0x007F, func(x uint16) bool { return x <= 127 }},
	"WB_RSQ_RSSI_LO_THRESHOLD": {0x5204, 0x0000, func(x uint16) bool { return x <= 127 }},
	"WB_VALID_SNR_THRESHOLD":   {0x5403, 0x0003, func(x uint16) bool { return x <= 127 }},
	"WB_VALID_RSSI_THRESHOLD":  {0x5404, 0x0014, func(x uint16) bool { return x <= 127 }},
	"WB_SAME_INTERRUPT_SOURCE": {0x5500, 0x0000, func(x uint16) bool { return x <= 15 }},
	"WB_ASQ_INT_SOURCE":        {0x5600, 0x0000, func(x uint16) bool { return x <= 3 }},
	"RX_VOLUME":                {0x4000, 0x003F, func(x uint16) bool { return x <= 63 }},
	"RX_HARD_MUTE":             {0x4001, 0x0000, func(x uint16) bool { return x == 0 || x == 3 }},
}

// propertyByCode finds the mnemonic matching a 16-bit property code.
func propertyByCode(code uint16) (string, bool) {
	for mnemonic, def := range properties {
		if def.code == code {
			return mnemonic, true
		}
	}
	return "", false
}

// lookupProperty resolves a mnemonic and validates value against the
// property's range.
func lookupProperty(mnemonic string, value uint16) (propertyDef, error) {
	def, ok := properties[mnemonic]
	if !ok {
		return propertyDef{}, fmt.Errorf("si4707: unknown property %q", mnemonic)
	}
	if def.valid != nil && !def.valid(value) {
		return propertyDef{}, fmt.Errorf("si4707: value 0x%04X out of range for %s", value, mnemonic)
	}
	return def, nil
}

// DefaultProperties are applied by PowerOn after the chip completes its
// boot sequence, matching the factory-recommended weather-band receive
// configuration.
var DefaultProperties = map[string]uint16{
	"GPO_IEN":                  207,
	"WB_RSQ_SNR_HI_THRESHOLD":  127,
	"WB_RSQ_SNR_LO_THRESHOLD":  1,
	"WB_RSQ_RSSI_HI_THRESHOLD": 77,
	"WB_RSQ_RSSI_LO_THRESHOLD": 7,
	"WB_SAME_INTERRUPT_SOURCE": 9,
	"WB_ASQ_INT_SOURCE":        1,
}
