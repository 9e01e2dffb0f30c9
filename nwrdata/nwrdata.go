// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package nwrdata holds the static catalog of known NOAA Weather Radio
// transmitters: their broadcast frequency, originating weather forecast
// office, and the FIPS county codes each one covers.
//
// TODO scrape this from the web instead of hand-maintaining it.
package nwrdata

import "fmt"

// Transmitter describes one NOAA Weather Radio station.
type Transmitter struct {
	Frequency float64
	WFO       string
	Counties  []string
}

// Transmitters is the known-station catalog, keyed by station call sign.
var Transmitters = map[string]Transmitter{
	"WXL58": {
		Frequency: 162.55,
		WFO:       "KRAH",
		Counties: []string{
			"037001", "037037", "037063", "037069", "037077", "037085",
			"037101", "037105", "037125", "037135", "037145", "037151",
			"037181", "037183", "037185",
		},
	},
	"WXL29": {
		Frequency: 162.4,
		WFO:       "KLKN",
		Counties:  []string{"032013", "032027"},
	},
	"WNG706": {
		Frequency: 162.45,
		WFO:       "KRAH",
		Counties: []string{
			"037063", "037069", "037085", "037101", "037127", "037183",
			"037191", "037195",
		},
	},
	"KID77": {
		Frequency: 162.55,
		WFO:       "KEAX",
		Counties: []string{
			"020045", "020091", "020103", "020121", "020209", "029037",
			"029047", "029095", "029101", "029107", "029165", "029177",
		},
	},
}

// Frequency returns the broadcast frequency, in MHz, of transmitter.
func Frequency(transmitter string) (float64, error) {
	t, ok := Transmitters[transmitter]
	if !ok {
		return 0, fmt.Errorf("nwrdata: unknown transmitter %q", transmitter)
	}
	return t.Frequency, nil
}

// Counties returns the FIPS county codes covered by transmitter.
func Counties(transmitter string) ([]string, error) {
	t, ok := Transmitters[transmitter]
	if !ok {
		return nil, fmt.Errorf("nwrdata: unknown transmitter %q", transmitter)
	}
	return t.Counties, nil
}

// WFO returns the weather forecast office that originates transmitter's
// broadcasts.
func WFO(transmitter string) (string, error) {
	t, ok := Transmitters[transmitter]
	if !ok {
		return "", fmt.Errorf("nwrdata: unknown transmitter %q", transmitter)
	}
	return t.WFO, nil
}

// AllCounties returns every FIPS county code covered by any known
// transmitter, deduplicated.
func AllCounties() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range Transmitters {
		for _, c := range t.Counties {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
