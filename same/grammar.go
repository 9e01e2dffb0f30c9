// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package same

// Grammar tables for the SAME header:
//
//	'-' ORIG '-' EVT '-' FIPS ('-' FIPS){0..30} '+' DDDD '-' JJJHHMM '-' WFOC/NWS '-'
//
// Reference: http://www.nws.noaa.gov/directives/sym/pd01017012curr.pdf

// OriginatorCodes are the four valid SAME originator codes.
var OriginatorCodes = []string{"EAS", "CIV", "WXR", "PEP"}

// EventCodes are the valid three-letter SAME event type codes.
var EventCodes = []string{
	"BZW", "CFA", "CFW", "DSW", "FFA", "FFW", "FFS", "FLA", "FLW", "FLS",
	"HWA", "HWW", "HUA", "HUW", "HLS", "SVA", "SVR", "SVS", "SMW", "SPS",
	"TOA", "TOR", "TRA", "TRW", "TSA", "TSW", "WSA", "WSW", "EAN", "EAT",
	"NIC", "NPT", "RMT", "RWT", "ADR", "AVA", "AVW", "CAE", "CDW", "CEM",
	"EQW", "EVI", "FRW", "HMW", "LEW", "LAE", "TOE", "NUW", "RHW", "SPW",
	"VOW", "NMN", "DMO", "TXF", "TXO", "TXB", "TXP",
}

// ValidDurations are the 14 valid duration codes, weighted so quarter-hour
// multiples are more common than 15-minute increments.
var ValidDurations = []WeightedString{
	{Weight: 1, Value: "0015"},
	{Weight: 1, Value: "0030"},
	{Weight: 1.1, Value: "0045"},
	{Weight: 1.1, Value: "0100"},
	{Weight: 1, Value: "0130"},
	{Weight: 1.1, Value: "0200"},
	{Weight: 1, Value: "0230"},
	{Weight: 1.1, Value: "0300"},
	{Weight: 0.9, Value: "0330"},
	{Weight: 1.1, Value: "0400"},
	{Weight: 0.9, Value: "0430"},
	{Weight: 1.1, Value: "0500"},
	{Weight: 0.9, Value: "0530"},
	{Weight: 1.1, Value: "0600"},
}

const (
	startSequence  = "-\x00\x00\x00-\x00\x00\x00"
	countySequence = "-\x00\x00\x00\x00\x00\x00"
	endSequence    = "+0\x00\x00\x00-\x00\x00\x00\x00\x00\x00\x00-\x00\x00\x00\x00/NWS-"
	shellTailSlack = 9 // tolerate a few bytes of trailing noise after the message
	maxCounties    = 31
)

// shellCandidates returns the shape of the message for every plausible
// county count, padded at the end to tolerate trailing noise.
func shellCandidates() []string {
	tail := make([]byte, shellTailSlack)
	candidates := make([]string, 0, maxCounties)
	for c := 1; c <= maxCounties; c++ {
		s := startSequence
		for i := 0; i < c; i++ {
			s += countySequence
		}
		s += endSequence
		s += string(tail)
		candidates = append(candidates, s)
	}
	return candidates
}

// printableAlphabet enumerates the printable ASCII characters other than
// space, '+' and '-', plus the control characters 0x10 and 0x13, used as a
// fallback candidate pool when no known-valid set applies to a position
// (WFO or county digits with no transmitter on file).
func printableAlphabet() []string {
	var out []string
	for c := 33; c < 127; c++ {
		if c == '+' || c == '-' {
			continue
		}
		out = append(out, string([]byte{byte(c)}))
	}
	out = append(out, "\x10", "\x13")
	return out
}
