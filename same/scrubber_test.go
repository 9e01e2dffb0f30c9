// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package same

import (
	"fmt"
	"testing"
	"time"
)

func fullConfidence(n int) []int {
	c := make([]int, n)
	for i := range c {
		c[i] = 9
	}
	return c
}

func Test_Scrubber_LeavesAnAlreadyValidMessageUnchanged(t *testing.T) {
	now := time.Now().UTC()
	jjjhhmm := fmt.Sprintf("%03d%02d%02d", now.YearDay(), now.Hour(), now.Minute())
	text := "-WXR-TOR-037183-037151-037101+0030-" + jjjhhmm + "-KRAH/NWS-"

	h := NewHeaderFromString(text, fullConfidence(len(text)), now)
	got := NewScrubber([]Header{h}, "").Scrub()

	if got.String() != text {
		t.Fatalf("got %q, expected %q unchanged", got.String(), text)
	}
}

func Test_Scrubber_MergesTwoNoisyCopies(t *testing.T) {
	now := time.Now().UTC()
	jjjhhmm := fmt.Sprintf("%03d%02d%02d", now.YearDay(), now.Hour(), now.Minute())
	text := "-WXR-TOR-037183-037151-037101+0030-" + jjjhhmm + "-KRAH/NWS-"

	// First copy: the originator code was garbled by noise (low confidence).
	conf1 := fullConfidence(len(text))
	for i := 1; i <= 3; i++ {
		conf1[i] = 0
	}
	bad1 := []byte(text)
	bad1[1], bad1[2], bad1[3] = 'X', 'Y', 'Z'
	h1 := NewHeaderFromString(string(bad1), conf1, now)

	// Second copy: received cleanly.
	h2 := NewHeaderFromString(text, fullConfidence(len(text)), now)

	got := NewScrubber([]Header{h1, h2}, "").Scrub()
	if got.String() != text {
		t.Fatalf("got %q, expected %q after merging with a clean copy", got.String(), text)
	}
}

// Test_Scrubber_ReconstructsNoisyHeadersWithKnownTransmitter merges three
// copies of a header for a known transmitter (KID77), each with a handful
// of bytes scrambled by simulated bit noise (roughly 3% of the message),
// at different positions in each copy. No position is corrupted in more
// than one of the three copies, so the bitwise merge's majority vote
// recovers the original text exactly.
func Test_Scrubber_ReconstructsNoisyHeadersWithKnownTransmitter(t *testing.T) {
	now := time.Now().UTC()
	jjjhhmm := fmt.Sprintf("%03d%02d%02d", now.YearDay(), now.Hour(), now.Minute())
	text := "-WXR-TOR-020045-020091-020103+0030-" + jjjhhmm + "-KEAX/NWS-"

	noisePositions := [][]int{{1, 10, 30}, {6, 16, 40}, {12, 22, 50}}
	headers := make([]Header, len(noisePositions))
	for n, positions := range noisePositions {
		conf := fullConfidence(len(text))
		garbled := []byte(text)
		for _, p := range positions {
			garbled[p] ^= 0x10
			conf[p] = 0
		}
		headers[n] = NewHeaderFromString(string(garbled), conf, now)
	}

	got := NewScrubber(headers, "KID77").Scrub()
	if got.String() != text {
		t.Fatalf("got %q, expected %q reconstructed from three noisy copies", got.String(), text)
	}
}

func Test_Scrubber_KnownTransmitterNarrowsCounties(t *testing.T) {
	now := time.Now().UTC()
	jjjhhmm := fmt.Sprintf("%03d%02d%02d", now.YearDay(), now.Hour(), now.Minute())
	text := "-WXR-TOR-037063-037069-037085+0030-" + jjjhhmm + "-KRAH/NWS-"

	h := NewHeaderFromString(text, fullConfidence(len(text)), now)
	got := NewScrubber([]Header{h}, "WNG706").Scrub()

	if got.String() != text {
		t.Fatalf("got %q, expected %q using transmitter WNG706's county list", got.String(), text)
	}
}
