// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package same

import (
	"math"
	"testing"
	"time"
)

func Test_ConfidentString_RoundTrip(t *testing.T) {
	s := NewConfidentString("ABC", []int{9, 9, 9})
	if s.String() != "ABC" {
		t.Fatalf("got %q, expected ABC", s.String())
	}
	for _, c := range s.Confidence() {
		if c != 9 {
			t.Fatalf("got confidence %d, expected 9", c)
		}
	}
}

func Test_ConfidentString_And_ExtendsWithLonger(t *testing.T) {
	a := NewConfidentString("AB", []int{9, 9})
	b := NewConfidentString("ABC", []int{9, 9, 9})
	got := a.And(b)
	if got.String() != "ABC" {
		t.Fatalf("got %q, expected ABC", got.String())
	}
}

func Test_ConfidentString_ConfidenceDistanceTo(t *testing.T) {
	cases := map[string]struct {
		self      string
		candidate string
		want      int
	}{
		"exact match":    {"ABC", "ABC", 0},
		"wildcard chars": {"ABC", "\x00\x00\x00", 0},
	}
	for name, tc := range cases {
		conf := make([]int, len(tc.self))
		for i := range conf {
			conf[i] = 9
		}
		s := NewConfidentString(tc.self, conf)
		if got := s.ConfidenceDistanceTo(tc.candidate); got != tc.want {
			t.Fatalf("%s: got distance %d, expected %d", name, got, tc.want)
		}
	}
}

func Test_ConfidentString_OverrideWith_SkipsNulls(t *testing.T) {
	s := NewConfidentString("AXC", []int{9, 9, 9})
	got := s.OverrideWith("A\x00C")
	if got.String() != "AXC" {
		t.Fatalf("got %q, expected AXC (null positions left unchanged)", got.String())
	}
}

func Test_ConfidentString_Closest_PicksNearest(t *testing.T) {
	s := NewConfidentString("CAT", []int{9, 9, 9})
	candidates := Weighted("CAT", "DOG", "BAT")
	got, err := s.Closest(candidates, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "CAT" {
		t.Fatalf("got %q, expected CAT", got.String())
	}
}

func Test_ConfidentString_Closest_Ambiguous(t *testing.T) {
	s := NewConfidentString("\x00\x00\x00", []int{0, 0, 0})
	candidates := Weighted("CAT", "DOG")
	_, err := s.Closest(candidates, 100)
	if err != ErrAmbiguous {
		t.Fatalf("got %v, expected ErrAmbiguous", err)
	}
}

func Test_ConfidentString_Closest_OverMaxDistanceLeavesUnchanged(t *testing.T) {
	s := NewConfidentString("XXX", []int{9, 9, 9})
	candidates := Weighted("CAT")
	got, err := s.Closest(candidates, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "XXX" {
		t.Fatalf("got %q, expected XXX unchanged (distance exceeds max)", got.String())
	}
}

// Test_ConfidentString_MergeReinforcesPartialHeaders merges a short,
// partially received header with two copies of a longer one (mirroring a
// common reception pattern, where an early header copy goes stale before
// later copies complete), then recovers the originator code's null byte
// through the same substitution path Scrubber.subValidCodes uses.
func Test_ConfidentString_MergeReinforcesPartialHeaders(t *testing.T) {
	now := time.Now().UTC()
	h1 := NewHeaderFromString("-E\x00S-RWT", []int{2, 1, 2, 3, 2, 2, 1, 2}, now)
	h2 := NewHeaderFromString("-E\x00S-RWT-0\x007183+",
		[]int{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 2, 3}, now)
	h3 := h2 // "two copies of" the same received header

	merged := h1.And(h2).And(h3).ConfidentString()

	if b, conf := merged.At(10).Byte(), merged.At(10).Confidence(); b != 0 || conf >= 3 {
		t.Fatalf("position 10 = (%q, conf %d), expected a low-confidence null", b, conf)
	}

	maxDistance := math.Max(4, medianConfidence(merged.Confidence()))
	word := merged.Slice(1, 4)
	clean, err := word.Closest(Weighted(OriginatorCodes...), maxDistance)
	if err != nil {
		t.Fatalf("Closest: %v", err)
	}
	if clean.String() != "EAS" {
		t.Fatalf("got %q, expected the originator code reconstructed as EAS", clean.String())
	}
	if got := clean.Confidence()[1]; got < 4 {
		t.Fatalf("reconstructed 'A' has confidence %d, expected reinforcement from three copies to clear 4", got)
	}
}
