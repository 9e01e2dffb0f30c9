// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package same

import "testing"

func Test_NullByteForcesZeroConfidence(t *testing.T) {
	c := NewConfidentChar(0, 9)
	if c.Confidence() != 0 {
		t.Fatalf("got confidence %d, expected 0 for a null byte", c.Confidence())
	}
	for i, v := range c.BitwiseConfidence() {
		if v != 0 {
			t.Fatalf("bit %d confidence %d, expected 0", i, v)
		}
	}
}

func Test_ConfidentChar_And(t *testing.T) {
	cases := map[string]struct {
		a, b ConfidentChar
		want byte
	}{
		"agree":    {NewConfidentChar('A', 3), NewConfidentChar('A', 3), 'A'},
		"disagree": {NewConfidentChar('A', 3), NewConfidentChar('B', 1), 'A'},
	}
	for name, tc := range cases {
		got := tc.a.And(tc.b)
		if got.Byte() != tc.want {
			t.Fatalf("%s: got %q, expected %q", name, got.Byte(), tc.want)
		}
	}
}

func Test_ConfidenceDistanceTo_WildcardCandidate(t *testing.T) {
	c := NewConfidentChar('A', 3)
	if d := c.ConfidenceDistanceTo(0); d != 0 {
		t.Fatalf("wildcard candidate distance got %d, expected 0", d)
	}
}

func Test_OverrideWith_NoOp(t *testing.T) {
	c := NewConfidentChar('A', 3)
	got := c.OverrideWith('A')
	if got.Confidence() != 3 {
		t.Fatalf("overriding with the same byte changed confidence to %d", got.Confidence())
	}
}

func Test_OverrideWith_FlippedBitsLoseConfidence(t *testing.T) {
	c := NewConfidentChar('A', 9) // 0x41
	got := c.OverrideWith('B')    // 0x42, differs in bits 0 and 1
	if got.Byte() != 'B' {
		t.Fatalf("got byte %q, expected B", got.Byte())
	}
	bw := got.BitwiseConfidence()
	if bw[0] != 0 {
		t.Fatalf("flipped bit kept confidence %d, expected 0", bw[0])
	}
	if bw[5] != 9 {
		t.Fatalf("unflipped bit lost confidence: got %d, expected 9", bw[5])
	}
}
