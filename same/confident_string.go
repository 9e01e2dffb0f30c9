// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package same

import (
	"errors"
	"sort"
)

// ErrAmbiguous is raised by Closest when two candidates tie for the best
// match: the caller must decide whether a low-confidence result is still
// worth emitting.
var ErrAmbiguous = errors.New("same: ambiguous reconstruction")

// WeightedString is a reconstruction candidate together with its relative
// weight; a higher weight makes the candidate cheaper to select.
type WeightedString struct {
	Weight float64
	Value  string
}

// Weighted builds an unweighted (weight 1) candidate list.
func Weighted(values ...string) []WeightedString {
	w := make([]WeightedString, len(values))
	for i, v := range values {
		w[i] = WeightedString{Weight: 1, Value: v}
	}
	return w
}

// ConfidentString is an immutable sequence of ConfidentChars.
type ConfidentString struct {
	chars []ConfidentChar
}

// NewConfidentString builds a ConfidentString from a plain string and a
// parallel slice of per-byte confidences.
func NewConfidentString(s string, confidence []int) ConfidentString {
	chars := make([]ConfidentChar, len(s))
	for i := 0; i < len(s); i++ {
		chars[i] = NewConfidentChar(s[i], confidence[i])
	}
	return ConfidentString{chars: chars}
}

// NewConfidentStringFromChars wraps an existing slice of characters. The
// slice is copied so the result stays immutable.
func NewConfidentStringFromChars(chars []ConfidentChar) ConfidentString {
	cp := make([]ConfidentChar, len(chars))
	copy(cp, chars)
	return ConfidentString{chars: cp}
}

// Len returns the number of characters.
func (s ConfidentString) Len() int { return len(s.chars) }

// At returns the character at index i.
func (s ConfidentString) At(i int) ConfidentChar { return s.chars[i] }

// Chars returns the underlying characters. The caller must not mutate the
// returned slice.
func (s ConfidentString) Chars() []ConfidentChar { return s.chars }

// String renders the plain byte content, including any null bytes.
func (s ConfidentString) String() string {
	b := make([]byte, len(s.chars))
	for i, c := range s.chars {
		b[i] = c.Byte()
	}
	return string(b)
}

// Confidence returns the byte-wise confidence of every character.
func (s ConfidentString) Confidence() []int {
	conf := make([]int, len(s.chars))
	for i, c := range s.chars {
		conf[i] = c.Confidence()
	}
	return conf
}

// Slice returns the sub-string [start:end).
func (s ConfidentString) Slice(start, end int) ConfidentString {
	if start < 0 {
		start += len(s.chars)
	}
	if end < 0 {
		end += len(s.chars)
	}
	if start < 0 {
		start = 0
	}
	if end > len(s.chars) {
		end = len(s.chars)
	}
	if start > end {
		start = end
	}
	return NewConfidentStringFromChars(s.chars[start:end])
}

// Concat concatenates another ConfidentString.
func (s ConfidentString) Concat(other ConfidentString) ConfidentString {
	out := make([]ConfidentChar, 0, len(s.chars)+len(other.chars))
	out = append(out, s.chars...)
	out = append(out, other.chars...)
	return ConfidentString{chars: out}
}

// ConcatChar appends a single character.
func (s ConfidentString) ConcatChar(c ConfidentChar) ConfidentString {
	out := make([]ConfidentChar, 0, len(s.chars)+1)
	out = append(out, s.chars...)
	out = append(out, c)
	return ConfidentString{chars: out}
}

// And merges two ConfidentStrings bit-by-bit, per ConfidentChar.And,
// extending with whichever input is longer.
func (s ConfidentString) And(other ConfidentString) ConfidentString {
	n := min(len(s.chars), len(other.chars))
	out := make([]ConfidentChar, 0, max(len(s.chars), len(other.chars)))
	for i := 0; i < n; i++ {
		out = append(out, s.chars[i].And(other.chars[i]))
	}
	if len(other.chars) < len(s.chars) {
		out = append(out, s.chars[len(other.chars):]...)
	} else if len(s.chars) < len(other.chars) {
		out = append(out, other.chars[len(s.chars):]...)
	}
	return ConfidentString{chars: out}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ConfidenceDistanceTo returns the bitwise confidence distance from this
// string to candidate. Characters beyond the shorter string count at full
// weight (every bit wrong), except trailing null characters in a longer
// candidate, which don't penalize a shorter self.
func (s ConfidentString) ConfidenceDistanceTo(candidate string) int {
	n := min(len(candidate), len(s.chars))
	distance := 0
	for i := 0; i < n; i++ {
		distance += s.chars[i].ConfidenceDistanceTo(candidate[i])
	}
	if len(candidate) < len(s.chars) {
		for _, c := range s.chars[len(candidate):] {
			bw := c.BitwiseConfidence()
			for _, v := range bw {
				distance += v
			}
		}
	}
	if len(s.chars) < len(candidate) {
		nullTail := 0
		for i := len(s.chars); i < len(candidate); i++ {
			if candidate[i] == 0 {
				nullTail++
			}
		}
		maxConf := 0
		for _, c := range s.chars {
			if c.Confidence() > maxConf {
				maxConf = c.Confidence()
			}
		}
		distance += 8 * (len(candidate) - len(s.chars) - nullTail) * maxConf
	}
	return distance
}

// OverrideWith produces a new string matching the shape of validStr. Bits
// that had to flip lose confidence; unchanged bits keep it. Null characters
// in validStr are skipped, so the corresponding position in the result is
// left as the original character (a zero-confidence null, when the original
// was shorter). A non-null position of validStr where the original was
// shorter or itself null takes validStr's byte at the mean confidence of
// the overridden positions the original did have.
func (s ConfidentString) OverrideWith(validStr string) ConfidentString {
	changed := len(s.chars) != len(validStr)
	if !changed {
		for i := 0; i < len(s.chars); i++ {
			if s.chars[i].Byte() != validStr[i] {
				changed = true
				break
			}
		}
	}
	if !changed {
		return s
	}

	d := make([]ConfidentChar, len(validStr))
	copy(d, s.chars[:min(len(s.chars), len(validStr))])
	for i := len(s.chars); i < len(validStr); i++ {
		d[i] = NewConfidentChar(0, 0)
	}

	confidenceSum := 0
	confidenceCount := 0
	for i := 0; i < len(d); i++ {
		if validStr[i] != 0 {
			d[i] = d[i].OverrideWith(validStr[i])
			if len(s.chars) > i {
				confidenceSum += d[i].Confidence()
				confidenceCount++
			}
		}
	}

	meanConfidence := 0
	if confidenceCount > 0 {
		meanConfidence = confidenceSum / confidenceCount
	}
	for i := 0; i < len(d); i++ {
		if validStr[i] != 0 && (i >= len(s.chars) || s.chars[i].Byte() == 0) {
			d[i] = NewConfidentChar(d[i].Byte(), meanConfidence)
		}
	}

	return ConfidentString{chars: d}
}

// Closest picks the candidate with the smallest effective distance
// ((1+rawDistance)/weight) and overrides this string to match it. If two
// candidates tie for best, it returns ErrAmbiguous. If the best effective
// distance exceeds maxDistance, the string is returned unchanged.
func (s ConfidentString) Closest(candidates []WeightedString, maxDistance float64) (ConfidentString, error) {
	type scored struct {
		dist float64
		val  string
	}
	scores := make([]scored, len(candidates))
	for i, c := range candidates {
		scores[i] = scored{
			dist: (1 + float64(s.ConfidenceDistanceTo(c.Value))) / c.Weight,
			val:  c.Value,
		}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].dist != scores[j].dist {
			return scores[i].dist < scores[j].dist
		}
		return scores[i].val < scores[j].val
	})
	if len(scores) > 1 && scores[0].dist == scores[1].dist {
		return ConfidentString{}, ErrAmbiguous
	}
	if scores[0].dist <= maxDistance {
		return s.OverrideWith(scores[0].val), nil
	}
	return s, nil
}

// IndexByte returns the index of the first occurrence of b, or -1.
func (s ConfidentString) IndexByte(b byte) int {
	for i, c := range s.chars {
		if c.Byte() == b {
			return i
		}
	}
	return -1
}
