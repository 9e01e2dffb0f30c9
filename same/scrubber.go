// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package same

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ke4roh/si4707nwr/nwrdata"
)

// Scrubber reconstructs the most likely SAME header text from a bitwise
// merge of up to three received copies, exploiting the rigid grammar of a
// SAME header to recover bytes that transmission noise destroyed.
//
// Responsibilities:
//   - identify the correct length of the message and fix the sentinel
//     characters that mark its shape
//   - substitute characters that aren't legitimate but are close to a known
//     valid value
//   - know the transmitter's county list and WFO, when available, to narrow
//     the substitution candidates further
type Scrubber struct {
	headers     []Header
	message     ConfidentString
	transmitter string
	counties    []string
	wfo         string
}

// NewScrubber builds a Scrubber from the received header copies, optionally
// narrowed by the known transmitter's county and WFO data.
func NewScrubber(headers []Header, transmitter string) *Scrubber {
	msg := headers[0]
	for i := 1; i < len(headers); i++ {
		msg = msg.And(headers[i])
	}

	s := &Scrubber{
		headers:     headers,
		message:     msg.ConfidentString(),
		transmitter: transmitter,
	}
	if transmitter != "" {
		if counties, err := nwrdata.Counties(transmitter); err == nil {
			sorted := append([]string(nil), counties...)
			sort.Strings(sorted)
			s.counties = sorted
			if wfo, err := nwrdata.WFO(transmitter); err == nil {
				s.wfo = wfo
			}
		}
	}
	return s
}

// Scrub performs the full four-stage reconstruction and returns the
// resulting best-guess header text.
func (s *Scrubber) Scrub() ConfidentString {
	s.fixLength()
	s.subValidCodes(1, Weighted(OriginatorCodes...), math.Max(4, medianConfidence(s.message.Confidence())))
	s.subValidCodes(5, Weighted(EventCodes...), math.Max(4, medianConfidence(s.message.Confidence())))

	plusIx := s.message.IndexByte('+')
	s.subValidCodes(plusIx+1, ValidDurations, math.Max(4, medianConfidence(s.message.Confidence())))

	if s.wfo != "" {
		s.subValidCodes(plusIx+14, Weighted(s.wfo), math.Max(4, medianConfidence(s.message.Confidence())))
	} else {
		s.subPrintable(plusIx+14, plusIx+19, math.Max(4, medianConfidence(s.message.Confidence())))
	}

	start := s.headers[0].Time()
	validTimes := make([]WeightedString, 0, 5)
	for _, wo := range []struct {
		weight float64
		offset int
	}{{0.5, -4}, {0.7, -3}, {0.9, -2}, {1.1, -1}, {1, 0}} {
		t := start.Add(time.Duration(wo.offset) * time.Minute).UTC()
		jjjhhmm := fmt.Sprintf("%03d%02d%02d", t.YearDay(), t.Hour(), t.Minute())
		validTimes = append(validTimes, WeightedString{Weight: wo.weight, Value: jjjhhmm})
	}
	s.subValidCodes(plusIx+6, validTimes, math.Max(4, medianConfidence(s.message.Confidence())))

	s.subCounties(plusIx)
	return s.message
}

// fixLength identifies the message shape (which depends only on the number
// of county codes present) and trims the message to its end sentinel.
func (s *Scrubber) fixLength() {
	candidates := shellCandidates()
	msg, err := s.message.Closest(Weighted(candidates...), math.Inf(1))
	if err == ErrAmbiguous {
		return
	}
	plus := msg.IndexByte('+')
	if plus < 0 {
		s.message = msg
		return
	}
	s.message = msg.Slice(0, plus+len(endSequence))
}

// subValidCodes replaces the word at offset with whichever candidate is
// closest, when that substitution is within maxDistance.
func (s *Scrubber) subValidCodes(offset int, choices []WeightedString, maxDistance float64) {
	if len(choices) == 0 {
		return
	}
	wordLen := len(choices[0].Value)
	end := offset + wordLen
	if offset < 0 || end > s.message.Len() {
		return
	}
	word := s.message.Slice(offset, end)
	clean, err := word.Closest(choices, maxDistance)
	if err == ErrAmbiguous {
		return
	}
	if clean.String() != word.String() {
		s.message = s.message.Slice(0, offset).Concat(clean).Concat(s.message.Slice(offset+clean.Len(), s.message.Len()))
	}
}

// subPrintable substitutes every character in [start,end) for the best
// match among the printable ASCII alphabet, used when no known-valid set
// applies to that position.
func (s *Scrubber) subPrintable(start, end int, maxDistance float64) {
	pc := Weighted(printableAlphabet()...)
	for j := start; j < end; j++ {
		s.subValidCodes(j, pc, maxDistance)
	}
}

// subCounties substitutes the county digit groups, preferring the
// transmitter's known counties in ascending order when available.
func (s *Scrubber) subCounties(plusIx int) {
	maxDistance := math.Max(4, medianConfidence(s.message.Confidence()))

	if s.counties == nil {
		for i := 9; i < plusIx; i += 7 {
			s.subPrintable(i, i+7, maxDistance)
		}
		return
	}

	weighted := make([]WeightedString, len(s.counties))
	for cx, c := range s.counties {
		weighted[cx] = WeightedString{Weight: 1 - float64(cx)/48.0, Value: c}
	}

	for i := 9; i < plusIx; i += 7 {
		s.subValidCodes(i, weighted, maxDistance)
		for len(weighted) > 0 && i+7 < plusIx && weighted[0].Value != s.message.Slice(i, i+6).String() {
			weighted = weighted[1:]
		}
	}
}

func medianConfidence(conf []int) float64 {
	if len(conf) == 0 {
		return 0
	}
	sorted := append([]int(nil), conf...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
