// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package same

import (
	"errors"
	"fmt"
	"time"
)

// ErrIncomplete is returned when an accessor is called on a Message that
// has not been fully received and the field it needs hasn't arrived yet.
var ErrIncomplete = errors.New("same: message incomplete")

// completionTimeout is how long a Message waits for a repeat header before
// considering itself fully received, matching the three-transmission
// cadence of a real SAME broadcast.
const completionTimeout = 6 * time.Second

// Message collects up to three copies of a SAME header broadcast together,
// knows when it has waited long enough (or received enough copies) to call
// itself complete, and lazily reconstructs the most likely original text.
//
// Responsibilities:
//   - collect the multiple headers
//   - know when it is fully received (timeout, enough copies, or an
//     explicit caller signal)
//   - know the certainty of the aggregated header
//   - expose the fields of a SAME header once reconstructed
type Message struct {
	transmitter      string
	headers          []Header
	receivedCallback func(*Message)
	startTime        time.Time
	timeout          time.Time
	published        time.Time
	eventID          string

	reconstructed *ConfidentString
}

// NewMessage starts a new, empty Message for headers arriving from
// transmitter. receivedCallback, if non-nil, is invoked exactly once, the
// first time FullyReceived reports true.
func NewMessage(transmitter string, receivedCallback func(*Message)) *Message {
	now := time.Now()
	return &Message{
		transmitter:      transmitter,
		headers:          nil,
		receivedCallback: receivedCallback,
		startTime:        now,
		timeout:          now.Add(completionTimeout),
		published:        now,
		eventID:          fmt.Sprintf("%s-%.3f", transmitter, float64(now.UnixNano())/1e9),
	}
}

// NewMessageFromHeaders reconstitutes a (closed) Message from header copies
// already captured, e.g. when replaying a recorded broadcast.
func NewMessageFromHeaders(transmitter string, headers []Header) *Message {
	m := &Message{
		transmitter: transmitter,
		headers:     headers,
		startTime:   headers[0].Time(),
		timeout:     headers[0].Time().Add(completionTimeout),
	}
	m.published = m.startTime
	m.eventID = fmt.Sprintf("%s-%.3f", transmitter, float64(m.startTime.UnixNano())/1e9)
	return m
}

// NewMessageFromString parses a single already-reconstructed header string
// (confidence 9 throughout), useful for tests and for replaying logged
// text.
func NewMessageFromString(s string) *Message {
	conf := make([]int, len(s))
	for i := range conf {
		conf[i] = 9
	}
	avg := NewConfidentString(s, conf)
	m := &Message{
		startTime: time.Now(),
		timeout:   time.Unix(0, 0), // already in the past: fully received
	}
	m.reconstructed = &avg
	if t, err := m.GetStartTimeSec(); err == nil {
		m.startTime = t
	}
	m.published = m.startTime
	m.eventID = avg.String()
	return m
}

// AddHeader appends a newly received copy. It is an error to add a header
// to a message that has already completed.
func (m *Message) AddHeader(h Header) error {
	if m.FullyReceived(false, false) {
		return errors.New("same: message is already complete")
	}
	m.headers = append(m.headers, h)
	m.timeout = h.Time().Add(completionTimeout)
	return nil
}

// FullyReceived reports whether this message is done collecting copies:
// either the timeout has elapsed or three copies have arrived.
//
// makeItSo forces completion immediately. extendTimeout pushes the timeout
// another completionTimeout into the future when the message is not yet
// complete, useful for a caller that wants to keep listening a bit longer.
func (m *Message) FullyReceived(makeItSo, extendTimeout bool) bool {
	if makeItSo {
		m.timeout = time.Unix(0, 0)
	}
	complete := time.Now().After(m.timeout) || len(m.headers) >= 3
	if complete && m.receivedCallback != nil {
		cb := m.receivedCallback
		m.receivedCallback = nil
		cb(m)
	}
	if !complete && extendTimeout {
		m.timeout = time.Now().Add(completionTimeout)
	}
	return complete
}

// GetSAMEMessage returns the best-guess reconstructed header text,
// scrubbing and memoizing it the first time it's requested after the
// message becomes complete.
func (m *Message) GetSAMEMessage() ConfidentString {
	if m.FullyReceived(false, false) {
		if m.reconstructed == nil {
			scrubbed := NewScrubber(m.headers, m.transmitter).Scrub()
			m.reconstructed = &scrubbed
		}
		return *m.reconstructed
	}
	if len(m.headers) > 0 {
		return NewScrubber(m.headers, m.transmitter).Scrub()
	}
	return ConfidentString{}
}

// EventID uniquely identifies this message among others from the same
// transmitter.
func (m *Message) EventID() string { return m.eventID }

// StartTime returns when the first copy of this message was received.
func (m *Message) StartTime() time.Time { return m.startTime }

// GetOriginator returns the three-letter originator code (ORG).
func (m *Message) GetOriginator() string {
	msg := m.GetSAMEMessage()
	if msg.Len() < 4 {
		return ""
	}
	return msg.Slice(1, 4).String()
}

// GetEventType returns the three-letter event type code (EEE).
func (m *Message) GetEventType() string {
	msg := m.GetSAMEMessage()
	if msg.Len() < 8 {
		return ""
	}
	return msg.Slice(5, 8).String()
}

func (m *Message) findPlus() (int, error) {
	msg := m.GetSAMEMessage()
	ix := msg.IndexByte('+')
	if ix < 0 {
		return 0, ErrIncomplete
	}
	return ix, nil
}

// GetCounties returns the FIPS county codes this message applies to (each
// optionally prefixed with a partial-county 'P' flag), in broadcast order.
func (m *Message) GetCounties() ([]string, error) {
	plusIx, err := m.findPlus()
	if err != nil {
		return nil, err
	}
	msg := m.GetSAMEMessage()
	return splitDash(msg.Slice(9, plusIx).String()), nil
}

func splitDash(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// GetDurationStr returns the DDDD duration field verbatim.
func (m *Message) GetDurationStr() (string, error) {
	plusIx, err := m.findPlus()
	if err != nil {
		return "", err
	}
	start := plusIx + 1
	msg := m.GetSAMEMessage()
	return msg.Slice(start, start+4).String(), nil
}

// GetStartTimeStr returns the JJJHHMM issue time field verbatim.
func (m *Message) GetStartTimeStr() (string, error) {
	plusIx, err := m.findPlus()
	if err != nil {
		return "", err
	}
	start := plusIx + 6
	msg := m.GetSAMEMessage()
	return msg.Slice(start, start+7).String(), nil
}

// GetDurationSec returns the announced duration, in seconds.
func (m *Message) GetDurationSec() (int, error) {
	d, err := m.GetDurationStr()
	if err != nil {
		return 0, err
	}
	if len(d) != 4 {
		return 0, ErrIncomplete
	}
	hh, mm := atoi2(d[0:2]), atoi2(d[2:4])
	return hh*3600 + mm*60, nil
}

// GetStartTimeSec returns the announced issue time, resolved to a full
// UTC timestamp by picking whichever year makes the day-of-year closest to
// when the message was actually received (handles the turn of the year).
func (m *Message) GetStartTimeSec() (time.Time, error) {
	jjjhhmm, err := m.GetStartTimeStr()
	if err != nil {
		return time.Time{}, err
	}
	if len(jjjhhmm) != 7 {
		return time.Time{}, ErrIncomplete
	}
	now := m.startTime.UTC()
	year := now.Year()
	issueDay := atoi3(jjjhhmm[0:3])
	if now.YearDay() < 10 && issueDay > 355 {
		year--
	} else if now.YearDay() > 355 && issueDay < 10 {
		year++
	}
	hh, mm := atoi2(jjjhhmm[3:5]), atoi2(jjjhhmm[5:7])
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return jan1.AddDate(0, 0, issueDay-1).Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute), nil
}

// GetEndTimeSec returns GetStartTimeSec plus GetDurationSec.
func (m *Message) GetEndTimeSec() (time.Time, error) {
	start, err := m.GetStartTimeSec()
	if err != nil {
		return time.Time{}, err
	}
	dur, err := m.GetDurationSec()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(dur) * time.Second), nil
}

// AppliesToFIPS reports whether fips names a county in this message's
// county list. fips may be given as a bare 5-digit state+county FIPS code
// ("37183") or with its leading partial-county flag digit ("037183") as
// broadcast in the message itself; either form is accepted and compared
// against the SSCCC core of each county code in the message.
func (m *Message) AppliesToFIPS(fips string) (bool, error) {
	if len(fips) == 6 {
		fips = fips[1:]
	}
	if len(fips) != 5 {
		return false, fmt.Errorf("same: invalid FIPS code %q", fips)
	}
	counties, err := m.GetCounties()
	if err != nil {
		return false, err
	}
	for _, c := range counties {
		if len(c) == 6 && c[1:] == fips {
			return true, nil
		}
	}
	return false, nil
}

// GetBroadcaster returns the originating WFO/station identifier field.
func (m *Message) GetBroadcaster() (string, error) {
	plusIx, err := m.findPlus()
	if err != nil {
		return "", err
	}
	start := plusIx + 14
	msg := m.GetSAMEMessage()
	end := msg.Len() - 1
	if end < start {
		end = start
	}
	return msg.Slice(start, end).String(), nil
}

func (m *Message) String() string {
	msg := m.GetSAMEMessage()
	return fmt.Sprintf("Message: {%q, confidence: %v}", msg.String(), msg.Confidence())
}

func atoi2(s string) int {
	if len(s) != 2 {
		return 0
	}
	return int(s[0]-'0')*10 + int(s[1]-'0')
}

func atoi3(s string) int {
	if len(s) != 3 {
		return 0
	}
	return int(s[0]-'0')*100 + int(s[1]-'0')*10 + int(s[2]-'0')
}

// EventPriority ranks event types for notification ordering: warnings rank
// highest, then emergencies, then statements, then tests.
func EventPriority(eventType string) int {
	switch {
	case eventType == "EQW":
		return 60
	case eventType == "TOR":
		return 55
	case eventType == "SVR" || (len(eventType) == 3 && eventType[2] == 'W'):
		return 50
	case eventType == "EVI" || (len(eventType) == 3 && eventType[2] == 'E'):
		return 30
	case len(eventType) == 3 && eventType[2] == 'T':
		return 10
	default:
		return 20
	}
}
