// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package same

import (
	"fmt"
	"testing"
	"time"
)

func Test_Message_FullyReceived_AfterThreeHeaders(t *testing.T) {
	m := NewMessage("WXL58", nil)
	h := NewHeaderFromString("-WXR-TOR-037183+0030-1181805-KRAH/NWS-", fullConfidence(39), time.Now())
	for i := 0; i < 3; i++ {
		if m.FullyReceived(false, false) {
			t.Fatalf("message reported complete after %d headers", i)
		}
		if err := m.AddHeader(h); err != nil {
			t.Fatalf("AddHeader %d: %v", i, err)
		}
	}
	if !m.FullyReceived(false, false) {
		t.Fatalf("message not complete after 3 headers")
	}
}

func Test_Message_FullyReceived_MakeItSo(t *testing.T) {
	m := NewMessage("WXL58", nil)
	if m.FullyReceived(false, false) {
		t.Fatalf("freshly created message reported complete")
	}
	if !m.FullyReceived(true, false) {
		t.Fatalf("makeItSo did not force completion")
	}
}

func Test_Message_ReceivedCallback_FiresOnce(t *testing.T) {
	calls := 0
	m := NewMessage("WXL58", func(*Message) { calls++ })
	m.FullyReceived(true, false)
	m.FullyReceived(false, false)
	m.FullyReceived(false, false)
	if calls != 1 {
		t.Fatalf("got %d callback invocations, expected 1", calls)
	}
}

func Test_Message_AddHeader_RejectsAfterCompletion(t *testing.T) {
	m := NewMessage("WXL58", nil)
	m.FullyReceived(true, false)
	h := NewHeaderFromString("-WXR-TOR-037183+0030-1181805-KRAH/NWS-", fullConfidence(39), time.Now())
	if err := m.AddHeader(h); err == nil {
		t.Fatalf("expected error adding a header to a completed message")
	}
}

func Test_Message_Accessors(t *testing.T) {
	now := time.Now().UTC()
	jjjhhmm := fmt.Sprintf("%03d%02d%02d", now.YearDay(), now.Hour(), now.Minute())
	text := "-WXR-TOR-037183+0030-" + jjjhhmm + "-KRAH/NWS-"

	m := NewMessageFromString(text)

	if got := m.GetOriginator(); got != "WXR" {
		t.Fatalf("GetOriginator: got %q, expected WXR", got)
	}
	if got := m.GetEventType(); got != "TOR" {
		t.Fatalf("GetEventType: got %q, expected TOR", got)
	}
	counties, err := m.GetCounties()
	if err != nil {
		t.Fatalf("GetCounties: %v", err)
	}
	if len(counties) != 1 || counties[0] != "037183" {
		t.Fatalf("GetCounties: got %v, expected [037183]", counties)
	}
	dur, err := m.GetDurationSec()
	if err != nil {
		t.Fatalf("GetDurationSec: %v", err)
	}
	if dur != 30*60 {
		t.Fatalf("GetDurationSec: got %d, expected 1800", dur)
	}
	broadcaster, err := m.GetBroadcaster()
	if err != nil {
		t.Fatalf("GetBroadcaster: %v", err)
	}
	if broadcaster != "KRAH/NWS" {
		t.Fatalf("GetBroadcaster: got %q, expected KRAH/NWS", broadcaster)
	}
	// The FIPS code in a SAME message carries a leading partial-county flag
	// digit, so a bare 5-digit FIPS core is compared against the last five
	// digits of each county code.
	if applies, err := m.AppliesToFIPS("37183"); err != nil || !applies {
		t.Fatalf("AppliesToFIPS(37183): got (%v, %v), expected (true, nil)", applies, err)
	}
	if applies, err := m.AppliesToFIPS("37999"); err != nil || applies {
		t.Fatalf("AppliesToFIPS(37999): got (%v, %v), expected (false, nil)", applies, err)
	}
}

func Test_Message_IncompleteMessageErrors(t *testing.T) {
	m := NewMessage("WXL58", nil)
	if _, err := m.GetDurationStr(); err != ErrIncomplete {
		t.Fatalf("got %v, expected ErrIncomplete", err)
	}
}

