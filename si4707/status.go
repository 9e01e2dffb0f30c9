// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import "fmt"

// Status is the single status byte returned by every Si4707 command and by
// the GET_INT_STATUS command in particular.
type Status byte

const (
	statusCTS     Status = 1 << 7 // clear to send
	statusErr     Status = 1 << 6 // error in the preceding command
	statusRSQInt  Status = 1 << 3 // received signal quality interrupt
	statusSAMEInt Status = 1 << 2 // SAME interrupt
	statusASQInt  Status = 1 << 1 // audio signal quality (alert tone) interrupt
	statusSTCInt  Status = 1 << 0 // seek/tune complete interrupt
	statusAnyInt  Status = 0x0F
)

// IsClearToSend reports the CTS bit.
func (s Status) IsClearToSend() bool { return s&statusCTS != 0 }

// IsError reports whether the chip flagged the preceding command as bad.
func (s Status) IsError() bool { return s&statusErr != 0 }

// IsReceivedSignalQualityInterrupt reports the RSQINT bit.
func (s Status) IsReceivedSignalQualityInterrupt() bool { return s&statusRSQInt != 0 }

// IsSAMEInterrupt reports the SAMEINT bit.
func (s Status) IsSAMEInterrupt() bool { return s&statusSAMEInt != 0 }

// IsAudioSignalQualityInterrupt reports the ASQINT bit (1050 Hz alert tone).
func (s Status) IsAudioSignalQualityInterrupt() bool { return s&statusASQInt != 0 }

// IsSeekTuneComplete reports the STCINT bit.
func (s Status) IsSeekTuneComplete() bool { return s&statusSTCInt != 0 }

// IsInterrupt reports whether any of the four interrupt bits are set.
func (s Status) IsInterrupt() bool { return s&statusAnyInt != 0 }

func (s Status) String() string {
	return fmt.Sprintf("Status{CTS:%t ERR:%t RSQ:%t SAME:%t ASQ:%t STC:%t}",
		s.IsClearToSend(), s.IsError(), s.IsReceivedSignalQualityInterrupt(),
		s.IsSAMEInterrupt(), s.IsAudioSignalQualityInterrupt(), s.IsSeekTuneComplete())
}

// newStatus builds a Status from the chip's first response byte, returning
// a StatusError if the chip reports CTS together with an error condition.
func newStatus(b byte) (Status, error) {
	s := Status(b)
	if s.IsClearToSend() && s.IsError() {
		return s, &StatusError{Status: s}
	}
	return s, nil
}
