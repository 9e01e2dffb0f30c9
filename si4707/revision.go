// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import "fmt"

// PupRevision is the chip identification returned by PowerUp when invoked
// with function 15 (query library ID) instead of the normal boot.
type PupRevision struct {
	PartNumber   byte
	Firmware     string
	ChipRevision string
	LibraryID    byte
}

// parsePupRevision decodes an 8-byte PowerUp function-15 response:
// reserved, PN, FWMAJOR, FWMINOR, reserved, reserved, CHIPREV, LIBRARYID.
func parsePupRevision(b []byte) (PupRevision, error) {
	if len(b) < 8 {
		return PupRevision{}, fmt.Errorf("si4707: short PowerUp revision response (%d bytes)", len(b))
	}
	return PupRevision{
		PartNumber:   b[1],
		Firmware:     string([]byte{b[2], b[3]}),
		ChipRevision: string([]byte{b[6]}),
		LibraryID:    b[7],
	}, nil
}

// Revision is the chip identification returned by the GET_REV command.
type Revision struct {
	PartNumber        byte
	Firmware          string
	PatchID           uint16
	ComponentRevision string
	ChipRev           byte
}

// parseRevision decodes a 9-byte GET_REV response: reserved, PN, FWMAJOR,
// FWMINOR, PATCH (2 bytes), CMPMAJOR, CMPMINOR, CHIPREV.
func parseRevision(b []byte) (Revision, error) {
	if len(b) < 9 {
		return Revision{}, fmt.Errorf("si4707: short GET_REV response (%d bytes)", len(b))
	}
	return Revision{
		PartNumber:        b[1],
		Firmware:          string([]byte{b[2], b[3]}),
		PatchID:           uint16(b[4])<<8 | uint16(b[5]),
		ComponentRevision: string([]byte{b[6], b[7]}),
		ChipRev:           b[8],
	}, nil
}
