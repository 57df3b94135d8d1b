package ntag21x

import "fmt"

// NAK code values, each a 4-bit frame (spec.md §4.2/§7).
// From the original's NAK_INVALID_ARG/NAK_CRC_ERROR/NAK_NOT_AUTHED/
// NAK_EEPROM_ERROR.
const (
	NAKInvalidArg   byte = 0x00
	NAKCRCError     byte = 0x01
	NAKNotAuthed    byte = 0x04
	NAKEepromError  byte = 0x05
	ackValue        byte = 0x0A
	nakAckFrameBits      = 4
)

// NAKError represents a dispatcher-level NAK response. Following
// pkg/ntag424/errors.go's SWError, the NAK code is also the wire value —
// Frame() reconstructs the 4-bit response frame directly from it.
type NAKError struct {
	Cmd  byte // opcode that produced the NAK
	Code byte // one of NAKInvalidArg, NAKCRCError, NAKNotAuthed, NAKEepromError
}

func (e *NAKError) Error() string {
	return fmt.Sprintf("command 0x%02X NAKed: %s", e.Cmd, nakDescription(e.Code))
}

// Frame returns the 4-bit wire frame for this NAK.
func (e *NAKError) Frame() Frame {
	return Frame{Data: []byte{e.Code}, Bits: nakAckFrameBits}
}

func nakDescription(code byte) string {
	switch code {
	case NAKInvalidArg:
		return "invalid argument"
	case NAKCRCError:
		return "CRC error"
	case NAKNotAuthed:
		return "not authenticated"
	case NAKEepromError:
		return "EEPROM error"
	default:
		return "unknown"
	}
}

// IsInvalidArg reports whether err is a NAKError carrying NAKInvalidArg.
func IsInvalidArg(err error) bool { return isNAKCode(err, NAKInvalidArg) }

// IsCRCError reports whether err is a NAKError carrying NAKCRCError.
func IsCRCError(err error) bool { return isNAKCode(err, NAKCRCError) }

// IsNotAuthed reports whether err is a NAKError carrying NAKNotAuthed.
func IsNotAuthed(err error) bool { return isNAKCode(err, NAKNotAuthed) }

func isNAKCode(err error, code byte) bool {
	nakErr, ok := err.(*NAKError)
	return ok && nakErr.Code == code
}

// ClassifyNAK extracts the NAK code from err, if it is a NAKError.
func ClassifyNAK(err error) (code byte, ok bool) {
	nakErr, isNAK := err.(*NAKError)
	if !isNAK {
		return 0, false
	}
	return nakErr.Code, true
}

// NAKFromFrame reconstructs the NAKError behind a dispatcher response, for
// callers on the wire side of Session.ProcessFrame that only see a Frame
// (the host CLIs' frame-by-frame logging). ok is false for ACK frames and
// ordinary data responses. The opcode that produced the NAK isn't carried
// on the wire, so Cmd is left zero.
func NAKFromFrame(f Frame) (err *NAKError, ok bool) {
	if f.Bits != nakAckFrameBits || len(f.Data) != 1 || f.Data[0] == ackValue {
		return nil, false
	}
	return &NAKError{Code: f.Data[0]}, true
}
