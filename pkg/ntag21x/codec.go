package ntag21x

// Codec is the radio-layer collaborator (spec.md §6): it turns decoded
// bit streams into the primitives the Session FSM needs — REQA/WUPA
// recognition, CL1/CL2 anticollision bit matching, and CRC_A — without
// this package needing to know anything about the analog front end or
// bit-level framing. Production firmware supplies its own; RefCodec is
// a stdlib reference implementation.
type Codec interface {
	// WakeUp inspects the incoming frame (buf, bitCount bits) for REQA or
	// WUPA. REQA is only recognized when fromHalt is false (REQA does not
	// wake a halted tag). On a match it returns the ATQA response frame
	// and true.
	WakeUp(buf []byte, bitCount int, atqa uint16, fromHalt bool) (resp Frame, recognized bool)

	// Select performs CL1/CL2 anticollision/select bit matching: if the
	// reader's frame (buf, bitCount bits) selects uidBlock in full, it
	// returns the 1-byte SAK response frame and true.
	Select(buf []byte, bitCount int, uidBlock [4]byte, sak byte) (resp Frame, matched bool)

	// AppendCRC appends a CRC_A to data and returns the extended slice.
	AppendCRC(data []byte) []byte

	// CheckCRC verifies the CRC_A in the last 2 bytes of data against the
	// preceding bytes.
	CheckCRC(data []byte) bool
}

// Wire-level constants (spec.md §6). ATQA is transmitted little-endian
// on the wire; RefCodec.WakeUp does that framing.
const (
	atqaValue uint16 = 0x0044

	// SAK_CL1: "incomplete" — another cascade level follows.
	sakCL1 byte = 0x04
	// SAK_CL2: "complete, not ISO/IEC 14443-4 compliant".
	sakCL2 byte = 0x00
)
