package ntag21x

// Byte offsets of the 7-byte double-size UID and its two BCC check
// bytes within the card image (spec.md §3). From the original's
// UID_CL1_ADDRESS/UID_BCC1_ADDRESS/UID_CL2_ADDRESS/UID_BCC2_ADDRESS.
const (
	uidCL1Addr  = 0x00 // 3 bytes
	uidCL1Size  = 3
	uidBCC1Addr = 0x03 // 1 byte
	uidCL2Addr  = 0x04 // 4 bytes
	uidCL2Size  = 4
	uidBCC2Addr = 0x08 // 1 byte (page 2 offset 0)

	// cascadeTagByte (CT) prefixes the CL1 UID block for a double-size
	// (7-byte) UID, per ISO/IEC 14443-3.
	cascadeTagByte = 0x88
)

// UID is the 7-byte double-size tag identifier.
type UID [7]byte

// ReadUID reads the 7-byte UID from the card image.
func ReadUID(mem *MemoryView) UID {
	var u UID
	mem.Read(u[0:uidCL1Size], uidCL1Addr, uidCL1Size)
	mem.Read(u[uidCL1Size:uidCL1Size+uidCL2Size], uidCL2Addr, uidCL2Size)
	return u
}

// WriteUID writes the 7-byte UID into the card image and recomputes both
// BCC check bytes, from the original's NTAG21xSetUid.
func WriteUID(mem *MemoryView, u UID) {
	bcc1 := BCC1(u)
	bcc2 := BCC2(u)
	mem.Write(u[0:uidCL1Size], uidCL1Addr, uidCL1Size)
	mem.Write([]byte{bcc1}, uidBCC1Addr, 1)
	mem.Write(u[uidCL1Size:uidCL1Size+uidCL2Size], uidCL2Addr, uidCL2Size)
	mem.Write([]byte{bcc2}, uidBCC2Addr, 1)
}

// BCC1 is the XOR check byte of the cascade-level-1 UID block
// (CT, uid[0], uid[1], uid[2]).
func BCC1(u UID) byte {
	return cascadeTagByte ^ u[0] ^ u[1] ^ u[2]
}

// BCC2 is the XOR check byte of the cascade-level-2 UID block
// (uid[3..6]).
func BCC2(u UID) byte {
	return u[3] ^ u[4] ^ u[5] ^ u[6]
}

// CL1Block returns the cascade-level-1 anticollision/select block:
// [CT=0x88, uid[0], uid[1], uid[2]].
func (u UID) CL1Block() [4]byte {
	return [4]byte{cascadeTagByte, u[0], u[1], u[2]}
}

// CL2Block returns the cascade-level-2 anticollision/select block:
// uid[3..6].
func (u UID) CL2Block() [4]byte {
	return [4]byte{u[3], u[4], u[5], u[6]}
}
