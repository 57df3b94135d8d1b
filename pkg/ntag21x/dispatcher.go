package ntag21x

// Opcodes (spec.md §4.2). From the original's CMD_* defines.
const (
	CmdGetVersion  byte = 0x60
	CmdRead        byte = 0x30
	CmdFastRead    byte = 0x3A
	CmdWrite       byte = 0xA2
	CmdCompatWrite byte = 0xA0
	CmdReadCnt     byte = 0x39
	CmdPwdAuth     byte = 0x1B
	CmdReadSig     byte = 0x3C
	CmdHalt        byte = 0x50
)

const (
	// pageWriteMin: pages 0-1 (UID region) are not writable through the
	// standard WRITE/COMPAT_WRITE commands.
	pageWriteMin = 2

	readBytesPerCmd = 16 // READ returns 4 pages
	sigLength       = 32
	versionLength   = 8
)

// commandLen is the logical (CRC-stripped) frame length each opcode
// requires. A frame shorter than this NAKs rather than indexing buf out
// of bounds, unlike the original's fixed-size global buffer, which never
// panics on a short logical command.
var commandLen = map[byte]int{
	CmdGetVersion:  1,
	CmdRead:        2,
	CmdFastRead:    3,
	CmdWrite:       2 + pageSize,
	CmdCompatWrite: 2,
	CmdPwdAuth:     1 + 4,
	CmdReadSig:     1,
	CmdHalt:        2,
}

// compatWriteCommitLen is the logical length required to commit an armed
// COMPAT_WRITE: 2 header bytes plus the 4 data bytes.
const compatWriteCommitLen = 2 + pageSize

// dispatch executes one Active-state command (spec.md §4.2). buf holds
// the frame with CRC_A already stripped; byteCount is its length. The
// returned Frame always carries an appended CRC_A (via s.Codec.AppendCRC),
// except for ACK/NAK (4-bit) and HALT (no response) which spec.md
// specifies as uncrced short frames.
func (s *Session) dispatch(buf []byte, byteCount int) Frame {
	if s.compat.armed {
		if byteCount < compatWriteCommitLen {
			s.compat.disarm()
			return s.nak(buf[0], NAKInvalidArg)
		}
		return s.commitCompatWrite(buf)
	}

	cmd := buf[0]
	if want, ok := commandLen[cmd]; ok && byteCount < want {
		return s.nak(cmd, NAKInvalidArg)
	}

	switch cmd {
	case CmdGetVersion:
		return s.cmdGetVersion()
	case CmdRead:
		return s.cmdRead(buf)
	case CmdFastRead:
		return s.cmdFastRead(buf)
	case CmdWrite:
		return s.cmdWrite(buf)
	case CmdCompatWrite:
		return s.cmdCompatWrite(buf)
	case CmdPwdAuth:
		return s.cmdPwdAuth(buf)
	case CmdReadSig:
		return s.cmdReadSig()
	case CmdHalt:
		return s.cmdHalt(buf)
	case CmdReadCnt:
		// Recognized but not answered by this core (spec.md §4.2: "falls
		// through to the default branch"). The original defines
		// CMD_READ_CNT but never handles it either — see DESIGN.md.
		fallthrough
	default:
		s.state = StateIdle
		return NoResponse
	}
}

func (s *Session) nak(cmd byte, code byte) Frame {
	return (&NAKError{Cmd: cmd, Code: code}).Frame()
}

func (s *Session) ack() Frame {
	return Frame{Data: []byte{ackValue}, Bits: nakAckFrameBits}
}

func (s *Session) withCRC(data []byte) Frame {
	resp := s.Codec.AppendCRC(data)
	return Frame{Data: resp, Bits: len(resp) * 8}
}

// cmdGetVersion answers GET_VERSION (0x60): an 8-byte vendor/version
// block, constant except for byte 6 which encodes the variant.
func (s *Session) cmdGetVersion() Frame {
	buf := make([]byte, versionLength)
	buf[0], buf[1], buf[2], buf[3], buf[4], buf[5] = 0x00, 0x04, 0x04, 0x02, 0x01, 0x00
	buf[6] = s.Profile.versionByte6
	buf[7] = 0x03
	return s.withCRC(buf)
}

// cmdRead answers READ (0x30): 16 bytes (4 pages) starting at addr,
// wrapping modulo limit (PageCount, or FirstAuthenticatedPage when
// read-protected and unauthenticated — spec.md §4.2/§4.3).
func (s *Session) cmdRead(buf []byte) Frame {
	addr := buf[1]
	limit := s.auth.readLimit(s.Profile.PageCount)
	if addr >= limit {
		return s.nak(CmdRead, NAKInvalidArg)
	}

	out := make([]byte, readBytesPerCmd)
	page := addr
	for offset := 0; offset < readBytesPerCmd; offset += pageSize {
		s.Mem.Read(out[offset:offset+pageSize], int(page)*pageSize, pageSize)
		page++
		if page == limit {
			page = 0
		}
	}
	return s.withCRC(out)
}

// cmdFastRead answers FAST_READ (0x3A): pages [start, end] inclusive, no
// wraparound. Under read-protect, both endpoints (not intermediate
// pages) must satisfy the access predicate.
func (s *Session) cmdFastRead(buf []byte) Frame {
	start, end := buf[1], buf[2]
	pageCount := byte(s.Profile.PageCount)
	if start > end || start >= pageCount || end >= pageCount {
		return s.nak(CmdFastRead, NAKInvalidArg)
	}
	if s.auth.readProtected {
		if !s.auth.authOK(start) || !s.auth.authOK(end) {
			return s.nak(CmdFastRead, NAKNotAuthed)
		}
	}

	length := int(end-start+1) * pageSize
	out := make([]byte, length)
	s.Mem.Read(out, int(start)*pageSize, length)
	return s.withCRC(out)
}

// cmdWrite answers WRITE (0xA2): writes 4 bytes to addr after validating
// bounds and the access predicate.
func (s *Session) cmdWrite(buf []byte) Frame {
	addr := buf[1]
	if addr < pageWriteMin || int(addr) >= s.Profile.PageCount {
		return s.nak(CmdWrite, NAKInvalidArg)
	}
	if !s.auth.authOK(addr) {
		return s.nak(CmdWrite, NAKNotAuthed)
	}
	var data [pageSize]byte
	copy(data[:], buf[2:2+pageSize])
	s.Mem.WritePage(addr, data)
	return s.ack()
}

// cmdCompatWrite answers COMPAT_WRITE (0xA0): validates like WRITE, then
// arms the compat latch so the next frame's bytes 2-5 land on addr.
func (s *Session) cmdCompatWrite(buf []byte) Frame {
	addr := buf[1]
	if addr < pageWriteMin || int(addr) >= s.Profile.PageCount {
		return s.nak(CmdCompatWrite, NAKInvalidArg)
	}
	if !s.auth.authOK(addr) {
		return s.nak(CmdCompatWrite, NAKNotAuthed)
	}
	s.compat.arm(addr)
	return s.ack()
}

// commitCompatWrite consumes the frame following an armed COMPAT_WRITE:
// bytes 2-5 are written to the latched page regardless of the frame's
// own opcode byte. The latch is always cleared afterward, even if the
// frame is too short to supply 4 data bytes.
func (s *Session) commitCompatWrite(buf []byte) Frame {
	page := s.compat.page
	s.compat.disarm()
	if len(buf) < 2+pageSize {
		return s.nak(buf[0], NAKInvalidArg)
	}
	var data [pageSize]byte
	copy(data[:], buf[2:2+pageSize])
	s.Mem.WritePage(page, data)
	return s.ack()
}

// cmdPwdAuth answers PWD_AUTH (0x1B). For NTAG213/215/216 it compares
// the supplied 4 bytes against the stored PWD, authenticating on a
// match. For UltramanZ it instead overwrites PWD with the supplied
// bytes unconditionally and never authenticates — spec.md §4.2/§9
// documents this asymmetry as deliberate, not a bug to fix.
func (s *Session) cmdPwdAuth(buf []byte) Frame {
	var supplied [4]byte
	copy(supplied[:], buf[1:1+4])

	if s.Profile.Variant == UltramanZ {
		writePWD(s.Mem, s.Profile, supplied)
	} else {
		stored := readPWD(s.Mem, s.Profile)
		if stored != supplied {
			return s.nak(CmdPwdAuth, NAKNotAuthed)
		}
		s.auth.authenticated = true
	}

	pack := readPACK(s.Mem, s.Profile)
	return s.withCRC(pack[:])
}

// cmdReadSig answers READ_SIG (0x3C): a fixed 0xCA pattern. The real IC
// returns a factory ECDSA signature; originality-signature verification
// is an explicit Non-goal (spec.md §1).
func (s *Session) cmdReadSig() Frame {
	buf := make([]byte, sigLength)
	for i := range buf {
		buf[i] = 0xCA
	}
	return s.withCRC(buf)
}

// cmdHalt answers HALT (0x50): transitions to Halt with no response if
// the second byte is 0, else NAKs.
func (s *Session) cmdHalt(buf []byte) Frame {
	if len(buf) < 2 || buf[1] != 0x00 {
		return s.nak(CmdHalt, NAKInvalidArg)
	}
	s.state = StateHalt
	return NoResponse
}
