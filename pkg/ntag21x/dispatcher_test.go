package ntag21x

import "testing"

// crcALen is the 2-byte CRC_A trailer that every dispatcher data response
// (everything except 4-bit ACK/NAK frames) carries.
const crcALen = 2

func issueCommand(sess *Session, data []byte) Frame {
	frame := RefCodec{}.AppendCRC(data)
	return sess.ProcessFrame(frame, len(frame)*8)
}

func TestGetVersionReportsVariantByte(t *testing.T) {
	cases := []struct {
		variant Variant
		want    byte
	}{
		{NTAG213, 0x0F},
		{NTAG215, 0x11},
		{NTAG216, 0x13},
		{UltramanZ, 0x0F},
	}
	for _, tc := range cases {
		sess, _ := newTestSession(t, tc.variant)
		selectToActive(t, sess)
		resp := issueCommand(sess, []byte{CmdGetVersion})
		if len(resp.Data) != versionLength+crcALen {
			t.Fatalf("%s: expected %d-byte version block + CRC_A, got %d", tc.variant, versionLength, len(resp.Data))
		}
		if resp.Data[6] != tc.want {
			t.Fatalf("%s: expected version byte6 %#x, got %#x", tc.variant, tc.want, resp.Data[6])
		}
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	page := byte(4)
	payload := [4]byte{0xDE, 0xAD, 0xBE, 0xEF}
	resp := issueCommand(sess, append([]byte{CmdWrite, page}, payload[:]...))
	if len(resp.Data) != 1 || resp.Data[0] != ackValue {
		t.Fatalf("WRITE: expected ACK, got %v", resp.Data)
	}

	resp = issueCommand(sess, []byte{CmdRead, page})
	if len(resp.Data) != readBytesPerCmd+crcALen {
		t.Fatalf("READ: expected %d bytes + CRC_A, got %d", readBytesPerCmd, len(resp.Data))
	}
	if resp.Data[0] != payload[0] || resp.Data[1] != payload[1] || resp.Data[2] != payload[2] || resp.Data[3] != payload[3] {
		t.Fatalf("READ: expected %v at head, got %v", payload, resp.Data[:4])
	}
}

func TestCompatWriteCommitsOnFollowingFrame(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	page := byte(6)
	resp := issueCommand(sess, []byte{CmdCompatWrite, page})
	if len(resp.Data) != 1 || resp.Data[0] != ackValue {
		t.Fatalf("COMPAT_WRITE arm: expected ACK, got %v", resp.Data)
	}

	payload := []byte{0x01, 0x02, 0x03, 0x04}
	// The original accepts any opcode byte on the follow-up frame; the
	// data always lands at bytes 2-5.
	resp = issueCommand(sess, append([]byte{0x00, 0x00}, payload...))
	if len(resp.Data) != 1 || resp.Data[0] != ackValue {
		t.Fatalf("COMPAT_WRITE commit: expected ACK, got %v", resp.Data)
	}

	resp = issueCommand(sess, []byte{CmdRead, page})
	if resp.Data[0] != payload[0] || resp.Data[1] != payload[1] || resp.Data[2] != payload[2] || resp.Data[3] != payload[3] {
		t.Fatalf("READ after COMPAT_WRITE: expected %v, got %v", payload, resp.Data[:4])
	}
}

func TestPwdAuthRequiresMatchAndUnlocksWrite(t *testing.T) {
	sess, mem := newTestSession(t, NTAG213)
	profile := ProfileFor(NTAG213)
	mem.Write([]byte{0x00, 0x00, 0x00, 0x00}, profile.ConfigByteOffset()+auth0Offset, 1)
	sess.Init()
	selectToActive(t, sess)

	page := byte(4)
	resp := issueCommand(sess, append([]byte{CmdWrite, page}, 0x01, 0x02, 0x03, 0x04))
	if len(resp.Data) != 1 || resp.Data[0] != NAKNotAuthed {
		t.Fatalf("WRITE before auth: expected NAK(NOT_AUTHED), got %v", resp.Data)
	}

	resp = issueCommand(sess, []byte{CmdPwdAuth, 0x00, 0x00, 0x00, 0x01})
	if len(resp.Data) != 1 || resp.Data[0] != NAKNotAuthed {
		t.Fatalf("wrong PWD: expected NAK(NOT_AUTHED), got %v", resp.Data)
	}

	resp = issueCommand(sess, []byte{CmdPwdAuth, 0xFF, 0xFF, 0xFF, 0xFF})
	if len(resp.Data) != 2+crcALen {
		t.Fatalf("correct PWD: expected 2-byte PACK + CRC_A, got %v", resp.Data)
	}

	resp = issueCommand(sess, append([]byte{CmdWrite, page}, 0x01, 0x02, 0x03, 0x04))
	if len(resp.Data) != 1 || resp.Data[0] != ackValue {
		t.Fatalf("WRITE after auth: expected ACK, got %v", resp.Data)
	}
}

func TestUltramanZPwdAuthNeverAuthenticates(t *testing.T) {
	sess, mem := newTestSession(t, UltramanZ)
	profile := ProfileFor(UltramanZ)
	mem.Write([]byte{0x00, 0x00, 0x00, 0x00}, profile.ConfigByteOffset()+auth0Offset, 1)
	sess.Init()
	selectToActive(t, sess)

	resp := issueCommand(sess, []byte{CmdPwdAuth, 0x11, 0x22, 0x33, 0x44})
	if len(resp.Data) != 2+crcALen {
		t.Fatalf("UltramanZ PWD_AUTH: expected 2-byte PACK reply + CRC_A, got %v", resp.Data)
	}

	resp = issueCommand(sess, append([]byte{CmdWrite, byte(4)}, 0x01, 0x02, 0x03, 0x04))
	if len(resp.Data) != 1 || resp.Data[0] != NAKNotAuthed {
		t.Fatalf("UltramanZ WRITE after PWD_AUTH: expected NAK(NOT_AUTHED) (never authenticates), got %v", resp.Data)
	}

	stored := readPWD(mem, profile)
	if stored != [4]byte{0x11, 0x22, 0x33, 0x44} {
		t.Fatalf("UltramanZ PWD_AUTH: expected PWD overwritten to supplied bytes, got %v", stored)
	}
}

func TestReadCntFallsToDefault(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	resp := issueCommand(sess, []byte{CmdReadCnt, 0x02})
	if !resp.IsNoResponse() {
		t.Fatalf("READ_CNT: expected no response (unhandled opcode), got %v", resp.Data)
	}
	if sess.CurrentState() != StateIdle {
		t.Fatalf("after READ_CNT: expected Idle, got %s", sess.CurrentState())
	}
}

func TestFastReadReturnsContiguousPages(t *testing.T) {
	sess, mem := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	pages := [][4]byte{{0x01, 0x01, 0x01, 0x01}, {0x02, 0x02, 0x02, 0x02}, {0x03, 0x03, 0x03, 0x03}}
	for i, p := range pages {
		mem.WritePage(byte(4+i), p)
	}

	resp := issueCommand(sess, []byte{CmdFastRead, 4, 6})
	if len(resp.Data) != 12+crcALen {
		t.Fatalf("FAST_READ: expected 12 bytes + CRC_A, got %d", len(resp.Data))
	}
	for i, p := range pages {
		got := resp.Data[i*4 : i*4+4]
		if got[0] != p[0] || got[1] != p[1] || got[2] != p[2] || got[3] != p[3] {
			t.Fatalf("FAST_READ: page %d expected %v, got %v", 4+i, p, got)
		}
	}
}

func TestFastReadRejectsInvertedRange(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	resp := issueCommand(sess, []byte{CmdFastRead, 6, 4})
	if len(resp.Data) != 1 || resp.Data[0] != NAKInvalidArg {
		t.Fatalf("FAST_READ inverted range: expected NAK(INVALID_ARG), got %v", resp.Data)
	}
}

func TestFastReadRequiresAuthForProtectedEndpoint(t *testing.T) {
	sess, mem := newTestSession(t, NTAG213)
	profile := ProfileFor(NTAG213)
	mem.Write([]byte{0x04}, profile.ConfigByteOffset()+auth0Offset, 1)
	mem.Write([]byte{accessProtMask}, profile.ConfigByteOffset()+accessOffset, 1)
	sess.Init()
	selectToActive(t, sess)

	// Both endpoints below AUTH0: allowed unauthenticated.
	resp := issueCommand(sess, []byte{CmdFastRead, 0, 2})
	if len(resp.Data) != 12+crcALen {
		t.Fatalf("FAST_READ below AUTH0: expected data, got %v", resp.Data)
	}

	// End endpoint at/after AUTH0: NAKs unauthenticated.
	resp = issueCommand(sess, []byte{CmdFastRead, 2, 5})
	if len(resp.Data) != 1 || resp.Data[0] != NAKNotAuthed {
		t.Fatalf("FAST_READ spanning AUTH0: expected NAK(NOT_AUTHED), got %v", resp.Data)
	}

	resp = issueCommand(sess, []byte{CmdPwdAuth, 0xFF, 0xFF, 0xFF, 0xFF})
	if len(resp.Data) != 2+crcALen {
		t.Fatalf("PWD_AUTH: expected PACK, got %v", resp.Data)
	}
	resp = issueCommand(sess, []byte{CmdFastRead, 2, 5})
	if len(resp.Data) != 16+crcALen {
		t.Fatalf("FAST_READ spanning AUTH0 after auth: expected data, got %v", resp.Data)
	}
}

func TestReadWrapsAtFirstAuthenticatedPageWhenReadProtected(t *testing.T) {
	sess, mem := newTestSession(t, NTAG213)
	profile := ProfileFor(NTAG213)
	mem.Write([]byte{0x04}, profile.ConfigByteOffset()+auth0Offset, 1)
	mem.Write([]byte{accessProtMask}, profile.ConfigByteOffset()+accessOffset, 1)
	sess.Init()
	selectToActive(t, sess)

	pages := [][4]byte{{0xA0, 0xA0, 0xA0, 0xA0}, {0xA1, 0xA1, 0xA1, 0xA1}, {0xA2, 0xA2, 0xA2, 0xA2}, {0xA3, 0xA3, 0xA3, 0xA3}}
	for i, p := range pages {
		mem.WritePage(byte(i), p)
	}

	// Unauthenticated: READ must wrap at AUTH0 (4), not PageCount.
	resp := issueCommand(sess, []byte{CmdRead, 2})
	if len(resp.Data) != readBytesPerCmd+crcALen {
		t.Fatalf("READ: expected %d bytes + CRC_A, got %d", readBytesPerCmd, len(resp.Data))
	}
	wantOrder := []int{2, 3, 0, 1}
	for i, pageIdx := range wantOrder {
		got := resp.Data[i*4 : i*4+4]
		want := pages[pageIdx]
		if got[0] != want[0] || got[1] != want[1] || got[2] != want[2] || got[3] != want[3] {
			t.Fatalf("READ wraparound: chunk %d expected page %d contents %v, got %v", i, pageIdx, want, got)
		}
	}

	// addr == AUTH0 itself is out of range while unauthenticated.
	resp = issueCommand(sess, []byte{CmdRead, 4})
	if len(resp.Data) != 1 || resp.Data[0] != NAKInvalidArg {
		t.Fatalf("READ at AUTH0 unauthenticated: expected NAK(INVALID_ARG), got %v", resp.Data)
	}
}

func TestReadSigReturnsFixedPattern(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	resp := issueCommand(sess, []byte{CmdReadSig})
	if len(resp.Data) != sigLength+crcALen {
		t.Fatalf("READ_SIG: expected %d bytes + CRC_A, got %d", sigLength, len(resp.Data))
	}
	for i, b := range resp.Data[:sigLength] {
		if b != 0xCA {
			t.Fatalf("READ_SIG: byte %d = %#x, want 0xCA", i, b)
		}
	}
}
