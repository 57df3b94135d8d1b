package ntag21x

import "testing"

func newTestSession(t *testing.T, variant Variant) (*Session, *MemoryView) {
	t.Helper()
	profile := ProfileFor(variant)
	image := NewBlankImage(profile)
	mem := NewMemoryView(image, false)
	ApplySeed(mem, profile, Seed{
		UID:   UID{0x04, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
		PWD:   [4]byte{0xFF, 0xFF, 0xFF, 0xFF},
		PACK:  [2]byte{0x00, 0x00},
		AUTH0: byte(profile.PageCount),
	})
	sess := NewSession(profile, mem, RefCodec{})
	sess.Init()
	return sess, mem
}

func selectToActive(t *testing.T, sess *Session) {
	t.Helper()
	resp := sess.ProcessFrame([]byte{reqaCode}, shortFrameBits)
	if resp.IsNoResponse() {
		t.Fatalf("REQA: expected ATQA, got no response")
	}
	if sess.CurrentState() != StateReady1 {
		t.Fatalf("after REQA: expected Ready1, got %s", sess.CurrentState())
	}

	cl1 := sess.uid.CL1Block()
	bcc1 := cl1[0] ^ cl1[1] ^ cl1[2] ^ cl1[3]
	frame := RefCodec{}.AppendCRC([]byte{selectCL1Cmd, nvbFull, cl1[0], cl1[1], cl1[2], cl1[3], bcc1})
	resp = sess.ProcessFrame(frame, len(frame)*8)
	if resp.IsNoResponse() {
		t.Fatalf("SELECT CL1: expected SAK, got no response")
	}
	if sess.CurrentState() != StateReady2 {
		t.Fatalf("after SELECT CL1: expected Ready2, got %s", sess.CurrentState())
	}

	cl2 := sess.uid.CL2Block()
	frame = RefCodec{}.AppendCRC([]byte{selectCL2Cmd, nvbFull, cl2[0], cl2[1], cl2[2], cl2[3], cl2[0] ^ cl2[1] ^ cl2[2] ^ cl2[3]})
	resp = sess.ProcessFrame(frame, len(frame)*8)
	if resp.IsNoResponse() {
		t.Fatalf("SELECT CL2: expected SAK, got no response")
	}
	if sess.CurrentState() != StateActive {
		t.Fatalf("after SELECT CL2: expected Active, got %s", sess.CurrentState())
	}
}

func TestAnticollisionReachesActive(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)
}

func TestWupaFromHaltReturnsToHalt(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	frame := RefCodec{}.AppendCRC([]byte{CmdHalt, 0x00})
	resp := sess.ProcessFrame(frame, len(frame)*8)
	if !resp.IsNoResponse() {
		t.Fatalf("HALT: expected no response")
	}
	if sess.CurrentState() != StateHalt {
		t.Fatalf("after HALT: expected Halt, got %s", sess.CurrentState())
	}

	resp = sess.ProcessFrame([]byte{wupaCode}, shortFrameBits)
	if resp.IsNoResponse() {
		t.Fatalf("WUPA from Halt: expected ATQA")
	}
	if sess.CurrentState() != StateReady1 {
		t.Fatalf("after WUPA from Halt: expected Ready1, got %s", sess.CurrentState())
	}

	// Interrupting mid-anticollision with WUPA again should fall back to
	// Halt, since fromHalt was latched true at the original wake.
	resp = sess.ProcessFrame([]byte{wupaCode}, shortFrameBits)
	if !resp.IsNoResponse() {
		t.Fatalf("WUPA interruption in Ready1: expected no response")
	}
	if sess.CurrentState() != StateHalt {
		t.Fatalf("after WUPA interruption: expected Halt, got %s", sess.CurrentState())
	}
}

func TestShortFrameInActiveDropsToIdle(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	resp := sess.ProcessFrame([]byte{0x00}, 8)
	if !resp.IsNoResponse() {
		t.Fatalf("short frame: expected no response")
	}
	if sess.CurrentState() != StateIdle {
		t.Fatalf("after short frame: expected Idle, got %s", sess.CurrentState())
	}
}

func TestBadCRCInActiveNaksAndStaysActive(t *testing.T) {
	sess, _ := newTestSession(t, NTAG213)
	selectToActive(t, sess)

	frame := []byte{CmdGetVersion, 0x00, 0x00}
	resp := sess.ProcessFrame(frame, len(frame)*8)
	if resp.IsNoResponse() {
		t.Fatalf("bad CRC: expected NAK frame")
	}
	if len(resp.Data) != 1 || resp.Data[0] != NAKCRCError {
		t.Fatalf("bad CRC: expected NAK(%#x), got %v", NAKCRCError, resp.Data)
	}
	if sess.CurrentState() != StateActive {
		t.Fatalf("after bad CRC: expected Active, got %s", sess.CurrentState())
	}
}
