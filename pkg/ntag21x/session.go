package ntag21x

import "log/slog"

// State is one of the five ISO/IEC 14443-3A session states (spec.md §3).
type State int

const (
	StateHalt State = iota
	StateIdle
	StateReady1
	StateReady2
	StateActive
)

func (s State) String() string {
	switch s {
	case StateHalt:
		return "Halt"
	case StateIdle:
		return "Idle"
	case StateReady1:
		return "Ready1"
	case StateReady2:
		return "Ready2"
	case StateActive:
		return "Active"
	default:
		return "unknown"
	}
}

// minActiveFrameBytes is the minimum frame size accepted in Active: 1
// opcode byte + the 2-byte CRC_A (spec.md §4.1's "short frame (<3 bytes)").
const minActiveFrameBytes = 1 + 2

// Session holds the volatile, per-activation FSM and access state for
// one emulated tag (spec.md §3's "Session state (volatile, reset on
// wake or fault)"). It is not safe for concurrent use — spec.md §5
// specifies a single-threaded cooperative scheduling model, and a
// Session is the unit that model applies to.
type Session struct {
	Profile VariantProfile
	Mem     *MemoryView
	Codec   Codec
	Logger  *slog.Logger

	uid UID

	state    State
	fromHalt bool

	auth   authState
	compat compatLatch
}

// NewSession constructs a Session over mem for profile, using codec as
// the radio-layer collaborator. Init() must be called before the first
// ProcessFrame.
func NewSession(profile VariantProfile, mem *MemoryView, codec Codec) *Session {
	return &Session{
		Profile: profile,
		Mem:     mem,
		Codec:   codec,
		Logger:  slog.Default(),
	}
}

// Init performs the original's NTAG21xAppInit: resets FSM state to Idle,
// clears Authenticated and the compat-write latch, and reloads
// FirstAuthenticatedPage/read-protect from the configuration area. Call
// once per activation of the emulated tag (e.g. at cmd/ntagemu startup,
// or whenever the variant/profile changes).
func (s *Session) Init() {
	s.state = StateIdle
	s.fromHalt = false
	s.auth = authState{}
	s.compat = compatLatch{}
	s.auth.loadFromImage(s.Mem, s.Profile)
	s.uid = ReadUID(s.Mem)
	s.Logger.Debug("ntag21x session init", "variant", s.Profile.Variant, "page_count", s.Profile.PageCount)
}

// FieldReset performs the original's NTAG21xAppReset: resets FSM state
// to Idle only, leaving Authenticated, the compat-write latch, and the
// cached AUTH0/ACCESS snapshot untouched. See SPEC_FULL.md §5 for why
// this is kept distinct from Init.
func (s *Session) FieldReset() {
	s.state = StateIdle
}

// ProcessFrame is the core entry point (spec.md §6's process_frame
// collaborator contract): given a decoded frame of bitCount bits in buf,
// it advances the session and returns the response frame (or
// NoResponse). bitCount == 0 is treated as no frame.
func (s *Session) ProcessFrame(buf []byte, bitCount int) Frame {
	if bitCount == 0 {
		return NoResponse
	}

	switch s.state {
	case StateIdle, StateHalt:
		s.fromHalt = s.state == StateHalt
		if resp, ok := s.Codec.WakeUp(buf, bitCount, atqaValue, s.fromHalt); ok {
			s.state = StateReady1
			return resp
		}
		return NoResponse

	case StateReady1:
		if _, ok := s.Codec.WakeUp(buf, bitCount, atqaValue, s.fromHalt); ok {
			s.state = s.quiescentState()
			return NoResponse
		}
		if isSelectCL1(buf, bitCount) {
			resp, matched := s.Codec.Select(buf, bitCount, s.uid.CL1Block(), sakCL1)
			if matched {
				s.state = StateReady2
			}
			return resp
		}
		s.state = StateIdle
		return NoResponse

	case StateReady2:
		if _, ok := s.Codec.WakeUp(buf, bitCount, atqaValue, s.fromHalt); ok {
			s.state = s.quiescentState()
			return NoResponse
		}
		if isSelectCL2(buf, bitCount) {
			resp, matched := s.Codec.Select(buf, bitCount, s.uid.CL2Block(), sakCL2)
			if matched {
				s.state = StateActive
			}
			return resp
		}
		s.state = StateIdle
		return NoResponse

	case StateActive:
		return s.processActive(buf, bitCount)

	default:
		return NoResponse
	}
}

// CurrentState reports the session's FSM state, for host-side display.
func (s *Session) CurrentState() State {
	return s.state
}

// quiescentState is the state WUPA interruption falls back to:
// spec.md §4.1, "FromHalt is latched from the originating state at wake
// time so that subsequent interruptions return to Halt rather than Idle."
func (s *Session) quiescentState() State {
	if s.fromHalt {
		return StateHalt
	}
	return StateIdle
}

// isSelectCL1/isSelectCL2 recognize the SELECT CL1/CL2 command byte
// (ISO14443A_CMD_SELECT_CL1/CL2 in the original), 0x93 and 0x95.
const (
	selectCL1Cmd = 0x93
	selectCL2Cmd = 0x95
)

func isSelectCL1(buf []byte, bitCount int) bool {
	return bitCount >= 8 && len(buf) > 0 && buf[0] == selectCL1Cmd
}

func isSelectCL2(buf []byte, bitCount int) bool {
	return bitCount >= 8 && len(buf) > 0 && buf[0] == selectCL2Cmd
}

// processActive implements the Active-state transitions of spec.md
// §4.1: WUPA interrupts to Idle/Halt, HALT halts, a short frame drops to
// Idle, a bad CRC NAKs and stays Active, and a valid frame is handed to
// the command dispatcher.
func (s *Session) processActive(buf []byte, bitCount int) Frame {
	if _, ok := s.Codec.WakeUp(buf, bitCount, atqaValue, s.fromHalt); ok {
		s.state = s.quiescentState()
		return NoResponse
	}

	byteCount := (bitCount + 7) / 8
	if byteCount < minActiveFrameBytes {
		s.state = StateIdle
		return NoResponse
	}

	byteCount -= 2 // strip CRC_A before dispatch
	if !s.Codec.CheckCRC(buf[:byteCount+2]) {
		return (&NAKError{Cmd: buf[0], Code: NAKCRCError}).Frame()
	}

	return s.dispatch(buf, byteCount)
}
