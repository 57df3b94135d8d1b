package ntag21x

// pageSize is the NTAG21x page width in bytes (spec.md §6, "wire-level
// constants").
const pageSize = 4

// MemoryView is a byte-addressable read/write view over a page-aligned
// card image. Reads are always permitted; writes are a silent no-op when
// ReadOnly is set, mirroring the original's AppWritePage guard on
// ActiveConfiguration.ReadOnly — used during simulation and to protect
// the image while presenting to hostile readers (spec.md §4.5).
//
// MemoryView owns no concurrency control: the core is single-threaded
// per spec.md §5, and callers mutating the image from outside a frame
// (the UltramanZ mutator, a config loader) must not overlap a
// ProcessFrame call.
type MemoryView struct {
	image    []byte
	ReadOnly bool
}

// NewMemoryView wraps image (which must already be sized to
// PageCount*pageSize) as a MemoryView.
func NewMemoryView(image []byte, readOnly bool) *MemoryView {
	return &MemoryView{image: image, ReadOnly: readOnly}
}

// Len returns the size of the backing image in bytes.
func (m *MemoryView) Len() int {
	return len(m.image)
}

// Bytes returns the backing image directly, for host-side persistence.
// Callers must not retain it past the next mutating call.
func (m *MemoryView) Bytes() []byte {
	return m.image
}

// Read copies length bytes starting at byteOffset into dst. Out-of-range
// reads are the caller's responsibility to avoid; Read panics on an
// out-of-bounds slice the same way a raw slice operation would.
func (m *MemoryView) Read(dst []byte, byteOffset, length int) {
	copy(dst, m.image[byteOffset:byteOffset+length])
}

// Write copies length bytes from src into the image at byteOffset. It is
// a no-op (returns false) when the view is in read-only mode; otherwise
// it writes and returns true.
func (m *MemoryView) Write(src []byte, byteOffset, length int) bool {
	if m.ReadOnly {
		return false
	}
	copy(m.image[byteOffset:byteOffset+length], src[:length])
	return true
}

// ReadPage reads the 4 bytes of page addr into a fresh array.
func (m *MemoryView) ReadPage(addr byte) [pageSize]byte {
	var out [pageSize]byte
	m.Read(out[:], int(addr)*pageSize, pageSize)
	return out
}

// WritePage writes 4 bytes to page addr, honoring ReadOnly.
func (m *MemoryView) WritePage(addr byte, data [pageSize]byte) bool {
	return m.Write(data[:], int(addr)*pageSize, pageSize)
}

// lockByteAddresses, byte offsets within the image (page 2, offsets 2-3;
// spec.md §3). Stored but never enforced by this core (spec.md Non-goals).
const (
	staticLockByte0Addr = 0x0A
	staticLockByte1Addr = 0x0B
)

// LockBytes returns the two static lock bytes at page 2 offsets 2-3, for
// inspection tooling only — this core never enforces them (spec.md
// Non-goals: "dynamic lock-byte enforcement"; static inspection is not
// enforcement).
func (m *MemoryView) LockBytes() [2]byte {
	return [2]byte{m.image[staticLockByte0Addr], m.image[staticLockByte1Addr]}
}
