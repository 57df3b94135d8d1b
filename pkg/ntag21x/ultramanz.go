package ntag21x

// UltramanZ medal flavors (spec.md §4.4). From the original's
// ULTRAMANZ_*_TYPE enum.
const (
	MedalAccPos  byte = 0x1
	MedalAccNeg  byte = 0x2
	MedalCharPos byte = 0x4
	MedalCharNeg byte = 0x5
)

const (
	medalPage       byte = 0x1F
	magicPage       byte = 29
	accMaxIndex          = 20
	charMaxIndex         = 128
)

var magicBytes = [4]byte{0xba, 0xbd, 0x10, 0x20}
var magicPACK = [4]byte{0xbe, 0xef, 0x00, 0x00}

// medalRecord is the packed 4-byte record at page 0x1F, in the explicit
// byte order spec.md §9 calls out: [type, index, type2, sum].
type medalRecord struct {
	kind  byte
	index byte
	kind2 byte
	sum   byte
}

func readMedal(mem *MemoryView) medalRecord {
	page := mem.ReadPage(medalPage)
	return medalRecord{kind: page[0], index: page[1], kind2: page[2], sum: page[3]}
}

func (r medalRecord) writeTo(mem *MemoryView) {
	mem.WritePage(medalPage, [pageSize]byte{r.kind, r.index, r.kind2, r.sum})
}

// UltramanZMutator is the host-triggered routine of spec.md §4.4: it runs
// outside any reader session, between activations, and mutates the card
// image directly. index is a persistent, process-lifetime counter (the
// original's "static uint8_t index"), not part of the card image.
type UltramanZMutator struct {
	index byte
}

// NewUltramanZMutator returns a mutator with the original's initial
// index of 1. Use this when the mutator's process outlives multiple
// presses (an in-process emulator driving its own button handlers).
func NewUltramanZMutator() *UltramanZMutator {
	return &UltramanZMutator{index: 1}
}

// NewUltramanZMutatorFromImage seeds a mutator's index from the medal
// record already stored at page 0x1F, continuing the rotation where the
// last press (possibly a prior process invocation, for a CLI-hosted
// mutator) left off. flavor is the flavor of the press about to happen,
// the same value Press will be called with, so the seed wraps against
// the same max_index Press itself will enforce.
func NewUltramanZMutatorFromImage(mem *MemoryView, flavor byte) *UltramanZMutator {
	record := readMedal(mem)
	next := record.index + 1
	if next > maxIndexFor(flavor) {
		next = 1
	}
	return &UltramanZMutator{index: next}
}

func maxIndexFor(flavor byte) byte {
	switch flavor {
	case MedalAccPos, MedalAccNeg:
		return accMaxIndex
	case MedalCharPos, MedalCharNeg:
		return charMaxIndex
	default:
		return accMaxIndex
	}
}

// Press runs one atomic invocation of the mutator against mem for the
// given flavor (spec.md §4.4, steps 1-6). mem must not be ReadOnly and
// must belong to a variant whose ConfigByteOffset matches UltramanZ's
// (profile is used only to locate the PACK offset for step 3).
func (m *UltramanZMutator) Press(mem *MemoryView, profile VariantProfile, flavor byte) {
	record := readMedal(mem)
	maxIndex := maxIndexFor(flavor)

	if record.kind != flavor {
		record.kind = flavor
		record.kind2 = 0
		if flavor == MedalAccPos || flavor == MedalAccNeg {
			record.kind2 = 0x01
		}
		mem.WritePage(magicPage, magicBytes)
		mem.Write(magicPACK[:], profile.ConfigByteOffset()+packOffset, 4)
	}

	record.index = m.index
	m.index++
	if m.index > maxIndex {
		m.index = 1
	}

	record.sum = record.kind + record.index + record.kind2
	record.writeTo(mem)

	uid := ReadUID(mem)
	uid[4], uid[5], uid[6] = record.kind, record.index, record.kind2
	WriteUID(mem, uid)
}
