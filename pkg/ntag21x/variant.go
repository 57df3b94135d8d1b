package ntag21x

// Variant identifies a member of the NTAG21x family (plus the UltramanZ
// collectible-card variant, which piggybacks on NTAG213 geometry).
type Variant int

const (
	NTAG213 Variant = iota
	NTAG215
	NTAG216
	UltramanZ
)

func (v Variant) String() string {
	switch v {
	case NTAG213:
		return "NTAG213"
	case NTAG215:
		return "NTAG215"
	case NTAG216:
		return "NTAG216"
	case UltramanZ:
		return "UltramanZ"
	default:
		return "unknown"
	}
}

// VariantProfile holds the per-variant constants needed to size and
// address a card image: total page count, the page at which the
// configuration area begins, and the GET_VERSION byte-6 identity tag.
//
// From the original's NTAG21xAppInit variant switch and CMD_GET_VERSION
// handler.
type VariantProfile struct {
	Variant         Variant
	PageCount       int
	ConfigStartPage int
	versionByte6    byte
}

// NTAG213 = 45, NTAG215 = 135, NTAG216 = 231 pages (full totals including
// configuration pages). Configuration-area base pages per spec.md §3.
const (
	ntag213Pages = 45
	ntag215Pages = 135
	ntag216Pages = 231

	ntag213ConfigStartPage = 0x29
	ntag215ConfigStartPage = 0x83
	ntag216ConfigStartPage = 0xE3
)

// ProfileFor returns the VariantProfile for v. UltramanZ shares NTAG213's
// geometry (PageCount and ConfigStartPage), per the original's
// UltramanAppInit, which sets PageCount/ConfigStartAddr directly to the
// NTAG213 values before delegating to the shared init path.
func ProfileFor(v Variant) VariantProfile {
	switch v {
	case NTAG213:
		return VariantProfile{Variant: v, PageCount: ntag213Pages, ConfigStartPage: ntag213ConfigStartPage, versionByte6: 0x0F}
	case NTAG215:
		return VariantProfile{Variant: v, PageCount: ntag215Pages, ConfigStartPage: ntag215ConfigStartPage, versionByte6: 0x11}
	case NTAG216:
		return VariantProfile{Variant: v, PageCount: ntag216Pages, ConfigStartPage: ntag216ConfigStartPage, versionByte6: 0x13}
	case UltramanZ:
		return VariantProfile{Variant: v, PageCount: ntag213Pages, ConfigStartPage: ntag213ConfigStartPage, versionByte6: 0x0F}
	default:
		return VariantProfile{Variant: v, PageCount: ntag213Pages, ConfigStartPage: ntag213ConfigStartPage, versionByte6: 0x0F}
	}
}

// ConfigByteOffset returns the absolute byte offset of the configuration
// area for this profile (ConfigStartPage * page size).
func (p VariantProfile) ConfigByteOffset() int {
	return p.ConfigStartPage * pageSize
}
