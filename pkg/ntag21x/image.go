package ntag21x

// NewBlankImage allocates a zeroed card image sized for profile.
func NewBlankImage(profile VariantProfile) []byte {
	return make([]byte, profile.PageCount*pageSize)
}

// Seed is the initial identity/secret material for a freshly constructed
// card image: the fields a host configuration loader supplies, as
// distinct from the bulk of a blank tag's factory-zero memory.
type Seed struct {
	UID      UID
	PWD      [4]byte
	PACK     [2]byte
	AUTH0    byte // first password-protected page; PageCount disables protection
	ReadProt bool
}

// ApplySeed writes a Seed's fields into mem at the offsets profile
// dictates: the UID/BCC block, and the AUTH0/ACCESS/PWD/PACK
// configuration area.
func ApplySeed(mem *MemoryView, profile VariantProfile, seed Seed) {
	WriteUID(mem, seed.UID)

	base := profile.ConfigByteOffset()
	mem.Write([]byte{seed.AUTH0}, base+auth0Offset, 1)

	var access byte
	if seed.ReadProt {
		access |= accessProtMask
	}
	mem.Write([]byte{access}, base+accessOffset, 1)

	mem.Write(seed.PWD[:], base+pwdOffset, 4)
	mem.Write(seed.PACK[:], base+packOffset, 2)
}
