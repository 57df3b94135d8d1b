package ntag21x

// Configuration-area byte offsets, relative to VariantProfile's
// ConfigByteOffset (spec.md §3). From the original's
// CONF_AUTH0_OFFSET/CONF_ACCESS_OFFSET/CONF_PASSWORD_OFFSET/
// CONF_PACK_OFFSET.
const (
	auth0Offset  = 0x03
	accessOffset = 0x04
	pwdOffset    = 0x08
	packOffset   = 0x0C

	// accessProtMask is ACCESS bit 7 (PROT): read-protect as well as
	// write-protect.
	accessProtMask = 0x80
)

// authState is the session-scoped authentication cache (spec.md §2's
// "Auth State" component): whether PWD_AUTH has succeeded this session,
// the first password-protected page (AUTH0), and whether reads are also
// protected (ACCESS.PROT). firstAuthPage/readProtected are snapshotted
// at Init and never change mid-session — the original re-derives them
// only in NTAG21xAppInit, never in the command switch.
type authState struct {
	authenticated bool
	firstAuthPage byte
	readProtected bool
}

// loadFromImage reloads firstAuthPage/readProtected from the
// configuration area of mem, per profile. Does not touch authenticated.
func (a *authState) loadFromImage(mem *MemoryView, profile VariantProfile) {
	base := profile.ConfigByteOffset()
	var auth0, access [1]byte
	mem.Read(auth0[:], base+auth0Offset, 1)
	mem.Read(access[:], base+accessOffset, 1)
	a.firstAuthPage = auth0[0]
	a.readProtected = access[0]&accessProtMask != 0
}

// authOK implements the access predicate of spec.md §4.3:
// auth_ok(addr) := Authenticated OR addr < FirstAuthenticatedPage.
func (a *authState) authOK(addr byte) bool {
	return a.authenticated || addr < a.firstAuthPage
}

// readLimit returns the page count a READ should wrap at: PageCount
// normally, or FirstAuthenticatedPage when read-protected and not yet
// authenticated (spec.md §4.2's READ contract).
func (a *authState) readLimit(pageCount int) byte {
	if a.readProtected && !a.authenticated {
		return a.firstAuthPage
	}
	return byte(pageCount)
}

func readPWD(mem *MemoryView, profile VariantProfile) [4]byte {
	var pwd [4]byte
	mem.Read(pwd[:], profile.ConfigByteOffset()+pwdOffset, 4)
	return pwd
}

func writePWD(mem *MemoryView, profile VariantProfile, pwd [4]byte) {
	mem.Write(pwd[:], profile.ConfigByteOffset()+pwdOffset, 4)
}

func readPACK(mem *MemoryView, profile VariantProfile) [2]byte {
	var pack [2]byte
	mem.Read(pack[:], profile.ConfigByteOffset()+packOffset, 2)
	return pack
}

func writePACK(mem *MemoryView, profile VariantProfile, pack [2]byte) {
	mem.Write(pack[:], profile.ConfigByteOffset()+packOffset, 2)
}
