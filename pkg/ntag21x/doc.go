/*
Package ntag21x implements the reactive command/response core of an
NXP NTAG21x-family tag emulator (NTAG213, NTAG215, NTAG216, and the
UltramanZ collectible-card variant that piggybacks on NTAG213 geometry).

Given a decoded contactless-reader frame, a Session advances an
ISO/IEC 14443-3 Type A anticollision state machine (two cascade levels,
halt/wake) and, once Active, dispatches NTAG21x opcodes against a
page-addressed MemoryView, enforcing the password-authentication /
read-protection access model and the deferred two-frame compatibility
write.

The radio-layer bit codec (REQA/WUPA detection, anticollision bit
matching, CRC_A) is a collaborator, not part of this package's core: a
Session is constructed with a Codec implementation. RefCodec is a
stdlib-only reference implementation suitable for tests and the
cmd/ntagemu CLI; production firmware would supply its own codec backed
by the analog front-end.

# Variants

NTAG213/215/216 differ only in page count and configuration-area base
page (see VariantProfile). UltramanZ shares NTAG213's geometry but
inverts PWD_AUTH semantics — see the cmdPwdAuth doc comment in
dispatcher.go.

# Out of scope

Persistent page flushing, the host CLI/config loader, and
signature/AUTHLIM/lock-byte enforcement are not part of this package;
see the repository's SPEC_FULL.md and DESIGN.md for what carries them.
*/
package ntag21x
