package ntag21x

// compatLatch models the two-frame "compatibility write" sequencing
// (spec.md §4.2/§9) as a small closed state — Idle or ArmedAt(page) —
// rather than a bool + shadow page-address variable, per spec.md §9's
// design note ("model as a small state... to make the exactly-one-frame
// invariant structural"). The original's ArmedForCompatWrite +
// CompatWritePageAddress pair is the source this replaces.
type compatLatch struct {
	armed bool
	page  byte
}

// arm latches addr as the page that the next frame's bytes 2-5 commit to.
func (c *compatLatch) arm(addr byte) {
	c.armed = true
	c.page = addr
}

// disarm clears the latch; called unconditionally after exactly one
// follow-up frame is consumed, whether or not that frame was valid.
func (c *compatLatch) disarm() {
	c.armed = false
}
