package sh2

// opBF implements "BF disp": if T == 0, branch to
// (PC + 2) + (sign_extend_8_to_32(disp) << 1) and charge 2 extra cycles
// (3 total); if T == 1, fall through and charge nothing extra (1 total).
// Not a delayed branch — the target takes effect immediately.
//
// As in ops_move.go, c.reg.PC at handler entry already holds the
// post-fetch-advance value, so "+2" here gives PC_original+4 overall.
func (c *CPU) opBF(d decoded) {
	if c.reg.T {
		return
	}
	base := c.reg.PC + 2
	c.reg.PC = uint32(int32(base) + (d.disp << 1))
	c.cycles += 2
}

// opBRA implements "BRA disp": a delayed unconditional branch. It arms the
// delay latch with delay_pc = (PC + 2) + (sign_extend_12_to_32(disp) << 1)
// and charges 1 extra cycle (2 total). The instruction in the delay slot
// (the very next Step) executes before the latch fires.
func (c *CPU) opBRA(d decoded) {
	base := c.reg.PC + 2
	target := uint32(int32(base) + (d.disp << 1))
	c.armDelay(target)
	c.cycles++
}
