package sh2

// opStsLPRPreDec implements "STS.L PR,@-Rn" — R[n] -= 4; mem32[R[n]] = PR.
func (c *CPU) opStsLPRPreDec(bus Bus, d decoded) {
	c.reg.R[d.rn] -= 4
	bus.WriteLong(c.reg.R[d.rn], c.reg.PR)
}
