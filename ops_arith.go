package sh2

// opAddImm implements "ADD #imm,Rn" — R[n] = R[n] + sign_extend_8_to_32(imm),
// two's-complement wrap. Go's uint32 addition already wraps silently on
// overflow (spec §9(b): arithmetic errors are not errors on SH-2), so no
// special-casing is needed.
func (c *CPU) opAddImm(d decoded) {
	c.reg.R[d.rn] += signExtendByte(d.imm)
}
