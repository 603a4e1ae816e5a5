package sh2

// This file implements the MOV family from spec §4.3. Each handler is a
// pure function over the register file and bus state: decode the operand
// registers from the already-decoded struct, touch the bus if needed,
// then mutate exactly the registers the instruction contract names.

// opMovLStore implements "MOV.L Rm,@Rn" — long-store R[m] at address R[n].
func (c *CPU) opMovLStore(bus Bus, d decoded) {
	bus.WriteLong(c.reg.R[d.rn], c.reg.R[d.rm])
}

// opMovLPreDec implements "MOV.L Rm,@-Rn" — predecrement then store:
// R[n] -= 4; mem32[R[n]] = R[m].
func (c *CPU) opMovLPreDec(bus Bus, d decoded) {
	c.reg.R[d.rn] -= 4
	bus.WriteLong(c.reg.R[d.rn], c.reg.R[d.rm])
}

// opMovLLoad implements "MOV.L @Rm,Rn" — R[n] = mem32[R[m]].
func (c *CPU) opMovLLoad(bus Bus, d decoded) {
	c.reg.R[d.rn] = bus.ReadLong(c.reg.R[d.rm])
}

// opMovWLoad implements "MOV.W @Rm,Rn" — R[n] = sign_extend_16_to_32(mem16[R[m]]).
func (c *CPU) opMovWLoad(bus Bus, d decoded) {
	c.reg.R[d.rn] = signExtendWord(bus.ReadWord(c.reg.R[d.rm]))
}

// opMovImm implements "MOV #imm,Rn" — R[n] = sign_extend_8_to_32(imm).
func (c *CPU) opMovImm(d decoded) {
	c.reg.R[d.rn] = signExtendByte(d.imm)
}

// opMovWPCRel implements "MOV.W @(d,PC),Rn":
// R[n] = sign_extend_16_to_32(mem16[(d << 1) + PC + 2]).
//
// At handler entry c.reg.PC already holds the post-fetch-advance value
// (spec §4.3 step 2 already added 2 to the original instruction PC), so
// the "+2" from the spec formula lands here as c.reg.PC+2, for a base of
// PC_original+4 overall (spec §9(a)).
func (c *CPU) opMovWPCRel(bus Bus, d decoded) {
	base := c.reg.PC + 2
	addr := base + uint32(d.imm)<<1
	c.reg.R[d.rn] = signExtendWord(bus.ReadWord(addr))
}

// opMovLPCRel implements "MOV.L @(d,PC),Rn":
// R[n] = mem32[(d << 2) + ((PC + 2) & 0xFFFFFFFC)].
//
// The low two bits of the base address are forced to zero per the ISA,
// even if PC+2 (here, c.reg.PC+2) was not 4-aligned.
func (c *CPU) opMovLPCRel(bus Bus, d decoded) {
	base := (c.reg.PC + 2) &^ 3
	addr := base + uint32(d.imm)<<2
	c.reg.R[d.rn] = bus.ReadLong(addr)
}

// signExtendByte sign-extends an 8-bit value to 32 bits.
func signExtendByte(v uint8) uint32 {
	return uint32(int32(int8(v)))
}

// signExtendWord sign-extends a 16-bit value to 32 bits.
func signExtendWord(v uint16) uint32 {
	return uint32(int32(int16(v)))
}
