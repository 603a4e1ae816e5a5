// Package sh2 implements a Hitachi SH-2 (SH7604) instruction-set interpreter
// and a companion disassembler sharing the same decode tree.
//
// The SH-2 is a 32-bit RISC processor with 16-bit fixed-width instructions,
// sixteen general-purpose registers, and a delayed-branch mechanism: a
// branch that "arms" takes effect only after the instruction following it
// (the delay slot) has executed. See CPU.Step for the exact ordering.
package sh2

// Bus provides typed memory access over a 32-bit address space. All values
// are unsigned; callers are responsible for sign-extension where the SH-2
// ISA requires it. No alignment is enforced at this layer — that is the
// bus implementor's concern.
//
// The core never reads or writes memory except through a Bus.
type Bus interface {
	ReadByte(addr uint32) uint8
	ReadWord(addr uint32) uint16
	ReadLong(addr uint32) uint32

	WriteByte(addr uint32, val uint8)
	WriteWord(addr uint32, val uint16)
	WriteLong(addr uint32, val uint32)
}
