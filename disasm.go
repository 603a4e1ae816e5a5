package sh2

import (
	"fmt"
	"strings"
)

// Disassembler walks a Bus and produces human-readable SH-2 assembly text,
// reusing the exact decode tree the interpreter runs. It never mutates any
// CPU state and keeps no program counter of its own: each call is given
// the address to disassemble, so a range can be disassembled without a
// CPU instance at all.
type Disassembler struct {
	labels map[uint32]string // branch target -> interned label name, first-come-first-served
}

// NewDisassembler returns an empty Disassembler with no interned labels.
func NewDisassembler() *Disassembler {
	return &Disassembler{labels: make(map[uint32]string)}
}

// Disassemble emits one instruction's text at address pc.
func (ds *Disassembler) Disassemble(bus Bus, pc uint32) string {
	return ds.line(bus, pc, false, pc)
}

// DisassembleRange walks [start, end) two bytes at a time (odd addresses
// are skipped, per spec §4.4), returning one line per instruction. pc is
// the live CPU's program counter; the line whose address equals pc is
// annotated with a "->" marker.
//
// The walk runs twice: pass one silently invokes the decode tree so every
// branch target in range gets a label interned before pass two emits any
// text, guaranteeing a forward branch's label already exists by the time
// its own line is printed, and that two branches to the same target share
// one name (spec §4.4).
func (ds *Disassembler) DisassembleRange(bus Bus, start, end, pc uint32) []string {
	for addr := start; addr < end; addr += 2 {
		if addr%2 != 0 {
			continue
		}
		ds.line(bus, addr, true, pc)
	}

	lines := make([]string, 0, (end-start)/2)
	for addr := start; addr < end; addr += 2 {
		if addr%2 != 0 {
			continue
		}
		lines = append(lines, ds.line(bus, addr, false, pc))
	}
	return lines
}

// line decodes and formats the instruction at addr. When silent is true,
// the formatted text is discarded and an empty string is returned, so the
// only lasting effect is the label interning done by branch handlers
// (pass one of DisassembleRange).
func (ds *Disassembler) line(bus Bus, addr uint32, silent bool, livePC uint32) string {
	op := bus.ReadWord(addr)
	d, err := decode(op)

	var text string
	switch {
	case err != nil:
		text = fmt.Sprintf("unknown instruction: %#06x", op)
	case d.op == opMacW:
		text = fmt.Sprintf("mac.w @r%d+, @r%d+", d.rm, d.rn)
	default:
		text = ds.format(bus, addr, d)
	}

	if silent {
		return ""
	}

	marker := "  "
	if addr == livePC {
		marker = "->"
	}
	label := ds.labels[addr]
	return fmt.Sprintf("%s %-5s %#010x   %#06x    %s", marker, label, addr, op, text)
}

// format renders the mnemonic text for a successfully decoded instruction,
// peeking the bus for PC-relative loads purely to annotate the current
// value at that address (spec §4.4).
func (ds *Disassembler) format(bus Bus, addr uint32, d decoded) string {
	switch d.op {
	case opMovLStore:
		return fmt.Sprintf("mov.l r%d, @r%d", d.rm, d.rn)
	case opMovLPreDec:
		return fmt.Sprintf("mov.l r%d, @-r%d", d.rm, d.rn)
	case opMovLLoad:
		return fmt.Sprintf("mov.l @r%d, r%d", d.rm, d.rn)
	case opMovWLoad:
		return fmt.Sprintf("mov.w @r%d, r%d", d.rm, d.rn)
	case opTST:
		return fmt.Sprintf("tst r%d, r%d", d.rm, d.rn)
	case opAND:
		return fmt.Sprintf("and r%d, r%d", d.rm, d.rn)
	case opOR:
		return fmt.Sprintf("or r%d, r%d", d.rm, d.rn)
	case opXOR:
		return fmt.Sprintf("xor r%d, r%d", d.rm, d.rn)
	case opCmpHS:
		return fmt.Sprintf("cmp/hs r%d, r%d", d.rm, d.rn)
	case opStsLPRPreDec:
		return fmt.Sprintf("sts.l pr, @-r%d", d.rn)
	case opAddImm:
		return fmt.Sprintf("add #%d, r%d", int8(d.imm), d.rn)
	case opMovImm:
		return fmt.Sprintf("mov #%d, r%d", int8(d.imm), d.rn)
	case opMovWPCRel:
		src := addr + 4 + uint32(d.imm)<<1
		val := bus.ReadWord(src)
		return fmt.Sprintf("mov.w @(%#x, PC), r%d (addr: %#010x, val: %#06x)", d.imm, d.rn, src, val)
	case opMovLPCRel:
		src := (addr + 4) &^ 3
		src += uint32(d.imm) << 2
		val := bus.ReadLong(src)
		return fmt.Sprintf("mov.l @(%#x, PC), r%d (addr: %#010x, val: %#010x)", d.imm, d.rn, src, val)
	case opBF:
		target := uint32(int32(addr+4) + (d.disp << 1))
		label := ds.addLabel(target)
		return fmt.Sprintf("bf %s   (addr: %#010x, disp: %#x)", label, target, d.disp)
	case opBRA:
		target := uint32(int32(addr+4) + (d.disp << 1))
		label := ds.addLabel(target)
		return fmt.Sprintf("bra %s   (addr: %#010x, disp: %#x)", label, target, d.disp)
	default:
		return "?"
	}
}

// addLabel interns a branch-target label, first-come-first-served
// ("l-0, l-1, …" in encounter order; spec §4.4).
func (ds *Disassembler) addLabel(addr uint32) string {
	if name, ok := ds.labels[addr]; ok {
		return name
	}
	name := fmt.Sprintf("l-%d", len(ds.labels))
	ds.labels[addr] = name
	return name
}

// Dump renders lines joined by newlines, a small convenience for callers
// that just want a printable block (cmd/sh2dasm).
func Dump(lines []string) string {
	return strings.Join(lines, "\n")
}
