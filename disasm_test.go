package sh2

import (
	"strings"
	"testing"
)

func TestDisassembleSingleInstruction(t *testing.T) {
	bus := &testBus{}
	writeWord(bus, 0, 0x73FF) // ADD #-1,R3

	ds := NewDisassembler()
	line := ds.Disassemble(bus, 0)

	if !strings.Contains(line, "add #-1, r3") {
		t.Errorf("Disassemble(0) = %q, want it to contain %q", line, "add #-1, r3")
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	bus := &testBus{}
	writeWord(bus, 0, 0x0000)

	ds := NewDisassembler()
	line := ds.Disassemble(bus, 0)

	if !strings.Contains(line, "unknown instruction") {
		t.Errorf("Disassemble(0) = %q, want it to mention the unknown opcode", line)
	}
}

func TestDisassembleMacWIsNamedNotUnknown(t *testing.T) {
	bus := &testBus{}
	writeWord(bus, 0, 0x410F)

	ds := NewDisassembler()
	line := ds.Disassemble(bus, 0)

	if !strings.Contains(line, "mac.w") {
		t.Errorf("Disassemble(0) = %q, want it to name mac.w rather than report unknown", line)
	}
}

// Two branches to the same target must share one interned label, and a
// forward branch's label must already be resolved by the time its own
// line is printed — the reason DisassembleRange makes two passes.
func TestDisassembleRangeSharesLabelsAcrossBranches(t *testing.T) {
	bus := &testBus{}
	// Both branches target 0x008: target = addr + 4 + disp*2.
	writeWord(bus, 0x000, 0xA002) // BRA disp=2 -> 0x000+4+4 = 0x008
	writeWord(bus, 0x002, 0xE000) // MOV #0,R0 (delay slot, irrelevant to disasm)
	writeWord(bus, 0x004, 0xA000) // BRA disp=0 -> 0x004+4+0 = 0x008
	writeWord(bus, 0x006, 0xE000)
	writeWord(bus, 0x008, 0xE001) // landing pad

	ds := NewDisassembler()
	lines := ds.DisassembleRange(bus, 0, 0x00A, 0xFFFFFFFF)

	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	for _, l := range lines {
		t.Logf("%s", l)
	}

	label0 := ds.labels[0x008]
	if label0 == "" {
		t.Fatal("expected a label interned for the shared branch target 0x008")
	}
	// Both BRA lines must reference the very same label text.
	if !strings.Contains(lines[0], label0) {
		t.Errorf("first BRA line %q does not reference shared label %q", lines[0], label0)
	}
	if !strings.Contains(lines[2], label0) {
		t.Errorf("second BRA line %q does not reference shared label %q", lines[2], label0)
	}
}

func TestDisassembleRangeMarksLivePC(t *testing.T) {
	bus := &testBus{}
	writeWord(bus, 0, 0x73FF)
	writeWord(bus, 2, 0x73FF)

	ds := NewDisassembler()
	lines := ds.DisassembleRange(bus, 0, 4, 2)

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "  ") || strings.Contains(lines[0], "->") {
		t.Errorf("line 0 = %q, should not carry the live-PC marker", lines[0])
	}
	if !strings.Contains(lines[1], "->") {
		t.Errorf("line 1 = %q, should carry the live-PC marker", lines[1])
	}
}
