package sh2

import (
	"bytes"
	"errors"
	"fmt"
	"log"
)

// ErrUnimplemented is returned when Step decodes an instruction shape this
// core deliberately does not implement (MAC.W; spec §1, §4.3). It is
// a distinct error type from *DecodeError so a caller, or a test, can tell
// "this opcode is not in the ISA table this core supports at all" apart
// from "this opcode hit a stubbed instruction that is recognized but not
// implemented".
var ErrUnimplemented = errors.New("sh2: unimplemented instruction")

// UnimplementedError wraps ErrUnimplemented with the offending opcode.
type UnimplementedError struct {
	Opcode uint16
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("sh2: please implement opcode %#06x", e.Opcode)
}

func (e *UnimplementedError) Unwrap() error { return ErrUnimplemented }

// CPU is the SH-2 instruction-set interpreter. It owns a register file and
// a delayed-branch latch; it borrows a Bus for the duration of each Step.
type CPU struct {
	reg *registerFile

	// Delayed-branch latch (spec §3 "Delayed-branch latch"): when delay is
	// true, the *next* Step executes the delay-slot instruction first and
	// only then overwrites PC with delayPC, disarming the latch.
	delay   bool
	delayPC uint32

	cycles uint64

	err error // sticky: once set, Step is a no-op returning this error
}

// NewCPU returns a CPU with every register the architecture leaves
// unspecified after reset poisoned (0xDEADBEEF), per spec §3.
func NewCPU() *CPU {
	return &CPU{reg: newRegisterFile()}
}

// Reset installs the entry PC and initial stack pointer: VBR = 0,
// PC = pc, R15 = sp, I = 15. It does not clear the poison left in other
// registers, and it disarms any pending delay latch.
func (c *CPU) Reset(pc, sp uint32) {
	c.reg.reset(pc, sp)
	c.delay = false
	c.delayPC = 0
	c.err = nil
}

// SetVBR forces the vector base register directly, bypassing the normal
// reset path (used when bypassing BIOS boot code that would otherwise set
// it up; spec §6).
func (c *CPU) SetVBR(addr uint32) {
	c.reg.VBR = addr
}

// PC returns the current program counter.
func (c *CPU) PC() uint32 { return c.reg.PC }

// Cycles returns the cycle counter's value since NewCPU. Reset does not
// clear it.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Registers returns a copy of the full register state, safe to mutate
// without affecting the CPU (spec §9 "Register-file ownership").
func (c *CPU) Registers() Registers { return c.reg.snapshot() }

// Err returns the error (if any) that halted the CPU on a previous Step.
func (c *CPU) Err() error { return c.err }

// Step fetches one instruction from bus at the current PC, advances PC
// (honouring any pending delay latch), dispatches it through the shared
// decode tree, and executes its handler. It returns the cycle cost of the
// instruction that just ran, or an error if decode failed or the
// instruction is a deliberately unimplemented stub (spec §4.3, §7).
//
// Once Step returns a non-nil error the CPU is considered halted: further
// calls to Step are no-ops that return the same error.
func (c *CPU) Step(bus Bus) (uint64, error) {
	if c.err != nil {
		return 0, c.err
	}

	before := c.cycles
	fetchPC := c.reg.PC
	op := bus.ReadWord(fetchPC)

	// Commit PC advancement before dispatch: branch handlers run against
	// the already-advanced PC (spec §4.3 "Step loop").
	if c.delay {
		c.reg.PC = c.delayPC
		c.delay = false
	} else {
		c.reg.PC += 2
	}

	d, derr := decode(op)
	if derr != nil {
		c.fail(derr, op)
		return 0, c.err
	}

	if d.op == opMacW {
		c.fail(&UnimplementedError{Opcode: op}, op)
		return 0, c.err
	}

	c.execute(bus, d)
	c.cycles++

	return c.cycles - before, nil
}

// fail logs a diagnostic and latches the sticky error.
func (c *CPU) fail(err error, op uint16) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "opcode=%#06x pc=%#08x\n", op, c.reg.PC)
	c.reg.snapshot().Dump(&buf)
	log.Printf("[sh2] fatal: %v\n%s", err, buf.String())
	c.err = err
}

// armDelay arms the delayed-branch latch with the resolved target. The
// next Step executes the delay-slot instruction, then jumps.
func (c *CPU) armDelay(target uint32) {
	c.delay = true
	c.delayPC = target
}

// execute dispatches a decoded instruction to its semantic handler.
func (c *CPU) execute(bus Bus, d decoded) {
	switch d.op {
	case opMovLStore:
		c.opMovLStore(bus, d)
	case opMovLPreDec:
		c.opMovLPreDec(bus, d)
	case opMovLLoad:
		c.opMovLLoad(bus, d)
	case opMovWLoad:
		c.opMovWLoad(bus, d)
	case opTST:
		c.opTST(d)
	case opAND:
		c.opAND(d)
	case opOR:
		c.opOR(d)
	case opXOR:
		c.opXOR(d)
	case opCmpHS:
		c.opCmpHS(d)
	case opStsLPRPreDec:
		c.opStsLPRPreDec(bus, d)
	case opAddImm:
		c.opAddImm(d)
	case opMovImm:
		c.opMovImm(d)
	case opMovWPCRel:
		c.opMovWPCRel(bus, d)
	case opMovLPCRel:
		c.opMovLPCRel(bus, d)
	case opBF:
		c.opBF(d)
	case opBRA:
		c.opBRA(d)
	}
}
