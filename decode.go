package sh2

import "fmt"

// opcode identifies a decoded SH-2 instruction shape. Both the interpreter
// (cpu.go, ops_*.go) and the disassembler (disasm.go) switch on this same
// tag, so the three-level bit-slicing dispatch below is written exactly
// once (spec §4.2: "same decode tree, different handlers").
type opcode int

const (
	opMovLStore   opcode = iota // MOV.L Rm,@Rn
	opMovLPreDec                // MOV.L Rm,@-Rn
	opMovLLoad                  // MOV.L @Rm,Rn
	opMovWLoad                  // MOV.W @Rm,Rn
	opTST                       // TST Rm,Rn
	opAND                       // AND Rm,Rn
	opOR                        // OR Rm,Rn
	opXOR                       // XOR Rm,Rn
	opCmpHS                     // CMP/HS Rm,Rn
	opStsLPRPreDec              // STS.L PR,@-Rn
	opAddImm                    // ADD #imm,Rn
	opMovImm                    // MOV #imm,Rn
	opMovWPCRel                 // MOV.W @(d,PC),Rn
	opMovLPCRel                 // MOV.L @(d,PC),Rn
	opBF                        // BF disp
	opBRA                       // BRA disp
	opMacW                      // MAC.W @Rm+,@Rn+ (unimplemented)
)

// decoded is the operand payload produced by decode. Only the fields
// relevant to op are meaningful; the rest are zero.
type decoded struct {
	op   opcode
	rn   uint8
	rm   uint8
	imm  uint8 // raw 8-bit immediate/displacement byte, before sign-extension
	disp int32 // sign-extended displacement (d8 or d12), already sign-extended, not yet shifted
}

// decodeFailLevel identifies which of the three dispatch levels in spec
// §4.2 failed to recognize an opcode.
type decodeFailLevel int

const (
	levelMSNibble decodeFailLevel = iota
	levelLSNibble
	levelLSByte
)

func (l decodeFailLevel) String() string {
	switch l {
	case levelMSNibble:
		return "most-significant nibble"
	case levelLSNibble:
		return "least-significant nibble"
	case levelLSByte:
		return "least-significant byte"
	default:
		return "unknown level"
	}
}

// DecodeError reports an opcode that did not match any known instruction
// shape at one of the three dispatch levels (spec §4.2, §7).
type DecodeError struct {
	Level  decodeFailLevel
	Opcode uint16
	Masked uint16 // the bits examined at the failing level
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sh2: decode failed at %s (masked=%#04x) of opcode %#06x", e.Level, e.Masked, e.Opcode)
}

// decode runs the three-level dispatch described in spec §4.2 over a
// 16-bit opcode word and extracts its operand fields.
func decode(op uint16) (decoded, error) {
	switch op >> 12 {
	case 0x2:
		return decodeFamily2(op)
	case 0x3:
		return decodeFamily3(op)
	case 0x4:
		return decodeFamily4(op)
	case 0x6:
		return decodeFamily6(op)
	case 0x7:
		return decoded{op: opAddImm, rn: fieldN(op), imm: fieldI(op)}, nil
	case 0x8:
		return decodeFamily8(op)
	case 0x9:
		return decoded{op: opMovWPCRel, rn: fieldN(op), imm: fieldI(op)}, nil
	case 0xA:
		return decoded{op: opBRA, disp: signExtend12(op & 0xFFF)}, nil
	case 0xD:
		return decoded{op: opMovLPCRel, rn: fieldN(op), imm: fieldI(op)}, nil
	case 0xE:
		return decoded{op: opMovImm, rn: fieldN(op), imm: fieldI(op)}, nil
	default:
		return decoded{}, &DecodeError{Level: levelMSNibble, Opcode: op, Masked: op >> 12}
	}
}

// decodeFamily2 covers 0010nnnnmmmm.... (nm-format register ops).
func decodeFamily2(op uint16) (decoded, error) {
	rn, rm := fieldNM(op)
	switch op & 0xF {
	case 0x2:
		return decoded{op: opMovLStore, rn: rn, rm: rm}, nil
	case 0x6:
		return decoded{op: opMovLPreDec, rn: rn, rm: rm}, nil
	case 0x8:
		return decoded{op: opTST, rn: rn, rm: rm}, nil
	case 0x9:
		return decoded{op: opAND, rn: rn, rm: rm}, nil
	case 0xA:
		return decoded{op: opXOR, rn: rn, rm: rm}, nil
	case 0xB:
		return decoded{op: opOR, rn: rn, rm: rm}, nil
	default:
		return decoded{}, &DecodeError{Level: levelLSNibble, Opcode: op, Masked: op & 0xF}
	}
}

// decodeFamily3 covers 0011nnnnmmmm.... (nm-format compare ops).
func decodeFamily3(op uint16) (decoded, error) {
	rn, rm := fieldNM(op)
	switch op & 0xF {
	case 0x2:
		return decoded{op: opCmpHS, rn: rn, rm: rm}, nil
	default:
		return decoded{}, &DecodeError{Level: levelLSNibble, Opcode: op, Masked: op & 0xF}
	}
}

// decodeFamily4 covers 0100.... — a mix of fixed-low-byte opcodes
// (STS.L PR,@-Rn) and nm-format opcodes disambiguated by the least
// significant nibble alone (MAC.W). The byte match is tried first, since
// it is the more specific of the two; the nibble match is the final
// dispatch key, so a total miss is reported at the nibble level.
func decodeFamily4(op uint16) (decoded, error) {
	if op&0xFF == 0x22 {
		return decoded{op: opStsLPRPreDec, rn: fieldN(op)}, nil
	}
	rn, rm := fieldNM(op)
	switch op & 0xF {
	case 0xF:
		return decoded{op: opMacW, rn: rn, rm: rm}, nil
	default:
		return decoded{}, &DecodeError{Level: levelLSNibble, Opcode: op, Masked: op & 0xF}
	}
}

// decodeFamily6 covers 0110nnnnmmmm.... (nm-format load ops).
func decodeFamily6(op uint16) (decoded, error) {
	rn, rm := fieldNM(op)
	switch op & 0xF {
	case 0x1:
		return decoded{op: opMovWLoad, rn: rn, rm: rm}, nil
	case 0x2:
		return decoded{op: opMovLLoad, rn: rn, rm: rm}, nil
	default:
		return decoded{}, &DecodeError{Level: levelLSNibble, Opcode: op, Masked: op & 0xF}
	}
}

// decodeFamily8 covers 1000.... — disambiguated by the second nibble
// (bits 11..8), which is a fixed sub-opcode selector here rather than a
// register field.
func decodeFamily8(op uint16) (decoded, error) {
	switch (op >> 8) & 0xF {
	case 0xB:
		return decoded{op: opBF, disp: signExtend8(op & 0xFF)}, nil
	default:
		return decoded{}, &DecodeError{Level: levelLSByte, Opcode: op, Masked: (op >> 8) & 0xF}
	}
}

func fieldN(op uint16) uint8 { return uint8((op >> 8) & 0xF) }

func fieldNM(op uint16) (rn, rm uint8) {
	return uint8((op >> 8) & 0xF), uint8((op >> 4) & 0xF)
}

func fieldI(op uint16) uint8 { return uint8(op & 0xFF) }

func signExtend8(v uint16) int32 {
	return int32(int8(uint8(v)))
}

func signExtend12(v uint16) int32 {
	// Shifting the 12-bit field to the top of a 32-bit word, then
	// arithmetic-shifting it back down by 20, sign-extends it.
	return int32(uint32(v)<<20) >> 20
}
