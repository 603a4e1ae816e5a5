package sh2

import "fmt"

// Peripheral register addresses (SH7604 FRT/INTC subset, spec §6).
const (
	addrTIER  uint32 = 0xFFFFFE10
	addrFTCSR uint32 = 0xFFFFFE11
	addrOCRxH uint32 = 0xFFFFFE14 // aliases OCRA_H/OCRB_H per TOCR bit 4
	addrOCRxL uint32 = 0xFFFFFE15 // aliases OCRA_L/OCRB_L per TOCR bit 4
	addrTCR   uint32 = 0xFFFFFE16
	addrTOCR  uint32 = 0xFFFFFE17
	addrIPRB  uint32 = 0xFFFFFE60
	addrVCRC  uint32 = 0xFFFFFE66
)

const tocrOCRBSelect uint8 = 1 << 4

// peripheralLow is the bottom of the address range the wrapper claims for
// itself (spec §4.5): 0xE0000000..=0xFFFFFFFF. The range runs to the top of
// the address space, so no upper bound is checked.
const peripheralLow uint32 = 0xE0000000

// PeripheralBus wraps an inner "user" Bus and adds a fixed decoding for
// the SH7604's on-chip FRT/INTC register subset. Addresses outside the
// peripheral range are forwarded to the inner bus with the top three
// address bits cleared, collapsing the P0/P1/P2 cached/uncached mirror
// regions onto a single underlying physical space (spec §4.5).
//
// This is a straightforward composition layer (spec §9 "Peripheral
// wrapper as composition"): it forwards everything it does not claim,
// rather than hardcoding inheritance from the inner bus's type.
type PeripheralBus struct {
	User Bus

	tier  uint8
	ftcsr uint8
	ocrAH uint8
	ocrAL uint8
	ocrBH uint8
	ocrBL uint8
	tcr   uint8
	tocr  uint8
	iprb  uint16
	vcrc  uint16
}

// NewPeripheralBus wraps user with the SH7604 peripheral register subset
// at its documented reset values (spec §6).
func NewPeripheralBus(user Bus) *PeripheralBus {
	return &PeripheralBus{
		User:  user,
		tier:  0x01,
		ftcsr: 0x00,
		ocrAH: 0xFF,
		ocrAL: 0xFF,
		ocrBH: 0xFF,
		ocrBL: 0xFF,
		tcr:   0x00,
		tocr:  0xE0,
		iprb:  0x0000,
		vcrc:  0x0000,
	}
}

// mirror collapses the P0/P1/P2 cached/uncached mirror regions onto a
// single underlying physical address.
func mirror(addr uint32) uint32 {
	return addr & 0x1FFFFFFF
}

func (p *PeripheralBus) faultByte(addr uint32) uint8 {
	panic(fmt.Sprintf("sh2: peripheral byte access to unmapped address %#010x", addr))
}

func (p *PeripheralBus) faultWord(addr uint32) uint16 {
	panic(fmt.Sprintf("sh2: peripheral word access to unmapped address %#010x", addr))
}

func (p *PeripheralBus) faultLong(addr uint32) uint32 {
	panic(fmt.Sprintf("sh2: peripheral long access to unmapped address %#010x", addr))
}

func (p *PeripheralBus) ReadByte(addr uint32) uint8 {
	if addr < peripheralLow {
		return p.User.ReadByte(mirror(addr))
	}
	switch addr {
	case addrTIER:
		return p.tier
	case addrFTCSR:
		return p.ftcsr
	case addrOCRxH:
		if p.tocr&tocrOCRBSelect != 0 {
			return p.ocrBH
		}
		return p.ocrAH
	case addrOCRxL:
		if p.tocr&tocrOCRBSelect != 0 {
			return p.ocrBL
		}
		return p.ocrAL
	case addrTCR:
		return p.tcr
	case addrTOCR:
		return p.tocr
	default:
		return p.faultByte(addr)
	}
}

func (p *PeripheralBus) WriteByte(addr uint32, val uint8) {
	if addr < peripheralLow {
		p.User.WriteByte(mirror(addr), val)
		return
	}
	switch addr {
	case addrTIER:
		p.tier = val
	case addrFTCSR:
		p.ftcsr = val
	case addrOCRxH:
		if p.tocr&tocrOCRBSelect != 0 {
			p.ocrBH = val
		} else {
			p.ocrAH = val
		}
	case addrOCRxL:
		if p.tocr&tocrOCRBSelect != 0 {
			p.ocrBL = val
		} else {
			p.ocrAL = val
		}
	case addrTCR:
		p.tcr = val
	case addrTOCR:
		p.tocr = val
	default:
		p.faultByte(addr)
	}
}

func (p *PeripheralBus) ReadWord(addr uint32) uint16 {
	if addr < peripheralLow {
		return p.User.ReadWord(mirror(addr))
	}
	switch addr {
	case addrIPRB:
		return p.iprb
	case addrVCRC:
		return p.vcrc
	default:
		return p.faultWord(addr)
	}
}

func (p *PeripheralBus) WriteWord(addr uint32, val uint16) {
	if addr < peripheralLow {
		p.User.WriteWord(mirror(addr), val)
		return
	}
	switch addr {
	case addrIPRB:
		p.iprb = val
	case addrVCRC:
		p.vcrc = val
	default:
		p.faultWord(addr)
	}
}

func (p *PeripheralBus) ReadLong(addr uint32) uint32 {
	if addr < peripheralLow {
		return p.User.ReadLong(mirror(addr))
	}
	return p.faultLong(addr)
}

func (p *PeripheralBus) WriteLong(addr uint32, val uint32) {
	if addr < peripheralLow {
		p.User.WriteLong(mirror(addr), val)
		return
	}
	p.faultLong(addr)
}
