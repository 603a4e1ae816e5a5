// Command sh2mon is an interactive terminal monitor for the SH-2
// interpreter: registers, a memory window, and a disassembly window are
// redrawn after every single step.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/spf13/cobra"

	"sh2"
)

var (
	cpu *sh2.CPU
	bus *sh2.PeripheralBus
	dis *sh2.Disassembler
	rom *flatBus

	paragraphRegs   *widgets.Paragraph
	paragraphMemory *widgets.Paragraph
	paragraphCode   *widgets.Paragraph
)

// flatBus is the "user" bus wrapped by the peripheral layer: a flat
// byte array loaded from the ROM file at address 0.
type flatBus struct {
	mem []byte
}

func (b *flatBus) ReadByte(addr uint32) uint8 { return b.mem[int(addr)%len(b.mem)] }

func (b *flatBus) ReadWord(addr uint32) uint16 {
	i := int(addr) % len(b.mem)
	return uint16(b.mem[i])<<8 | uint16(b.mem[(i+1)%len(b.mem)])
}

func (b *flatBus) ReadLong(addr uint32) uint32 {
	return uint32(b.ReadWord(addr))<<16 | uint32(b.ReadWord(addr+2))
}

func (b *flatBus) WriteByte(addr uint32, val uint8) { b.mem[int(addr)%len(b.mem)] = val }

func (b *flatBus) WriteWord(addr uint32, val uint16) {
	i := int(addr) % len(b.mem)
	b.mem[i] = byte(val >> 8)
	b.mem[(i+1)%len(b.mem)] = byte(val)
}

func (b *flatBus) WriteLong(addr uint32, val uint32) {
	b.WriteWord(addr, uint16(val>>16))
	b.WriteWord(addr+2, uint16(val))
}

func renderRegs(p *widgets.Paragraph) {
	sb := &strings.Builder{}
	regs := cpu.Registers()
	for row := 0; row < 2; row++ {
		for col := 0; col < 8; col++ {
			i := row*8 + col
			sb.WriteString(fmt.Sprintf("R%-2d=%08X ", i, regs.R[i]))
		}
		sb.WriteRune('\n')
	}
	sb.WriteString(fmt.Sprintf("PC=%08X VBR=%08X PR=%08X\n", regs.PC, regs.VBR, regs.PR))
	sb.WriteString(fmt.Sprintf("T=%v S=%v Q=%v M=%v I=%d\n", regs.T, regs.S, regs.Q, regs.M, regs.I))
	if err := cpu.Err(); err != nil {
		sb.WriteString(fmt.Sprintf("[HALTED: %v](fg:red)\n", err))
	}
	sb.WriteString(fmt.Sprintf("cycles=%d", cpu.Cycles()))
	p.Text = sb.String()
}

func renderMemory(p *widgets.Paragraph, addr uint32, numRow, numCol int) {
	sb := &strings.Builder{}
	a := addr
	for row := 0; row < numRow; row++ {
		sb.WriteString(fmt.Sprintf("%08X:", a))
		for col := 0; col < numCol; col++ {
			sb.WriteString(fmt.Sprintf(" %02X", bus.ReadByte(a)))
			a++
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func renderCode(p *widgets.Paragraph) {
	pc := cpu.PC()
	start := pc
	if start > 8 {
		start -= 8
	} else {
		start = 0
	}
	lines := dis.DisassembleRange(bus, start, start+40, pc)
	p.Text = strings.Join(lines, "\n")
}

func draw() {
	renderRegs(paragraphRegs)
	renderMemory(paragraphMemory, 0, 8, 8)
	renderCode(paragraphCode)
	ui.Render(paragraphRegs, paragraphMemory, paragraphCode)
}

func initLayout() {
	paragraphRegs = widgets.NewParagraph()
	paragraphRegs.Title = "Registers"
	paragraphRegs.SetRect(0, 0, 56, 7)

	paragraphMemory = widgets.NewParagraph()
	paragraphMemory.Title = "Memory"
	paragraphMemory.SetRect(0, 7, 56, 17)

	paragraphCode = widgets.NewParagraph()
	paragraphCode.Title = "Disassembly"
	paragraphCode.SetRect(56, 0, 56+60, 40)
}

func loadCPU(path string, pc, sp uint32) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rom = &flatBus{mem: data}
	bus = sh2.NewPeripheralBus(rom)
	cpu = sh2.NewCPU()
	cpu.Reset(pc, sp)
	dis = sh2.NewDisassembler()
	return nil
}

func run(romPath string, pc, sp uint32) error {
	if romPath == "" {
		return fmt.Errorf("--rom is required")
	}
	if err := loadCPU(romPath, pc, sp); err != nil {
		return err
	}

	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer ui.Close()

	initLayout()
	draw()

	for e := range ui.PollEvents() {
		if e.Type != ui.KeyboardEvent {
			continue
		}
		switch e.ID {
		case "q", "<C-c>":
			return nil
		case "<Space>":
			if cpu.Err() == nil {
				if _, err := cpu.Step(bus); err != nil {
					// cpu.Err() now reports it; rendered on next draw.
					_ = err
				}
			}
			draw()
		}
	}
	return nil
}

func main() {
	var romPath string
	var pc, sp uint32

	rootCmd := &cobra.Command{
		Use:   "sh2mon",
		Short: "Interactive terminal monitor for the SH-2 interpreter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(romPath, pc, sp)
		},
	}
	rootCmd.Flags().StringVar(&romPath, "rom", "", "Flat ROM image to load")
	rootCmd.Flags().Uint32Var(&pc, "pc", 0, "Reset PC")
	rootCmd.Flags().Uint32Var(&sp, "sp", 0, "Reset stack pointer (R15)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("sh2mon: %v", err)
	}
}
