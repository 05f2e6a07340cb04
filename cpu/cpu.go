// Package cpu implements the MOS Technology 6502 microprocessor, as used in
// the NES.

package cpu

import (
	"strconv"
	"strings"

	"gone/mask"
	"gone/mem"
)

// https://www.nesdev.org/wiki/CPU#Frequencies
// https://www.nesdev.org/wiki/Cycle_reference_chart#Clock_rates

// pageCrossReadOps are the mnemonics that take an extra cycle when an
// indexed addressing mode (AbsoluteX, AbsoluteY, IndirectY) crosses a page
// boundary. Stores and read-modify-write instructions always pay the
// indexed-mode cost up front (already reflected in Opcodes) and never get
// this bonus.
var pageCrossReadOps = map[string]bool{
	"ADC": true, "AND": true, "CMP": true, "EOR": true,
	"LDA": true, "ORA": true, "SBC": true, "LDX": true, "LDY": true,
}

// The Cpu has no memory of its own (aside from a number of small registers
// which amount to about 7 bytes). Instead, the Cpu interfaces with a Bus that
// provides memory.
type Cpu struct {
	Bus *mem.Bus

	// https://problemkaputt.de/everynes.htm#cpuregistersandflags
	// https://www.nesdev.org/wiki/CPU_ALL#CPU_2
	// https://www.nesdev.org/wiki/Status_flags#Flags

	// Flags are 8 bits that make up the status register (aka P register).
	//
	// 7654 3210
	// NV1B DIZC
	Flags struct {
		Negative         bool // bit 7; only if signed ints are used
		Overflow         bool // bit 6; only if signed ints are used
		Unused           bool // bit 5; always reads as 1
		B                bool // bit 4; only meaningful on the byte pushed to the stack
		Decimal          bool // bit 3; BCD mode for ADC/SBC
		DisableInterrupt bool // bit 2
		Zero             bool // bit 1
		Carry            bool // bit 0
		// note: if numeric indexing is required, switch to `Flags byte`
	}

	Accumulator byte // The Accumulator represents a byte value for immediate use, similar to a local variable
	X           byte
	Y           byte

	// Stack instructions (PHA, PLA, PHP, PLP, JSR, RTS, BRK, RTI) always
	// access the 01 page (0x0100-0x01ff). The Cpu can store a low byte in
	// this register.
	Stack byte

	// The ProgramCounter is a 2-byte (word) memory address that increments
	// (almost) continuously. The byte located at this address should
	// provide the CPU with an Opcode that specifies the next instruction
	// to execute.
	ProgramCounter uint16
	// https://en.wikipedia.org/wiki/Program_counter

	M           byte // after AddressingMode
	AbsAddress  uint16
	Mode        AddressingMode // the addressing mode of the instruction currently executing
	PageCrossed bool           // set by decode when an indexed mode crosses a page
	Cycles      byte           // cycle cost of the most recently executed instruction

	// LastFallback records whether the most recently fetched byte did not
	// correspond to a documented opcode. The Cpu still executes something
	// (a NOP-equivalent, per NMOS convention) rather than halting, but a
	// harness observing this flag can surface the event to the user.
	LastFallback bool

	// TotalCycles counts every cycle elapsed since reset, for harness-side
	// throttling and snapshotting.
	TotalCycles uint64
}

// Registers is a snapshot of Cpu state cheap enough to copy across a
// channel, used by a harness to report progress to an observer without
// handing out a pointer into live, concurrently-mutated Cpu state.
type Registers struct {
	A, X, Y, Stack byte
	PC             uint16
	Status         byte
	Cycles         uint64
	LastFallback   bool
}

// Snapshot copies the Cpu's externally-visible state. Safe to call only from
// the goroutine that owns the Cpu (a harness serializes access via its
// command channel, never by sharing the Cpu pointer itself).
func (c *Cpu) Snapshot() Registers {
	return Registers{
		A:            c.Accumulator,
		X:            c.X,
		Y:            c.Y,
		Stack:        c.Stack,
		PC:           c.ProgramCounter,
		Status:       c.flagsByte(),
		Cycles:       c.TotalCycles,
		LastFallback: c.LastFallback,
	}
}

// Read reads one byte from the given addr. The addr is typically supplied by
// the program.
func (c *Cpu) Read(addr uint16) byte {
	// note: we usually return byte, but Cpu typically has to cast
	// ('concats') bytes into uint16 to form mem addresses
	return c.Bus.Read(addr, true)
}

// Write passes data to the Bus, which actually performs the write.
func (c *Cpu) Write(
	addr uint16, // addresses are 2 bytes (16 bits) wide; see xxd
	data byte,
) {
	c.Bus.Write(addr, data)
}

// push writes v to the current stack address and decrements Stack. Like the
// real 6502, Stack wraps at the page boundary rather than growing past it;
// Go's byte arithmetic does this for free.
func (c *Cpu) push(v byte) {
	c.Write(0x0100|uint16(c.Stack), v)
	c.Stack--
}

// pop increments Stack and reads the byte now on top.
func (c *Cpu) pop() byte {
	c.Stack++
	return c.Read(0x0100 | uint16(c.Stack))
}

// pushWord pushes a 16-bit address high byte first, matching JSR/BRK/IRQ/NMI.
func (c *Cpu) pushWord(w uint16) {
	c.push(byte(w >> 8))
	c.push(byte(w))
}

// popWord pulls a 16-bit address low byte first, the inverse of pushWord.
func (c *Cpu) popWord() uint16 {
	lo := c.pop()
	hi := c.pop()
	return mask.Word(hi, lo)
}

// storeM writes the post-instruction value of M back to wherever it came
// from: the Accumulator itself (Accumulator mode) or the effective address
// (every other read-modify-write mode). ASL/LSR/ROL/ROR/INC/DEC all share
// this.
func (c *Cpu) storeM() {
	if c.Mode == Accumulator {
		c.Accumulator = c.M
		return
	}
	c.Write(c.AbsAddress, c.M)
}

// LoadProgram reads a slice of bytes and places it at the given addr.
func (c *Cpu) LoadProgram(program []byte, addr uint16) {
	for i, s := range strings.Fields(string(program)) {
		b, err := strconv.ParseInt(s, 16, 16)
		if err != nil {
			panic(err)
		}
		c.Bus.FakeRam[addr+uint16(i)] = byte(b)
	}
}

// An AddressingMode tells the Cpu where to access (look for) a given byte of
// memory. There are 13 possible modes.
//
// Most Instructions can index the full 64 kB range of memory, that is, 256
// pages of 256 bytes. The exception is ZeroPage, which is confined to the
// first page of 256 bytes.
type AddressingMode int

// https://problemkaputt.de/everynes.htm#cpumemoryaddressing
// https://www.middle-engine.com/blog/posts/2020/06/23/programming-the-nes-the-6502-in-detail#addressing-modes
// https://www.nesdev.org/wiki/CPU_addressing_modes

const (
	// 0 increments

	Implied     AddressingMode = iota // does not increment ProgramCounter
	Accumulator                       // use Cpu.Accumulator

	// 1 increment, 1 (or 3) read

	Immediate // use the ProgramCounter itself
	ZeroPage  // 0x0000-0x00ff
	ZeroPageX
	ZeroPageY // LDX, STX
	IndirectX // rarely used

	IndirectY // 3 reads, may involve page crossing
	Relative  // 3 reads

	// 2 increments, 2 reads

	Absolute
	AbsoluteX // may involve page crossing
	AbsoluteY // may involve page crossing

	// 2 increments, 4 reads

	Indirect // JMP
)

func (c *Cpu) fetch(b byte) Opcode {
	oc := Opcodes[b]
	c.LastFallback = oc.Illegal
	return oc
}

// Opcode peeks at the Opcode the next Step will execute, without mutating
// any Cpu state. A harness uses this to log what's about to run before it
// runs.
func (c *Cpu) Opcode() Opcode {
	return Opcodes[c.Read(c.ProgramCounter)]
}

// Step runs exactly one fetch/decode/execute cycle. It is the only
// supported way for code outside this package to advance the Cpu.
func (c *Cpu) Step() error {
	return c.tick()
}

// Reset runs the Cpu's reset sequence, loading the program counter from the
// reset vector at 0xfffc/0xfffd.
func (c *Cpu) Reset() {
	c.reset()
}

// decode fetches a byte of data from memory, accounting for the addressing
// mode. c.ProgramCounter is incremented zero to two times.
//
// The retrieved byte is stored in c.M, so that it can be used by the following
// Instruction. c.AbsAddress holds the effective address, used by stores,
// jumps, and read-modify-write instructions to write back.
//
// c.PageCrossed is set if a page boundary was crossed while indexing in
// AbsoluteX, AbsoluteY, or IndirectY mode; the caller decides whether that
// earns an extra cycle. For Relative mode, the extra cycle(s) are entirely
// up to the branch instruction.
func (c *Cpu) decode(a AddressingMode) { // {{{

	// https://www.ascii-code.com/

	switch a {

	// using a byte in a register directly is always faster than a memory
	// read (c.read). similarly, reading from the zero page is faster than
	// reading from distant pages.

	// 0 reads

	case Implied:
		// no byte to fetch
		return // 0

	case Accumulator:
		// the byte -is- the Accumulator
		c.M = c.Accumulator
		return

	case Immediate:
		c.AbsAddress = c.ProgramCounter
		c.ProgramCounter++

	// 1 read

	case ZeroPage:
		c.AbsAddress = uint16(c.Read(c.ProgramCounter))
		c.ProgramCounter++
		c.AbsAddress &= 0x00ff // clear high byte (go to page 0), keep low byte

	case ZeroPageX:
		// think struct ptr + offset. c.X is probably set by a prior
		// instruction
		c.AbsAddress = uint16(c.Read(c.ProgramCounter) + c.X)
		c.ProgramCounter++
		c.AbsAddress &= 0x00ff

	case ZeroPageY:
		c.AbsAddress = uint16(c.Read(c.ProgramCounter) + c.Y)
		c.ProgramCounter++
		c.AbsAddress &= 0x00ff

	case Relative:
		// fetch a byte somewhere up to half a page away from current
		// absolute address (in either direction); the branch
		// instruction decides whether to actually jump there

		rel := c.Read(c.ProgramCounter)
		c.ProgramCounter++

		// https://github.com/fogleman/nes/blob/3880f3400500b1ff2e89af4e12e90be46c73ae07/nes/cpu.go#L469
		c.AbsAddress = c.ProgramCounter + uint16(rel)

		// this comparison checks the leftmost bit of rel. in concrete
		// terms, &0x80 returns 128 for all rel>=128 (in which case
		// move back a page), 0 otherwise (in which case we use rel as
		// is and move forward)
		if rel&0x80 > 0 {
			c.AbsAddress -= 0x0100
		}

	// 2 reads

	case Absolute:
		// read pc twice to get a 2-byte addr (1st col, then page),
		// then go to (read data from) that new addr

		// The 6502 is little endian, so the number at the 1st address
		// read becomes the low byte (column).
		// https://stackoverflow.com/a/77683792

		col := c.Read(c.ProgramCounter) // 0xff
		c.ProgramCounter++
		page := c.Read(c.ProgramCounter) // 0xff00
		c.ProgramCounter++
		c.AbsAddress = mask.Word(page, col)

	case AbsoluteX:
		col := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		page := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		c.AbsAddress = mask.Word(page, col)

		c.AbsAddress += uint16(c.X)
		if c.AbsAddress&0xff00 != uint16(page)<<8 {
			c.PageCrossed = true
		}

	case AbsoluteY:
		col := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		page := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		c.AbsAddress = mask.Word(page, col)

		c.AbsAddress += uint16(c.Y)
		if c.AbsAddress&0xff00 != uint16(page)<<8 {
			c.PageCrossed = true
		}

	// 3 reads

	case IndirectX:

		// only 1 pc increment, but 3 reads
		ptr := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		// we only jump once, to somewhere in page 0. once there, we
		// read 2 adjacent bytes, with a given X offset, and concat
		// those 2 bytes into a new word (addr), which is where we go
		// to.

		// note: the addition is done in byte arithmetic before the cast,
		// so it wraps within page 0
		col := c.Read(uint16(ptr+c.X) & 0x00ff)
		page := c.Read(uint16(ptr+1+c.X) & 0x00ff) // no 0xxxff bug, apparently
		c.AbsAddress = mask.Word(page, col)

	case IndirectY:

		// only 1 pc increment, but 3 reads
		ptr := c.Read(c.ProgramCounter)
		c.ProgramCounter++

		// unlike IndirectX, the Y increment is applied -after- the
		// indirection, not before. this means that a page cross is
		// possible, and must be checked
		col := c.Read(uint16(ptr) & 0x00ff)
		page := c.Read(uint16(ptr+1) & 0x00ff)
		c.AbsAddress = mask.Word(page, col)

		c.AbsAddress += uint16(c.Y)
		if c.AbsAddress&0xff00 != uint16(page)<<8 {
			c.PageCrossed = true
		}

	// 4 reads

	case Indirect:

		// first, we get a 2-byte addr (row,col), then go to that addr,
		// similar to Absolute mode. however, unlike Absolute mode, we
		// don't stop there, because the 2 bytes we read are not data,
		// but a pointer to an address, which we must jump to in order
		// to get the actual data.
		//
		// as a result, 4 reads are performed in total. however, the pc
		// is still only incremented twice.

		ptrCol := c.Read(c.ProgramCounter)
		c.ProgramCounter++
		ptrPage := c.Read(c.ProgramCounter)
		ptr := mask.Word(ptrPage, ptrCol)
		c.ProgramCounter++

		// now that we have the pointer, get the contents of the addr,
		// and its neighbour
		realCol := c.Read(ptr)

		var realPage byte
		if ptrCol == 0xff {
			// bug: while reading the bytes for the ptr, a page
			// cross may have occurred. if so, read from 1st byte
			// of the same page (0xYY00)
			// http://www.6502.org/tutorials/6502opcodes.html#JMP
			// https://atariwiki.org/wiki/Wiki.jsp?page=6502%20bugs
			realPage = c.Read(ptr & 0xff00)
		} else {
			realPage = c.Read(ptr + 1)
		}

		c.AbsAddress = mask.Word(realPage, realCol)

	}

	c.M = c.Read(c.AbsAddress)
} // }}}

// tick runs a single fetch/decode/execute cycle, setting c.Cycles to the
// appropriate number. The Cpu must 'wait' this number of cycles before the
// next tick call.
func (c *Cpu) tick() error {
	// https://en.wikipedia.org/wiki/Instruction_cycle#Summary_of_stages

	// like OLC, this is not clock cycle accurate; we perform all the work
	// at once, and simply wait until the correct number of cycles has
	// elapsed. real hardware is slow and is always performing something
	// every cycle, thus requiring the full number of cycles for execution
	//
	// https://old.reddit.com/r/EmuDev/comments/pkgxws/what_cycles_really_are/hc3fqcf/

	b := c.Read(c.ProgramCounter)
	op := c.fetch(b)
	c.ProgramCounter++ // decoding the opcode always requires 1 cycle

	c.Mode = op.AddressingMode
	c.PageCrossed = false
	c.decode(op.AddressingMode)

	// executing the opcode requires another ?-? cycles; the return value
	// is extra cycles earned by the instruction itself (only branches use
	// this, for the taken/page-cross bonus)
	extra := op.Instruction(c)

	c.Cycles = op.Cycles + extra
	if c.PageCrossed && pageCrossReadOps[op.Name] {
		c.Cycles++
	}
	c.TotalCycles += uint64(c.Cycles)

	return nil
}

// fffa nmi
// fffc reset
// fffe irq/brk

// http://www.6502.org/users/andre/65k/af65002/af65002int.html
// https://superuser.com/a/606770
// https://www.pagetable.com/?p=410

func (c *Cpu) nmi() {
	// async interrupt (after curr instr; cannot be ignored)
	c.pushWord(c.ProgramCounter)

	c.Flags.B = false
	c.Flags.Unused = true
	c.push(c.flagsByte())
	c.Flags.DisableInterrupt = true

	lo := c.Read(0xfffa)
	hi := c.Read(0xfffb)
	c.ProgramCounter = mask.Word(hi, lo)

	c.Cycles = 8
}

func (c *Cpu) reset() {
	// async interrupt

	c.Accumulator = 0
	c.X = 0
	c.Y = 0

	c.Stack = 0xfd // decremented 3x (from 00) -- TODO: better citation needed

	c.Flags.Negative = false
	c.Flags.Overflow = false
	c.Flags.Unused = true
	c.Flags.DisableInterrupt = false
	c.Flags.Zero = false
	c.Flags.Carry = false
	c.Flags.B = false
	c.Flags.Decimal = false

	lo := c.Read(0xfffc)
	hi := c.Read(0xfffd)
	c.ProgramCounter = mask.Word(hi, lo)

	c.M = 0
	c.AbsAddress = 0
	c.Cycles = 8
}

func (c *Cpu) irq() {
	// async interrupt (after curr instr; may be ignored)
	if c.Flags.DisableInterrupt {
		return
	}

	// https://www.nesdev.org/wiki/CPU_interrupts#IRQ_and_NMI_tick-by-tick_execution

	c.pushWord(c.ProgramCounter)

	c.Flags.B = false
	c.Flags.Unused = true
	c.push(c.flagsByte())
	c.Flags.DisableInterrupt = true

	lo := c.Read(0xfffe)
	hi := c.Read(0xffff)
	c.ProgramCounter = mask.Word(hi, lo)

	c.Cycles = 7
}
