package cpu

import "gone/mask"

// all function signatures were automatically generated from
// https://www.nesdev.org/obelisk-6502-guide/reference.html

// 1-byte instr e.g. clc
// 2-byte instr e.g. 1-byte read: lda $41
// 3-byte instr e.g. 2-byte read: lda $0105
//
// what (func name), how many args, how long (cycles)

// http://www.6502.org/tutorials/6502opcodes.html
// https://analog-hors.github.io/site/pones-p1/img/6502-opcode-table.png
// https://atariwiki.org/wiki/attach/OpCodes/OpCodes.jpg
// https://makingnesgames.com/Instruction_Set.html
// https://pbsandjay.github.io/
// https://problemkaputt.de/everynes.htm#cpuarithmeticlogicaloperations
// https://www.chibiakumas.com/book/CheatSheetCollection.pdf
// https://www.nesdev.org/obelisk-6502-guide/reference.html (best)

// how to read obelisk guide:
// A,Z,N = A&M
// [target],[flags...] = [op]

// ADC - Add with Carry
func (c *Cpu) ADC() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#ADC
	a := c.Accumulator
	m := c.M
	var carryIn byte
	if c.Flags.Carry {
		carryIn = 1
	}

	sum := uint16(a) + uint16(m) + uint16(carryIn)
	result := byte(sum)

	// Z, N, and V are derived from the binary result even in Decimal
	// mode; this is an NMOS quirk (the hardware BCD corrector only
	// touches A and C), not a deliberate design choice by whoever wrote
	// the 6502's ALU.
	c.Flags.Zero = result == 0
	c.Flags.Negative = result&0x80 > 0
	c.Flags.Overflow = (a^result)&(m^result)&0x80 > 0
	c.Flags.Carry = sum > 0xff

	if c.Flags.Decimal {
		lo := (a & 0x0f) + (m & 0x0f) + carryIn
		hi := (a >> 4) + (m >> 4)
		if lo > 9 {
			lo += 6
			hi++
		}
		if hi > 9 {
			hi += 6
			c.Flags.Carry = true
		}
		c.Accumulator = (hi << 4) | (lo & 0x0f)
	} else {
		c.Accumulator = result
	}

	return 0
}

// AND - Logical AND
func (c *Cpu) AND() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#AND
	c.Accumulator &= c.M
	c.setZN(c.Accumulator)
	return 0
}

// ASL - Arithmetic Shift Left
func (c *Cpu) ASL() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#ASL
	c.Flags.Carry = c.M&0x80 > 0 // old bit 7
	c.M <<= 1
	c.setZN(c.M)
	c.storeM()
	return 0
}

// BCC - Branch if Carry Clear
func (c *Cpu) BCC() byte { return c.branch(!c.Flags.Carry) }

// BCS - Branch if Carry Set
func (c *Cpu) BCS() byte { return c.branch(c.Flags.Carry) }

// BEQ - Branch if Equal
func (c *Cpu) BEQ() byte { return c.branch(c.Flags.Zero) }

// BIT - Bit Test
func (c *Cpu) BIT() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#BIT
	c.Flags.Zero = c.M&c.Accumulator == 0
	c.Flags.Negative = c.M&0x80 > 0
	c.Flags.Overflow = c.M&0x40 > 0 // bit 6 set
	return 0
}

// BMI - Branch if Minus
func (c *Cpu) BMI() byte { return c.branch(c.Flags.Negative) }

// BNE - Branch if Not Equal
func (c *Cpu) BNE() byte { return c.branch(!c.Flags.Zero) }

// BPL - Branch if Positive
func (c *Cpu) BPL() byte { return c.branch(!c.Flags.Negative) }

// branch implements the shared control flow for every conditional branch:
// taken branches cost one extra cycle, and a further one if the branch
// target lands on a different page than the instruction following the
// branch.
func (c *Cpu) branch(condition bool) byte {
	if !condition {
		return 0
	}
	oldPC := c.ProgramCounter
	c.ProgramCounter = c.AbsAddress
	if oldPC&0xff00 != c.AbsAddress&0xff00 {
		return 2
	}
	return 1
}

// BRK - Force Interrupt
func (c *Cpu) BRK() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#BRK
	// BRK is a 2-byte instruction: the byte after the opcode is a padding
	// byte (commonly used as a break-reason marker) which is skipped, not
	// executed.
	c.ProgramCounter++
	c.pushWord(c.ProgramCounter)

	c.Flags.B = true
	c.Flags.Unused = true
	c.push(c.flagsByte())
	c.Flags.DisableInterrupt = true

	lo := c.Read(0xfffe)
	hi := c.Read(0xffff)
	c.ProgramCounter = mask.Word(hi, lo)

	return 0
}

// BVC - Branch if Overflow Clear
func (c *Cpu) BVC() byte { return c.branch(!c.Flags.Overflow) }

// BVS - Branch if Overflow Set
func (c *Cpu) BVS() byte { return c.branch(c.Flags.Overflow) }

// CLC - Clear Carry Flag
func (c *Cpu) CLC() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#CLC
	c.Flags.Carry = false
	return 0
}

// CLD - Clear Decimal Mode
func (c *Cpu) CLD() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#CLD
	c.Flags.Decimal = false
	return 0
}

// CLI - Clear Interrupt Disable
func (c *Cpu) CLI() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#CLI
	c.Flags.DisableInterrupt = false
	return 0
}

// CLV - Clear Overflow Flag
func (c *Cpu) CLV() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#CLV
	c.Flags.Overflow = false
	return 0
}

// CMP - Compare
func (c *Cpu) CMP() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#CMP
	c.compare(c.Accumulator)
	return 0
}

// CPX - Compare X Register
func (c *Cpu) CPX() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#CPX
	c.compare(c.X)
	return 0
}

// CPY - Compare Y Register
func (c *Cpu) CPY() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#CPY
	c.compare(c.Y)
	return 0
}

// compare is shared by CMP/CPX/CPY: all three subtract M from a register
// without storing the result, updating C/Z/N from the (byte-wrapped)
// difference.
func (c *Cpu) compare(reg byte) {
	diff := reg - c.M
	c.Flags.Carry = reg >= c.M
	c.Flags.Zero = diff == 0
	c.Flags.Negative = diff&0x80 > 0
}

// DEC - Decrement Memory
func (c *Cpu) DEC() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#DEC
	c.M--
	c.setZN(c.M)
	c.storeM()
	return 0
}

// DEX - Decrement X Register
func (c *Cpu) DEX() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#DEX
	c.X--
	c.setZN(c.X)
	return 0
}

// DEY - Decrement Y Register
func (c *Cpu) DEY() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#DEY
	c.Y--
	c.setZN(c.Y)
	return 0
}

// EOR - Exclusive OR
func (c *Cpu) EOR() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#EOR
	c.Accumulator ^= c.M
	c.setZN(c.Accumulator)
	return 0
}

// INC - Increment Memory
func (c *Cpu) INC() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#INC
	c.M++
	c.setZN(c.M)
	c.storeM()
	return 0
}

// INX - Increment X Register
func (c *Cpu) INX() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#INX
	c.X++
	c.setZN(c.X)
	return 0
}

// INY - Increment Y Register
func (c *Cpu) INY() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#INY
	c.Y++
	c.setZN(c.Y)
	return 0
}

// JMP - Jump
func (c *Cpu) JMP() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#JMP
	c.ProgramCounter = c.AbsAddress
	return 0
}

// JSR - Jump to Subroutine
func (c *Cpu) JSR() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#JSR
	// JSR pushes the address of the last byte of the JSR instruction
	// itself (not the next instruction); RTS adds the 1 back.
	c.pushWord(c.ProgramCounter - 1)
	c.ProgramCounter = c.AbsAddress
	return 0
}

// LDA - Load Accumulator
func (c *Cpu) LDA() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#LDA
	c.Accumulator = c.M
	c.setZN(c.Accumulator)
	return 0
}

// LDX - Load X Register
func (c *Cpu) LDX() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#LDX
	c.X = c.M
	c.setZN(c.X)
	return 0
}

// LDY - Load Y Register
func (c *Cpu) LDY() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#LDY
	c.Y = c.M
	c.setZN(c.Y)
	return 0
}

// LSR - Logical Shift Right
func (c *Cpu) LSR() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#LSR
	c.Flags.Carry = c.M&0x01 > 0 // old bit 0
	c.M >>= 1
	c.setZN(c.M)
	c.storeM()
	return 0
}

// NOP - No Operation
func (c *Cpu) NOP() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#NOP
	return 0
}

// ORA - Logical Inclusive OR
func (c *Cpu) ORA() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#ORA
	c.Accumulator |= c.M
	c.setZN(c.Accumulator)
	return 0
}

// PHA - Push Accumulator
func (c *Cpu) PHA() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#PHA
	c.push(c.Accumulator)
	return 0
}

// PHP - Push Processor Status
func (c *Cpu) PHP() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#PHP
	// The byte pushed always has B and Unused set, regardless of the
	// live Flags.B value.
	p := c.flagsByte() | 0x30
	c.push(p)
	return 0
}

// PLA - Pull Accumulator
func (c *Cpu) PLA() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#PLA
	c.Accumulator = c.pop()
	c.setZN(c.Accumulator)
	return 0
}

// PLP - Pull Processor Status
func (c *Cpu) PLP() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#PLP
	c.loadFlagsByte(c.pop())
	return 0
}

// ROL - Rotate Left
func (c *Cpu) ROL() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#ROL
	oldCarry := c.Flags.Carry
	c.Flags.Carry = c.M&0x80 > 0 // old bit 7
	c.M <<= 1
	if oldCarry {
		c.M |= 0x01
	}
	c.setZN(c.M)
	c.storeM()
	return 0
}

// ROR - Rotate Right
func (c *Cpu) ROR() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#ROR
	oldCarry := c.Flags.Carry
	c.Flags.Carry = c.M&0x01 > 0 // old bit 0
	c.M >>= 1
	if oldCarry {
		c.M |= 0x80
	}
	c.setZN(c.M)
	c.storeM()
	return 0
}

// RTI - Return from Interrupt
func (c *Cpu) RTI() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#RTI
	// invoked at the end of an interrupt handler
	c.loadFlagsByte(c.pop())
	c.ProgramCounter = c.popWord()
	return 0
}

// RTS - Return from Subroutine
func (c *Cpu) RTS() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#RTS
	// The RTS instruction is used at the end of a subroutine to return to
	// the calling routine. It pulls the program counter, then adds one
	// (JSR pushed the address of its own last byte, not the next
	// instruction).
	c.ProgramCounter = c.popWord() + 1
	return 0
}

// SBC - Subtract with Carry
func (c *Cpu) SBC() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#SBC
	a := c.Accumulator
	m := c.M
	var borrowIn int16
	if !c.Flags.Carry {
		borrowIn = 1
	}

	diff := int16(a) - int16(m) - borrowIn
	result := byte(diff)

	// As with ADC, Z/N/V always come from the binary subtraction, even in
	// Decimal mode; unlike ADC, so does C.
	c.Flags.Zero = result == 0
	c.Flags.Negative = result&0x80 > 0
	c.Flags.Overflow = (a^m)&(a^result)&0x80 > 0
	c.Flags.Carry = diff >= 0

	if c.Flags.Decimal {
		lo := int16(a&0x0f) - int16(m&0x0f) - borrowIn
		hi := int16(a>>4) - int16(m>>4)
		if lo < 0 {
			lo -= 6
			hi--
		}
		if hi < 0 {
			hi -= 6
		}
		c.Accumulator = byte(hi<<4)&0xf0 | byte(lo&0x0f)
	} else {
		c.Accumulator = result
	}

	return 0
}

// SEC - Set Carry Flag
func (c *Cpu) SEC() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#SEC
	c.Flags.Carry = true
	return 0
}

// SED - Set Decimal Flag
func (c *Cpu) SED() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#SED
	c.Flags.Decimal = true
	return 0
}

// SEI - Set Interrupt Disable
func (c *Cpu) SEI() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#SEI
	c.Flags.DisableInterrupt = true
	return 0
}

// STA - Store Accumulator
func (c *Cpu) STA() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#STA
	c.M = c.Accumulator
	c.Write(c.AbsAddress, c.M)
	return 0
}

// STX - Store X Register
func (c *Cpu) STX() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#STX
	c.M = c.X
	c.Write(c.AbsAddress, c.M)
	return 0
}

// STY - Store Y Register
func (c *Cpu) STY() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#STY
	c.M = c.Y
	c.Write(c.AbsAddress, c.M)
	return 0
}

// TAX - Transfer Accumulator to X
func (c *Cpu) TAX() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#TAX
	c.X = c.Accumulator
	c.setZN(c.X)
	return 0
}

// TAY - Transfer Accumulator to Y
func (c *Cpu) TAY() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#TAY
	c.Y = c.Accumulator
	c.setZN(c.Y)
	return 0
}

// TSX - Transfer Stack Pointer to X
func (c *Cpu) TSX() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#TSX
	c.X = c.Stack
	c.setZN(c.X)
	return 0
}

// TXA - Transfer X to Accumulator
func (c *Cpu) TXA() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#TXA
	c.Accumulator = c.X
	c.setZN(c.Accumulator)
	return 0
}

// TXS - Transfer X to Stack Pointer
func (c *Cpu) TXS() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#TXS
	// unlike TSX, this does not touch any flags
	c.Stack = c.X
	return 0
}

// TYA - Transfer Y to Accumulator
func (c *Cpu) TYA() byte {
	// https://www.nesdev.org/obelisk-6502-guide/reference.html#TYA
	c.Accumulator = c.Y
	c.setZN(c.Accumulator)
	return 0
}
