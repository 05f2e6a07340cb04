package cpu

import "gone/mask"

// Status flag bit positions within the P register, MSB first to match
// mask's 1-indexed addressing.
//
// 7654 3210
// NV1B DIZC
const (
	bitNegative = mask.I1
	bitOverflow = mask.I2
	bitUnused   = mask.I3
	bitB        = mask.I4
	bitDecimal  = mask.I5
	bitDisableI = mask.I6
	bitZero     = mask.I7
	bitCarry    = mask.I8
)

// flagsByte packs Flags into the single-byte P register layout used by the
// stack and by PHP/PLP/BRK/RTI.
func (c *Cpu) flagsByte() byte {
	var p byte
	if c.Flags.Negative {
		p = mask.Set(p, bitNegative, 1)
	}
	if c.Flags.Overflow {
		p = mask.Set(p, bitOverflow, 1)
	}
	if c.Flags.Unused {
		p = mask.Set(p, bitUnused, 1)
	}
	if c.Flags.B {
		p = mask.Set(p, bitB, 1)
	}
	if c.Flags.Decimal {
		p = mask.Set(p, bitDecimal, 1)
	}
	if c.Flags.DisableInterrupt {
		p = mask.Set(p, bitDisableI, 1)
	}
	if c.Flags.Zero {
		p = mask.Set(p, bitZero, 1)
	}
	if c.Flags.Carry {
		p = mask.Set(p, bitCarry, 1)
	}
	return p
}

// loadFlagsByte unpacks a P register byte (as pulled from the stack) into
// Flags. The Unused bit is always forced to true; B reflects whatever was on
// the stack, since BRK pushes it set and an IRQ/NMI push it clear.
func (c *Cpu) loadFlagsByte(p byte) {
	c.Flags.Negative = mask.IsSet(p, bitNegative)
	c.Flags.Overflow = mask.IsSet(p, bitOverflow)
	c.Flags.Unused = true
	c.Flags.B = mask.IsSet(p, bitB)
	c.Flags.Decimal = mask.IsSet(p, bitDecimal)
	c.Flags.DisableInterrupt = mask.IsSet(p, bitDisableI)
	c.Flags.Zero = mask.IsSet(p, bitZero)
	c.Flags.Carry = mask.IsSet(p, bitCarry)
}

// setZN updates the Zero and Negative flags from v, as nearly every
// load/transfer/arithmetic instruction does with its result.
func (c *Cpu) setZN(v byte) {
	c.Flags.Zero = v == 0
	c.Flags.Negative = v&0x80 > 0
}
