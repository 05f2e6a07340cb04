package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gone/mem"
)

func newAddrCpu() *Cpu {
	return &Cpu{Bus: &mem.Bus{}}
}

func TestDecodeImplied(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.decode(Implied)
	assert.Equal(t, uint16(0x0200), c.ProgramCounter)
}

func TestDecodeAccumulator(t *testing.T) {
	c := newAddrCpu()
	c.Accumulator = 0x55
	c.decode(Accumulator)
	assert.Equal(t, byte(0x55), c.M)
}

func TestDecodeImmediate(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Bus.FakeRam[0x0200] = 0x42
	c.decode(Immediate)
	assert.Equal(t, uint16(0x0201), c.ProgramCounter)
	assert.Equal(t, byte(0x42), c.M)
}

func TestDecodeZeroPage(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Bus.FakeRam[0x0200] = 0x10
	c.Bus.FakeRam[0x0010] = 0x99
	c.decode(ZeroPage)
	assert.Equal(t, uint16(0x0010), c.AbsAddress)
	assert.Equal(t, byte(0x99), c.M)
}

func TestDecodeZeroPageXWraps(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.X = 0x20
	c.Bus.FakeRam[0x0200] = 0xf0 // 0xf0 + 0x20 wraps to 0x10 within page 0
	c.Bus.FakeRam[0x0010] = 0x55
	c.decode(ZeroPageX)
	assert.Equal(t, uint16(0x0010), c.AbsAddress)
	assert.Equal(t, byte(0x55), c.M)
}

func TestDecodeZeroPageY(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Y = 0x05
	c.Bus.FakeRam[0x0200] = 0x10
	c.Bus.FakeRam[0x0015] = 0x77
	c.decode(ZeroPageY)
	assert.Equal(t, uint16(0x0015), c.AbsAddress)
	assert.Equal(t, byte(0x77), c.M)
}

func TestDecodeRelativeForward(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Bus.FakeRam[0x0200] = 0x10 // +16
	c.decode(Relative)
	assert.Equal(t, uint16(0x0201+0x10), c.AbsAddress)
}

func TestDecodeRelativeBackward(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Bus.FakeRam[0x0200] = 0xf0 // -16
	c.decode(Relative)
	assert.Equal(t, uint16(0x0201-16), c.AbsAddress)
}

func TestDecodeAbsolute(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Bus.FakeRam[0x0200] = 0x34
	c.Bus.FakeRam[0x0201] = 0x12
	c.Bus.FakeRam[0x1234] = 0xab
	c.decode(Absolute)
	assert.Equal(t, uint16(0x0202), c.ProgramCounter)
	assert.Equal(t, uint16(0x1234), c.AbsAddress)
	assert.Equal(t, byte(0xab), c.M)
}

func TestDecodeAbsoluteXNoPageCross(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.X = 0x01
	c.Bus.FakeRam[0x0200] = 0x00
	c.Bus.FakeRam[0x0201] = 0x12 // base 0x1200 + 1 = 0x1201, same page
	c.decode(AbsoluteX)
	assert.Equal(t, uint16(0x1201), c.AbsAddress)
	assert.False(t, c.PageCrossed)
}

func TestDecodeAbsoluteXPageCross(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.X = 0x01
	c.Bus.FakeRam[0x0200] = 0xff
	c.Bus.FakeRam[0x0201] = 0x12 // base 0x12ff + 1 = 0x1300, page crossed
	c.decode(AbsoluteX)
	assert.Equal(t, uint16(0x1300), c.AbsAddress)
	assert.True(t, c.PageCrossed)
}

func TestDecodeAbsoluteYPageCross(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Y = 0x10
	c.Bus.FakeRam[0x0200] = 0xf8
	c.Bus.FakeRam[0x0201] = 0x12 // base 0x12f8 + 0x10 = 0x1308, page crossed
	c.decode(AbsoluteY)
	assert.Equal(t, uint16(0x1308), c.AbsAddress)
	assert.True(t, c.PageCrossed)
}

func TestDecodeIndirectX(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.X = 0x04
	c.Bus.FakeRam[0x0200] = 0x20     // ptr
	c.Bus.FakeRam[0x0024] = 0x74     // ptr+X -> col
	c.Bus.FakeRam[0x0025] = 0x20     // ptr+X+1 -> page
	c.Bus.FakeRam[0x2074] = 0x55
	c.decode(IndirectX)
	assert.Equal(t, uint16(0x2074), c.AbsAddress)
	assert.Equal(t, byte(0x55), c.M)
}

func TestDecodeIndirectXZeroPageWrap(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.X = 0xff
	c.Bus.FakeRam[0x0200] = 0x02 // ptr+X = 0x101, wraps to 0x01
	c.Bus.FakeRam[0x0001] = 0x34
	c.Bus.FakeRam[0x0002] = 0x12
	c.Bus.FakeRam[0x1234] = 0x9a
	c.decode(IndirectX)
	assert.Equal(t, uint16(0x1234), c.AbsAddress)
	assert.Equal(t, byte(0x9a), c.M)
}

func TestDecodeIndirectYNoPageCross(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Y = 0x01
	c.Bus.FakeRam[0x0200] = 0x10 // ptr
	c.Bus.FakeRam[0x0010] = 0x00
	c.Bus.FakeRam[0x0011] = 0x30 // base addr 0x3000 + 1 = 0x3001
	c.Bus.FakeRam[0x3001] = 0x5a
	c.decode(IndirectY)
	assert.Equal(t, uint16(0x3001), c.AbsAddress)
	assert.False(t, c.PageCrossed)
	assert.Equal(t, byte(0x5a), c.M)
}

func TestDecodeIndirectYPageCross(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Y = 0x10
	c.Bus.FakeRam[0x0200] = 0x10 // ptr
	c.Bus.FakeRam[0x0010] = 0xf8
	c.Bus.FakeRam[0x0011] = 0x30 // base addr 0x30f8 + 0x10 = 0x3108
	c.decode(IndirectY)
	assert.Equal(t, uint16(0x3108), c.AbsAddress)
	assert.True(t, c.PageCrossed)
}

func TestDecodeIndirect(t *testing.T) {
	c := newAddrCpu()
	c.ProgramCounter = 0x0200
	c.Bus.FakeRam[0x0200] = 0x00
	c.Bus.FakeRam[0x0201] = 0x03 // ptr = 0x0300
	c.Bus.FakeRam[0x0300] = 0x34
	c.Bus.FakeRam[0x0301] = 0x12 // real addr = 0x1234
	c.decode(Indirect)
	assert.Equal(t, uint16(0x0202), c.ProgramCounter)
	assert.Equal(t, uint16(0x1234), c.AbsAddress)
}

func TestDecodeIndirectPageBoundaryBug(t *testing.T) {
	// the classic 6502 JMP ($xxFF) bug: when the pointer's low byte is
	// 0xff, the high byte of the real address is fetched from $xx00
	// (wrapping within the same page) instead of the start of the next
	// page
	c := newAddrCpu()
	c.ProgramCounter = 0x0300
	c.Bus.FakeRam[0x0300] = 0xff // ptrCol
	c.Bus.FakeRam[0x0301] = 0x05 // ptrPage -> ptr = 0x05ff
	c.Bus.FakeRam[0x05ff] = 0x34 // real addr low byte
	c.Bus.FakeRam[0x0500] = 0x12 // real addr high byte, per the bug
	c.Bus.FakeRam[0x0600] = 0x99 // what a non-buggy fetch would read instead
	c.decode(Indirect)
	assert.Equal(t, uint16(0x1234), c.AbsAddress)
}
