// Package harness owns a cpu.Cpu on a dedicated goroutine and exposes it to
// an observer (typically a tui) exclusively through commands and snapshots,
// the same separation the teacher's bubbletea model would otherwise have to
// fake by poking directly at Cpu fields from another goroutine.
package harness

import (
	"time"

	"gone/cpu"
	"gone/mem"
)

// A Command is sent on a Harness's command channel to change its run state
// or request a snapshot. It is a closed sum type: the concrete types below
// are the only valid values.
type Command interface {
	isCommand()
}

// FasterCmd halves the inter-instruction delay; a delay under 2ms drops
// straight to 0, i.e. full speed.
type FasterCmd struct{}

// SlowerCmd doubles the inter-instruction delay (starting from 1ms if
// currently unthrottled).
type SlowerCmd struct{}

// PauseCmd toggles the paused state.
type PauseCmd struct{}

// StepCmd executes exactly one instruction while paused; a no-op while
// running.
type StepCmd struct{}

// GetDataCmd requests a Snapshot, delivered on Reply. Reply must be buffered
// or otherwise non-blocking from the Harness's perspective; the Harness
// sends once and moves on.
type GetDataCmd struct {
	Reply chan<- Snapshot
}

func (FasterCmd) isCommand()  {}
func (SlowerCmd) isCommand()  {}
func (PauseCmd) isCommand()   {}
func (StepCmd) isCommand()    {}
func (GetDataCmd) isCommand() {}

// TraceEntry is one (possibly repeated) logged event. Consecutive identical
// messages are collapsed into a single entry with an incrementing Qty,
// rather than growing the trace unboundedly in a tight loop.
type TraceEntry struct {
	Msg string
	Qty uint64
}

const (
	traceCap = 30

	// outputBase/outputSize mirror a convention common to simple 6502
	// monitor programs: a fixed memory-mapped window a program writes
	// human-readable output to, which the observer renders without the
	// Cpu knowing anything about rendering.
	outputBase = 0xf000
	outputSize = 0x100

	// windowRadius controls how much memory around the PC is included in
	// a Snapshot, so an observer can render a disassembly view without
	// shipping the entire 64kB address space on every tick.
	windowRadius = 256

	// nopStormSpeed throttles execution down hard as soon as the decoder
	// falls back to a non-canonical opcode. A tight loop built entirely
	// out of undocumented bytes is almost always a stuck program, not a
	// deliberate one; slowing it down gives a user watching the trace a
	// chance to notice and step in before it burns through the window.
	nopStormSpeed = time.Second
)

// Snapshot is a point-in-time, copy-only view of the machine, safe to hand
// to an observer goroutine.
type Snapshot struct {
	Registers cpu.Registers
	Window    []byte // memory within windowRadius bytes of PC
	WindowLo  uint16 // address the Window slice starts at
	Stack     [256]byte
	Output    []byte
	Trace     []TraceEntry
	Paused    bool
	Speed     time.Duration
}

// Harness runs a Cpu on its own goroutine, throttled by Speed, and accepts
// Commands from any other goroutine without the caller ever touching the Cpu
// directly.
type Harness struct {
	cpu *cpu.Cpu
	bus *mem.Bus

	cmds chan Command

	paused bool
	step   bool
	speed  time.Duration // delay between instructions; 0 means unthrottled

	trace []TraceEntry
}

// New wires a Cpu to a Bus already populated by a loader, and starts
// paused, mirroring the expectation that a user steps through or
// deliberately unpauses a freshly loaded program rather than having it run
// away immediately.
func New(bus *mem.Bus) *Harness {
	c := &cpu.Cpu{Bus: bus}
	h := &Harness{
		cpu:    c,
		bus:    bus,
		cmds:   make(chan Command, 16),
		paused: true,
	}
	bus.OnWrite = h.onWrite
	return h
}

// Commands returns the channel used to drive the Harness. Send on this
// channel from any goroutine.
func (h *Harness) Commands() chan<- Command {
	return h.cmds
}

// Reset runs the Cpu's reset sequence, reading the vector at 0xfffc/0xfffd.
func (h *Harness) Reset() {
	h.cpu.Reset()
}

// onWrite watches for writes into the output window purely to feed the
// trace; the actual bytes are read straight out of the Bus when a Snapshot
// is taken.
func (h *Harness) onWrite(addr uint16, data byte) {
	if addr >= outputBase && addr < outputBase+outputSize {
		h.addTrace("output written")
	}
}

// addTrace appends msg to the trace, collapsing consecutive duplicates. A
// duplicate streak of illegal-opcode or BRK entries pauses the Harness: it
// usually means the program is spinning (a halt idiom, or a decode fallback
// loop), and a user stepping through wants control back at that point rather
// than having the run command silently continue. Repeated output writes are
// only counted.
func (h *Harness) addTrace(msg string) {
	if n := len(h.trace); n > 0 && h.trace[n-1].Msg == msg {
		h.trace[n-1].Qty++
		if msg == "illegal opcode" || msg == "BRK" {
			h.paused = true
		}
		return
	}
	h.trace = append(h.trace, TraceEntry{Msg: msg, Qty: 1})
	if len(h.trace) > traceCap {
		h.trace = h.trace[len(h.trace)-traceCap:]
	}
}

// Run drains commands and steps the Cpu until stop is closed. It is meant to
// be launched with `go h.Run(stop)`.
func (h *Harness) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case cmd := <-h.cmds:
			h.handle(cmd)
			// a latched step runs before any later command is handled,
			// so a snapshot requested after a StepCmd reflects it
			if !h.step {
				continue
			}
		default:
		}

		if h.paused && !h.step {
			select {
			case <-stop:
				return
			case cmd := <-h.cmds:
				h.handle(cmd)
			case <-time.After(50 * time.Millisecond):
			}
			if !h.step {
				continue
			}
		}

		h.step = false
		h.runInstruction()

		if h.speed > 0 {
			select {
			case <-stop:
				return
			case <-time.After(h.speed):
			}
		}
	}
}

// runInstruction executes exactly one instruction and updates the trace for
// a handful of events an observer cares about: undocumented opcodes, and
// BRK, which NMOS programs commonly use as a deliberate breakpoint.
func (h *Harness) runInstruction() {
	op := h.cpu.Opcode()
	_ = h.cpu.Step()

	if op.Illegal {
		h.addTrace("illegal opcode")
		h.speed = nopStormSpeed
	}
	if op.Name == "BRK" {
		h.addTrace("BRK")
		h.paused = true
	}
}

func (h *Harness) handle(cmd Command) {
	switch c := cmd.(type) {
	case FasterCmd:
		if h.speed >= 2*time.Millisecond {
			h.speed /= 2
		} else {
			h.speed = 0
		}
	case SlowerCmd:
		if h.speed == 0 {
			h.speed = time.Millisecond
		} else {
			h.speed *= 2
		}
	case PauseCmd:
		h.paused = !h.paused
	case StepCmd:
		h.step = true
	case GetDataCmd:
		c.Reply <- h.snapshot()
	}
}

func (h *Harness) snapshot() Snapshot {
	pc := h.cpu.ProgramCounter

	lo := uint16(0)
	if pc > windowRadius {
		lo = pc - windowRadius
	}
	hi := uint16(0xffff)
	if pc < 0xffff-windowRadius {
		hi = pc + windowRadius
	}
	window := make([]byte, int(hi)-int(lo)+1)
	copy(window, h.bus.FakeRam[lo:hi+1])

	var stack [256]byte
	copy(stack[:], h.bus.FakeRam[0x0100:0x0200])

	output := make([]byte, outputSize)
	copy(output, h.bus.FakeRam[outputBase:outputBase+outputSize])

	trace := make([]TraceEntry, len(h.trace))
	copy(trace, h.trace)

	return Snapshot{
		Registers: h.cpu.Snapshot(),
		Window:    window,
		WindowLo:  lo,
		Stack:     stack,
		Output:    output,
		Trace:     trace,
		Paused:    h.paused,
		Speed:     h.speed,
	}
}
