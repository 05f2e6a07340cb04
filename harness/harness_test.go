package harness

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gone/mem"
)

func getSnapshot(t *testing.T, h *Harness) Snapshot {
	t.Helper()
	reply := make(chan Snapshot, 1)
	h.cmds <- GetDataCmd{Reply: reply}
	select {
	case s := <-reply:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func TestHarnessStartsPaused(t *testing.T) {
	bus := &mem.Bus{}
	h := New(bus)

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	s := getSnapshot(t, h)
	assert.True(t, s.Paused)
}

func TestHarnessStep(t *testing.T) {
	bus := &mem.Bus{}
	// LDA #$42 ; LDA #$43
	bus.FakeRam[0x0400] = 0xa9
	bus.FakeRam[0x0401] = 0x42
	bus.FakeRam[0x0402] = 0xa9
	bus.FakeRam[0x0403] = 0x43
	bus.FakeRam[0xfffc] = 0x00
	bus.FakeRam[0xfffd] = 0x04

	h := New(bus)
	h.Reset()

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	before := getSnapshot(t, h)
	require.Equal(t, uint16(0x0400), before.Registers.PC)

	h.cmds <- StepCmd{}
	after := getSnapshot(t, h)
	assert.Equal(t, uint16(0x0402), after.Registers.PC)
	assert.Equal(t, byte(0x42), after.Registers.A)

	h.cmds <- StepCmd{}
	final := getSnapshot(t, h)
	assert.Equal(t, uint16(0x0404), final.Registers.PC)
	assert.Equal(t, byte(0x43), final.Registers.A)

	// a paused Harness that never receives another StepCmd should not
	// drift any further on its own
	if diff := deep.Equal(final, getSnapshot(t, h)); diff != nil {
		t.Errorf("unexpected drift between consecutive snapshots: %v", diff)
	}
}

func TestHarnessSpeedControl(t *testing.T) {
	bus := &mem.Bus{}
	h := New(bus)

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	start := getSnapshot(t, h)
	assert.Equal(t, time.Duration(0), start.Speed)

	h.cmds <- SlowerCmd{}
	slower := getSnapshot(t, h)
	assert.Equal(t, time.Millisecond, slower.Speed)

	h.cmds <- SlowerCmd{}
	slower2 := getSnapshot(t, h)
	assert.Equal(t, 2*time.Millisecond, slower2.Speed)

	h.cmds <- FasterCmd{}
	faster := getSnapshot(t, h)
	assert.Equal(t, time.Millisecond, faster.Speed)
}

func TestHarnessPauseToggles(t *testing.T) {
	bus := &mem.Bus{}
	// JMP $0000: spin in place while unpaused, rather than running into a
	// BRK, which would pause the Harness on its own
	bus.FakeRam[0x0000] = 0x4c
	h := New(bus)

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	require.True(t, getSnapshot(t, h).Paused)

	h.cmds <- PauseCmd{}
	assert.False(t, getSnapshot(t, h).Paused)

	h.cmds <- PauseCmd{}
	assert.True(t, getSnapshot(t, h).Paused)
}

func TestHarnessOutputTrace(t *testing.T) {
	bus := &mem.Bus{}
	// STA $f000
	bus.FakeRam[0x0400] = 0x8d
	bus.FakeRam[0x0401] = 0x00
	bus.FakeRam[0x0402] = 0xf0
	bus.FakeRam[0xfffc] = 0x00
	bus.FakeRam[0xfffd] = 0x04

	h := New(bus)
	h.Reset()
	h.cpu.Accumulator = 0x7a

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	h.cmds <- StepCmd{}
	s := getSnapshot(t, h)
	require.NotEmpty(t, s.Trace)
	assert.Equal(t, "output written", s.Trace[len(s.Trace)-1].Msg)
	assert.Equal(t, byte(0x7a), s.Output[0])
}

func TestHarnessIllegalOpcodeThrottles(t *testing.T) {
	bus := &mem.Bus{}
	bus.FakeRam[0x0400] = 0x03 // undocumented, falls back to NOP
	bus.FakeRam[0xfffc] = 0x00
	bus.FakeRam[0xfffd] = 0x04

	h := New(bus)
	h.Reset()

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	h.cmds <- PauseCmd{} // unpause and let it run freely
	time.Sleep(20 * time.Millisecond)

	s := getSnapshot(t, h)
	require.NotEmpty(t, s.Trace)
	assert.Equal(t, "illegal opcode", s.Trace[0].Msg)
	assert.Equal(t, nopStormSpeed, s.Speed)
}
