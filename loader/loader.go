// Package loader reads a raw binary program into a Bus at a fixed load
// address, the external-collaborator counterpart to cpu.Cpu.LoadProgram's
// hex-text format.
package loader

import (
	"os"

	"github.com/pkg/errors"

	"gone/mem"
)

// DefaultLoadAddress is the common load address for small 6502 monitor
// programs (leaving page 0 and the stack page undisturbed). Load does not
// apply it on its own; it always uses the addr it is given.
const DefaultLoadAddress uint16 = 0x0400

// Load reads the raw bytes at path into bus starting at addr, and points the
// reset vector (0xfffc/0xfffd) at addr so a subsequent Cpu.Reset lands on
// the freshly loaded program. It returns the number of bytes loaded.
func Load(bus *mem.Bus, path string, addr uint16) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "loading program from %s", path)
	}
	if len(data) == 0 {
		return 0, errors.Errorf("%s is empty", path)
	}
	if int(addr)+len(data) > len(bus.FakeRam) {
		return 0, errors.Errorf(
			"%s (%d bytes) does not fit in memory starting at %#04x",
			path, len(data), addr,
		)
	}

	n := copy(bus.FakeRam[addr:], data)

	bus.FakeRam[0xfffc] = byte(addr)
	bus.FakeRam[0xfffd] = byte(addr >> 8)

	return n, nil
}
