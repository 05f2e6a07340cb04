// Package tui renders a harness.Snapshot using bubbletea, driven entirely by
// Commands and Snapshots rather than a direct pointer into live Cpu state.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"gone/harness"
)

var tickEvery = 33 * time.Millisecond

type snapshotMsg harness.Snapshot

type model struct {
	cmds chan<- harness.Command
	last harness.Snapshot
	quit bool
}

// New builds the initial bubbletea model for a running Harness.
func New(cmds chan<- harness.Command) model {
	return model{cmds: cmds}
}

func pollTick() tea.Cmd {
	return tea.Tick(tickEvery, func(time.Time) tea.Msg { return pollMsg{} })
}

type pollMsg struct{}

func (m model) requestSnapshot() tea.Msg {
	reply := make(chan harness.Snapshot, 1)
	m.cmds <- harness.GetDataCmd{Reply: reply}
	return snapshotMsg(<-reply)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(pollTick(), m.requestSnapshot)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		case " ", "p":
			m.cmds <- harness.PauseCmd{}
		case "j", "n":
			m.cmds <- harness.StepCmd{}
		case "f":
			m.cmds <- harness.FasterCmd{}
		case "s":
			m.cmds <- harness.SlowerCmd{}
		}
		return m, m.requestSnapshot

	case pollMsg:
		return m, tea.Batch(pollTick(), m.requestSnapshot)

	case snapshotMsg:
		m.last = harness.Snapshot(msg)
		return m, nil
	}
	return m, nil
}

func (m model) registers() string {
	r := m.last.Registers
	var flags string
	status := r.Status
	for i := 7; i >= 0; i-- {
		if status&(1<<i) != 0 {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	state := "running"
	if m.last.Paused {
		state = "paused"
	}
	return fmt.Sprintf(`
state: %s   speed: %s
  PC: %04x
   A: %02x
   X: %02x
   Y: %02x
  SP: %02x
cycles: %d
N V _ B D I Z C
%s`,
		state, m.last.Speed,
		r.PC, r.A, r.X, r.Y, r.Stack, r.Cycles, flags,
	)
}

func (m model) memoryWindow() string {
	var b strings.Builder
	for row := 0; row+16 <= len(m.last.Window); row += 16 {
		addr := m.last.WindowLo + uint16(row)
		fmt.Fprintf(&b, "%04x | ", addr)
		for i, v := range m.last.Window[row : row+16] {
			if addr+uint16(i) == m.last.Registers.PC {
				fmt.Fprintf(&b, "[%02x] ", v)
			} else {
				fmt.Fprintf(&b, " %02x  ", v)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m model) trace() string {
	var lines []string
	for _, t := range m.last.Trace {
		if t.Qty > 1 {
			lines = append(lines, fmt.Sprintf("%s (x%d)", t.Msg, t.Qty))
		} else {
			lines = append(lines, t.Msg)
		}
	}
	return strings.Join(lines, "\n")
}

func (m model) View() string {
	if m.quit {
		return ""
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.memoryWindow(),
			m.registers(),
		),
		"",
		m.trace(),
		"",
		spew.Sdump(m.last.Registers),
	)
}

// Run starts the bubbletea program against a live Harness, blocking until
// the user quits.
func Run(cmds chan<- harness.Command) error {
	_, err := tea.NewProgram(New(cmds)).Run()
	return err
}
