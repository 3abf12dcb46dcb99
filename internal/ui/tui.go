// ABOUTME: TUI program wrapper
// ABOUTME: Runs the bubbletea program and forwards status snapshots to it
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/control"
)

// TUI runs the terminal interface
type TUI struct {
	program *tea.Program
	updates chan control.Status
	done    chan struct{}
	once    sync.Once
}

// New creates a TUI that sends key events to source
func New(name string, patterns []string, source *control.Source) *TUI {
	return &TUI{
		program: tea.NewProgram(NewModel(name, patterns, source), tea.WithAltScreen()),
		updates: make(chan control.Status, 10),
		done:    make(chan struct{}),
	}
}

// Run blocks until the user quits or Stop is called
func (t *TUI) Run() error {
	go func() {
		for {
			select {
			case st := <-t.updates:
				t.program.Send(StatusMsg(st))
			case <-t.done:
				return
			}
		}
	}()

	_, err := t.program.Run()
	return err
}

// Update sends a status snapshot without blocking
func (t *TUI) Update(st control.Status) {
	select {
	case t.updates <- st:
	default:
		// Don't block the control loop if the TUI is behind
	}
}

// Stop quits the program
func (t *TUI) Stop() {
	t.once.Do(func() {
		close(t.done)
		t.program.Quit()
	})
}
