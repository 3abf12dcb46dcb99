// ABOUTME: Shared command execution for remote endpoints
// ABOUTME: Turns parsed commands into control events on a single source
package remote

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/control"
)

// ErrBusy is returned when the control loop has not drained earlier commands
var ErrBusy = errors.New("device busy, command dropped")

// Commander validates commands and forwards them to the control loop
type Commander struct {
	source   *control.Source
	patterns int
}

// NewCommander creates a commander feeding source. patterns is the size
// of the pattern library used to reduce "mode N".
func NewCommander(source *control.Source, patterns int) *Commander {
	return &Commander{source: source, patterns: patterns}
}

// Execute forwards cmd and returns it in the canonical form that was applied
func (c *Commander) Execute(cmd control.Command) (control.Command, error) {
	cmd = cmd.Normalize(c.patterns)
	if !c.source.Send(cmd.Event()) {
		return cmd, ErrBusy
	}
	return cmd, nil
}

// ExecuteLine parses and forwards one command line
func (c *Commander) ExecuteLine(line string) (control.Command, error) {
	cmd, err := control.ParseCommand(line)
	if err != nil {
		return control.Command{}, err
	}
	return c.Execute(cmd)
}

// Reply formats the response text for a command result
func Reply(cmd control.Command, err error) string {
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return cmd.String()
}
