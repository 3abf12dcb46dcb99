// ABOUTME: WebSocket control message type definitions
// ABOUTME: JSON envelope plus hello, command, status and error payloads
package remote

import (
	"encoding/json"
	"fmt"

	"github.com/Resonate-Protocol/resonate-beatbox/internal/control"
)

// Message types
const (
	TypeCommand = "command"
	TypeHello   = "device/hello"
	TypeStatus  = "device/status"
	TypeError   = "error"
)

// Message is the top-level wrapper for outgoing messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// inbound defers payload decoding until the type is known
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CommandRequest asks the device to run a command. Either Line carries a
// full command line, or Command and Value name it.
type CommandRequest struct {
	Command string `json:"command,omitempty"`
	Value   *int   `json:"value,omitempty"`
	Line    string `json:"line,omitempty"`
}

// DeviceHello is sent to every client on connect
type DeviceHello struct {
	DeviceID string   `json:"device_id"`
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Session  string   `json:"session_id"`
	Patterns []string `json:"patterns"`
}

// DeviceStatus reports playback state
type DeviceStatus struct {
	Tempo        float64 `json:"tempo"`
	Volume       float64 `json:"volume"`
	Pattern      string  `json:"pattern"`
	PatternIndex int     `json:"pattern_index"`
	Beat         float64 `json:"beat"`
	Voices       int     `json:"voices"`
	Iterations   uint64  `json:"iterations"`
	JitterMinUs  int64   `json:"jitter_min_us"`
	JitterMaxUs  int64   `json:"jitter_max_us"`
	JitterAvgUs  int64   `json:"jitter_avg_us"`
	Stopped      bool    `json:"stopped"`
	LastCommand  string  `json:"last_command,omitempty"`
}

// ErrorPayload describes a rejected request
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusFrom converts a loop snapshot into its wire form
func StatusFrom(st control.Status) DeviceStatus {
	return DeviceStatus{
		Tempo:        st.Tempo,
		Volume:       st.Volume,
		Pattern:      st.Pattern,
		PatternIndex: st.PatternIndex,
		Beat:         st.Beat,
		Voices:       st.Voices,
		Iterations:   st.Iterations,
		JitterMinUs:  st.Jitter.Min.Microseconds(),
		JitterMaxUs:  st.Jitter.Max.Microseconds(),
		JitterAvgUs:  st.Jitter.Avg.Microseconds(),
		Stopped:      st.Stopped,
	}
}

// ToLine renders the request as a command line for the parser
func (r CommandRequest) ToLine() string {
	if r.Line != "" {
		return r.Line
	}
	if r.Value == nil {
		return r.Command
	}
	return fmt.Sprintf("%s %d", r.Command, *r.Value)
}
