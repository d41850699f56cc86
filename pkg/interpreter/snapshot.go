package interpreter

import (
	"fmt"

	"pseudotrace/pkg/value"
)

// State is the lifecycle state of a trace session.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateFinished
	StateError
)

var stateNames = map[State]string{
	StateNotStarted: "not-started",
	StateRunning:    "running",
	StateFinished:   "finished",
	StateError:      "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for k, name := range stateNames {
		if name == string(text) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown trace state %q", text)
}

// Snapshot is the observable state of a session after a step.
type Snapshot struct {
	State     State             `json:"state"`
	Line      int               `json:"line"`
	Lines     []string          `json:"lines"`
	Variables value.Env         `json:"variables"`
	Types     map[string]string `json:"types"`
	Formatted map[string]string `json:"formatted"`
	Output    []string          `json:"output"`
	Message   string            `json:"message,omitempty"`
	Steps     int               `json:"steps"`
}

// Snapshot captures the session state. The result shares nothing with the
// session.
func (i *Interpreter) Snapshot() Snapshot {
	formatted := make(map[string]string, len(i.env))
	for name, v := range i.env {
		formatted[name] = value.Format(v, i.types[name])
	}

	return Snapshot{
		State:     i.state,
		Line:      i.line,
		Lines:     i.prog.Lines(),
		Variables: i.Env(),
		Types:     i.Types(),
		Formatted: formatted,
		Output:    append(make([]string, 0, len(i.output)), i.output...),
		Message:   i.message,
		Steps:     i.steps,
	}
}
