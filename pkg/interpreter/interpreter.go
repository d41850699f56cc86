package interpreter

import (
	"context"
	"fmt"
	"maps"

	"github.com/charmbracelet/log"

	"pseudotrace/pkg/stack"
	"pseudotrace/pkg/value"
)

// FinishedMessage is the status message of a trace that ran to the end.
const FinishedMessage = "正常終了"

// Interpreter is a single trace session. It executes a pseudocode program one
// statement per Step and is not safe for concurrent use.
type Interpreter struct {
	prog   *Program
	line   int // next line to execute, -1 before Start
	env    value.Env
	types  map[string]string
	stack  *stack.Stack[Frame]
	output []string

	state   State
	message string
	err     error

	maxSteps int // maximum steps (0 = unlimited)
	steps    int // steps executed
	logger   *log.Logger
}

type Option func(*Interpreter)

// WithMaxSteps sets a maximum number of steps before the trace halts with ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithLogger sets the logger used for step tracing
func WithLogger(l *log.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// New creates an Interpreter in the not-started state
func New(opts ...Option) *Interpreter {
	it := &Interpreter{}
	for _, o := range opts {
		o(it)
	}

	if it.logger == nil {
		it.logger = log.Default()
	}

	it.Reset()
	return it
}

// Start begins a new trace of source. initialVars is a JSON object of
// variable bindings; blank means none. A malformed object leaves the session
// untouched and returns an error wrapping ErrInitialVars.
func (i *Interpreter) Start(source, initialVars string) error {
	vars, err := value.ParseBindings(initialVars)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInitialVars, err)
	}

	i.StartWith(source, vars)
	return nil
}

// StartWith begins a new trace of source with already decoded bindings.
func (i *Interpreter) StartWith(source string, vars value.Env) {
	i.Reset()

	i.prog = NewProgram(source)
	i.env = vars.Clone()
	i.state = StateRunning
	i.line = i.prog.Next(0)

	i.logger.Debug("trace started", "lines", i.prog.Len(), "vars", len(i.env))

	if i.line >= i.prog.Len() {
		i.finish()
	}
}

// Step executes one statement and reports whether the trace has halted.
// An error halts the trace; it is returned as a *StepError.
func (i *Interpreter) Step() (bool, error) {
	switch i.state {
	case StateNotStarted:
		return false, ErrNotStarted
	case StateFinished:
		return true, nil
	case StateError:
		return true, i.err
	}

	cur := i.line
	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return true, i.fail(cur, ErrMaxStepsExceeded)
	}

	m := &machine{
		prog:  i.prog,
		line:  cur,
		env:   i.env.Clone(),
		types: maps.Clone(i.types),
		stack: i.stack.Clone(),
	}

	next, err := m.exec()
	if err != nil {
		return true, i.fail(cur, err)
	}

	stmt := i.prog.Statement(cur).Kind
	next = i.prog.Next(next)
	if next >= i.prog.Len() && stmt != StmtReturn && m.stack.Size() > 0 {
		return true, i.fail(cur, unclosedBlock(m.stack.Array()))
	}

	i.env, i.types, i.stack = m.env, m.types, m.stack
	i.output = append(i.output, m.output...)
	i.steps++
	i.line = next

	i.logger.Debug("step", "line", cur+1, "stmt", stmt, "next", i.line+1)

	if i.line >= i.prog.Len() {
		i.finish()
		return true, nil
	}

	return false, nil
}

// Run executes until the trace finishes or fails
func (i *Interpreter) Run() error {
	return i.RunContext(context.Background())
}

// RunContext is Run with cancellation. When ctx is done the trace stops
// between steps, stays running and ctx.Err() is returned.
func (i *Interpreter) RunContext(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		halted, err := i.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

// Reset discards the program and all runtime state
func (i *Interpreter) Reset() {
	i.prog = NewProgram("")
	i.line = -1
	i.env = value.Env{}
	i.types = make(map[string]string)
	i.stack = stack.New[Frame]()
	i.output = nil
	i.state = StateNotStarted
	i.message = ""
	i.err = nil
	i.steps = 0
}

func (i *Interpreter) finish() {
	i.state = StateFinished
	i.message = FinishedMessage
	i.line = i.prog.Len()
	i.logger.Debug("trace finished", "steps", i.steps)
}

func (i *Interpreter) fail(cur int, err error) error {
	se := &StepError{Line: cur + 1, Err: err}
	i.state = StateError
	i.message = se.Error()
	i.err = se
	i.logger.Warn("trace halted", "line", cur+1, "err", err)
	return se
}

// State returns the session state
func (i *Interpreter) State() State {
	return i.state
}

// Line returns the 0-based index of the next line to execute
func (i *Interpreter) Line() int {
	return i.line
}

// Program returns the program being traced
func (i *Interpreter) Program() *Program {
	return i.prog
}

// Output returns the output lines produced so far
func (i *Interpreter) Output() []string {
	return append([]string(nil), i.output...)
}

// Env returns a copy of the variable environment
func (i *Interpreter) Env() value.Env {
	return i.env.Clone()
}

// Types returns a copy of the declared variable types
func (i *Interpreter) Types() map[string]string {
	return maps.Clone(i.types)
}

// Frames returns the control-flow stack, bottom first
func (i *Interpreter) Frames() []Frame {
	return i.stack.Array()
}

// Err returns the error that halted the trace, if any
func (i *Interpreter) Err() error {
	return i.err
}

// Steps returns the number of steps executed
func (i *Interpreter) Steps() int {
	return i.steps
}
