package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"pseudotrace/pkg/color"
	"pseudotrace/pkg/interpreter"
)

type Runner struct {
	Verbose    bool   // Show the program listing after a run
	SourceFile string // Path to the pseudocode source
	Vars       string // Initial variables as a JSON object
	VarsFile   string // Path to a JSON file of initial variables
	MaxSteps   int    // Step limit per trace (0 = unlimited)

	Out    io.Writer
	In     io.Reader
	Logger *log.Logger
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

// load reads the source file and the initial variables.
func (r *Runner) load() (source, vars string, err error) {
	input, err := os.ReadFile(r.SourceFile)
	if err != nil {
		return "", "", fmt.Errorf("failed to read source: %w", err)
	}

	vars = r.Vars
	if r.VarsFile != "" {
		data, err := os.ReadFile(r.VarsFile)
		if err != nil {
			return "", "", fmt.Errorf("failed to read variables: %w", err)
		}
		vars = string(data)
	}

	return string(input), vars, nil
}

func (r *Runner) start() (*interpreter.Interpreter, error) {
	source, vars, err := r.load()
	if err != nil {
		return nil, err
	}

	it := interpreter.New(interpreter.WithMaxSteps(r.MaxSteps), interpreter.WithLogger(r.logger()))
	if err := it.Start(source, vars); err != nil {
		return nil, err
	}

	r.logger().Info("Tracing file", "file", r.SourceFile, "lines", it.Program().Len())
	return it, nil
}

// Run traces the source file to completion and prints the output, the final
// variables and the trace status. Cancelling ctx stops the trace where it is.
func (r *Runner) Run(ctx context.Context) error {
	it, err := r.start()
	if err != nil {
		return err
	}

	runErr := it.RunContext(ctx)
	snap := it.Snapshot()
	w := r.out()

	if r.Verbose {
		fmt.Fprintln(w, color.GreenText("=== プログラム ==="))
		fmt.Fprintln(w, renderListing(snap))
	}

	fmt.Fprintln(w, color.GreenText("=== 出力 ==="))
	for _, line := range snap.Output {
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, color.GreenText("=== 変数 ==="))
	fmt.Fprintln(w, renderVariables(snap))
	fmt.Fprintln(w, renderStatus(snap))

	return runErr
}

// Step traces the source file interactively. Each empty input line executes
// one statement, "r" restarts the trace and "q" quits.
func (r *Runner) Step() error {
	it, err := r.start()
	if err != nil {
		return err
	}

	w := r.out()
	seen := 0
	r.printStep(it.Snapshot(), seen)

	in := r.In
	if in == nil {
		in = os.Stdin
	}
	sc := bufio.NewScanner(in)

	for {
		fmt.Fprint(w, color.GrayText("[Enter] step  [r] restart  [q] quit > "))
		if !sc.Scan() {
			fmt.Fprintln(w)
			return it.Err()
		}

		switch strings.TrimSpace(sc.Text()) {
		case "q":
			return it.Err()

		case "r":
			if it, err = r.start(); err != nil {
				return err
			}
			seen = 0
			r.printStep(it.Snapshot(), seen)

		default:
			if it.State() != interpreter.StateRunning {
				fmt.Fprintln(w, renderStatus(it.Snapshot()))
				continue
			}

			before := len(it.Output())
			// a step error halts the trace and is shown by renderStatus
			halted, _ := it.Step()
			seen = before
			snap := it.Snapshot()
			r.printStep(snap, seen)
			if halted {
				fmt.Fprintln(w, renderStatus(snap))
			}
		}
	}
}

func (r *Runner) printStep(snap interpreter.Snapshot, seen int) {
	w := r.out()
	fmt.Fprintln(w, renderListing(snap))
	for _, line := range snap.Output[min(seen, len(snap.Output)):] {
		fmt.Fprintln(w, color.CyanText("> ")+line)
	}
	fmt.Fprintln(w, renderVariables(snap))
}

func renderListing(snap interpreter.Snapshot) string {
	var b strings.Builder
	for i, line := range snap.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		current := snap.State == interpreter.StateRunning && i == snap.Line
		b.WriteString(color.Listing(i+1, line, current))
	}
	return b.String()
}

func renderVariables(snap interpreter.Snapshot) string {
	names := snap.Variables.Names()
	if len(names) == 0 {
		return color.GrayText("(変数なし)")
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, snap.Types[name], snap.Formatted[name]})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("変数", "型", "値").
		Rows(rows...).
		String()
}

func renderStatus(snap interpreter.Snapshot) string {
	switch snap.State {
	case interpreter.StateFinished:
		return color.Success(fmt.Sprintf("%s (%d ステップ)", snap.Message, snap.Steps))
	case interpreter.StateError:
		return color.Error(snap.Message)
	default:
		return color.GrayText(snap.State.String())
	}
}
