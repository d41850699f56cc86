package runner_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pseudotrace/internal/runner"
	"pseudotrace/pkg/color"
	"pseudotrace/pkg/interpreter"
)

const swap = `整数型: x ← 1
整数型: y ← 2
整数型: z ← 3
x ← y
y ← z
z ← x
yとzの値をこの順にコンマ区切りで出力する`

func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.txt")
	require.NoError(t, os.WriteFile(path, []byte(source), 0644))
	return path
}

func newRunner(path string, out io.Writer) *runner.Runner {
	color.EnableColor(false)
	return &runner.Runner{
		SourceFile: path,
		Out:        out,
		Logger:     log.New(io.Discard),
	}
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(writeSource(t, swap), &buf)

	require.NoError(t, r.Run(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "=== 出力 ===\n3,2\n")
	assert.Contains(t, out, "整数型")
	assert.Contains(t, out, "正常終了 (7 ステップ)")
}

func TestRunWithVarsFile(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(writeSource(t, "return num * 2"), &buf)

	r.VarsFile = filepath.Join(t.TempDir(), "vars.json")
	require.NoError(t, os.WriteFile(r.VarsFile, []byte(`{"num": 21}`), 0644))

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, buf.String(), "Return: 42")
}

func TestRunReportsErrors(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(writeSource(t, "整数型: x ← 1\nこれは不明"), &buf)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error: エラー (行 2)")

	r = newRunner(filepath.Join(t.TempDir(), "missing.txt"), &buf)
	assert.ErrorContains(t, r.Run(context.Background()), "failed to read source")

	r = newRunner(writeSource(t, swap), &buf)
	r.Vars = "{oops"
	assert.ErrorContains(t, r.Run(context.Background()), "初期変数のJSON形式が正しくありません")
}

func TestRunStopsWhenCancelled(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(writeSource(t, "while (true)\nx ← 1\nendwhile"), &buf)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, buf.String(), "running")
}

func TestStepInteractive(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(writeSource(t, "整数型: x ← 1\n出力する x + 1"), &buf)
	r.In = strings.NewReader("\n\n\nr\nq\n")

	require.NoError(t, r.Step())

	out := buf.String()
	assert.Contains(t, out, "▶   1 整数型: x ← 1")
	assert.Contains(t, out, "▶   2 出力する x + 1")
	assert.Contains(t, out, "> 2\n")
	assert.Equal(t, 1, strings.Count(out, "> 2\n"))
	assert.Contains(t, out, "正常終了 (2 ステップ)")
}

func TestStepInteractiveShowsStepError(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(writeSource(t, "整数型: x ← 1\nこれは不明"), &buf)
	r.In = strings.NewReader("\n\n\nq\n")

	err := r.Step()
	var stepErr *interpreter.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 2, stepErr.Line)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "Error: エラー (行 2)"))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRerunsOnWrite(t *testing.T) {
	var buf syncBuffer
	path := writeSource(t, "出力する \"first\"")
	r := newRunner(path, &buf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "first")
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("出力する \"second\""), 0644)
		return strings.Contains(buf.String(), "second")
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
