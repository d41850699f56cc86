package interpreter

import (
	"errors"
	"fmt"
)

var (
	ErrInitialVars      = errors.New("初期変数のJSON形式が正しくありません")
	ErrNotStarted       = errors.New("トレースが開始されていません")
	ErrMaxStepsExceeded = errors.New("最大ステップ数を超えました")
)

// SyntaxError reports a line that cannot be executed as written: unknown
// statements, unclosed blocks and mismatched block terminators.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Msg
}

func newSyntaxError(format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}

// StepError is the error that halted a trace, with the 1-based number of the
// line being executed.
type StepError struct {
	Line int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("エラー (行 %d): %v", e.Line, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// unclosedBlock reports the innermost block still open when control ran off
// the end of the program.
func unclosedBlock(frames []Frame) *SyntaxError {
	switch f := frames[len(frames)-1].(type) {
	case IfFrame:
		return newSyntaxError("行 %d の if ブロックが閉じられていません", f.StartLine+1)
	case WhileFrame:
		return newSyntaxError("行 %d の while ブロックが閉じられていません", f.StartLine+1)
	case ForFrame:
		return newSyntaxError("行 %d の for ブロックが閉じられていません", f.StartLine+1)
	default:
		return newSyntaxError("ブロックが閉じられていません")
	}
}
