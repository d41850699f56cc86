package expr

import "fmt"

// EvalError reports an expression that cannot be evaluated, such as indexing
// into null or into a value that is neither an array nor a string.
type EvalError struct {
	Expr   string
	Reason string
}

func newEvalError(expr, format string, args ...any) *EvalError {
	return &EvalError{Expr: expr, Reason: fmt.Sprintf(format, args...)}
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("式 \"%s\" を評価できません: %s", e.Expr, e.Reason)
}

// CondEvalError wraps a failure raised while evaluating a condition.
type CondEvalError struct {
	Cond string
	Err  error
}

func (e *CondEvalError) Error() string {
	return fmt.Sprintf("条件式 \"%s\" を評価できません: %v", e.Cond, e.Err)
}

func (e *CondEvalError) Unwrap() error {
	return e.Err
}
