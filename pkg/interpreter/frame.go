package interpreter

// Frame is an entry on the control-flow stack: an IfFrame, WhileFrame or
// ForFrame value.
type Frame interface {
	frame()
}

// IfFrame tracks an open if block. ElseLine is the first elseif/else branch
// line, or -1 when the block has none.
type IfFrame struct {
	StartLine int
	ElseLine  int
	EndLine   int
}

// WhileFrame tracks an active while loop.
type WhileFrame struct {
	Condition string
	StartLine int
	EndLine   int
}

// ForFrame tracks an active for loop. EndVal is evaluated once on entry.
type ForFrame struct {
	LoopVar   string
	StartVal  float64
	EndVal    float64
	Step      float64
	StartLine int
	EndLine   int
}

func (IfFrame) frame()    {}
func (WhileFrame) frame() {}
func (ForFrame) frame()   {}

// loopEnd returns the end line of a loop frame.
func loopEnd(f Frame) (int, bool) {
	switch f := f.(type) {
	case WhileFrame:
		return f.EndLine, true
	case ForFrame:
		return f.EndLine, true
	case IfFrame:
		return 0, false
	default:
		return 0, false
	}
}
