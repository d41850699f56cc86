package interpreter

import (
	"math"
	"regexp"
	"strings"

	"pseudotrace/pkg/expr"
	"pseudotrace/pkg/stack"
	"pseudotrace/pkg/value"
)

const undefinedPhrase = "未定義の値"

var (
	initDecl  = regexp.MustCompile(`^(.+?)\s*←\s*(.+)$`)
	sizedDecl = regexp.MustCompile(`^([\p{L}_][\p{L}\p{N}_]*)\s*\[\s*(.*?)\s*\]$`)
)

// machine is the mutable state one step works on. It is a copy of the
// session state and is committed only when the step succeeds.
type machine struct {
	prog   *Program
	line   int
	env    value.Env
	types  map[string]string
	stack  *stack.Stack[Frame]
	output []string
}

// exec runs the statement at m.line and returns the line to continue at.
func (m *machine) exec() (int, error) {
	cur := m.line
	st := m.prog.Statement(cur)
	g := st.Groups

	switch st.Kind {
	case StmtBlank, StmtComment, StmtFuncDef:
		return m.fallThrough(cur + 1), nil
	case StmtDeclare:
		return m.then(cur, m.declare(g[1], g[2]))
	case StmtAppend:
		return m.then(cur, m.appendTo(g[1], g[2]))
	case StmtAssign:
		return m.then(cur, m.assign(g[1], g[2]))
	case StmtOutputPair:
		return m.then(cur, m.outputPair(g[1], g[2]))
	case StmtOutputJoined:
		return m.then(cur, m.outputJoined(g[1]))
	case StmtOutput:
		return m.then(cur, m.outputValue(g[1]))
	case StmtIf:
		return m.execIf(cur, g[1])
	case StmtElseIf:
		return m.execElseIf(cur, g[1])
	case StmtElse:
		return m.execElse()
	case StmtEndIf:
		return m.execEndIf(cur)
	case StmtWhile:
		return m.execWhile(cur, g[1])
	case StmtEndWhile:
		return m.execEndWhile()
	case StmtFor:
		return m.execFor(cur, g[1], g[2], g[3], g[4], g[5])
	case StmtEndFor:
		return m.execEndFor()
	case StmtBreak:
		return m.execBreak()
	case StmtReturn:
		return m.execReturn(g[1])
	}

	return 0, newSyntaxError("不明な構文です: %s", m.prog.Code(cur))
}

func (m *machine) then(cur int, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return m.fallThrough(cur + 1), nil
}

func (m *machine) top() Frame {
	f, _ := m.stack.Peek()
	return f
}

// fallThrough resolves the next line when control runs off the end of a
// statement. Reaching a sibling else or elseif means the branch body is done,
// so control moves to the enclosing if's endif.
func (m *machine) fallThrough(next int) int {
	next = m.prog.Next(next)
	if next >= m.prog.Len() {
		return next
	}

	switch m.prog.Statement(next).Kind {
	case StmtElse, StmtElseIf:
		if f, ok := m.top().(IfFrame); ok {
			return f.EndLine
		}
	}

	return next
}

func (m *machine) eval(s string) (value.Value, error) {
	return expr.Evaluate(s, m.env)
}

func (m *machine) declare(typ, body string) error {
	for _, part := range expr.SplitList(body) {
		if part == "" {
			continue
		}
		name, err := m.declareOne(part)
		if err != nil {
			return err
		}
		m.types[name] = typ
	}
	return nil
}

func (m *machine) declareOne(part string) (string, error) {
	if g := initDecl.FindStringSubmatch(part); g != nil {
		name := g[1]
		if !expr.IsIdentifier(name) {
			return "", newSyntaxError("変数名が不正です: %s", name)
		}
		if g[2] == undefinedPhrase {
			m.env[name] = value.Array()
			return name, nil
		}
		v, err := m.eval(g[2])
		if err != nil {
			return "", err
		}
		m.env[name] = v
		return name, nil
	}

	if g := sizedDecl.FindStringSubmatch(part); g != nil {
		name := g[1]
		if g[2] == "" {
			m.env[name] = value.Array()
			return name, nil
		}
		n, err := m.eval(g[2])
		if err != nil {
			return "", err
		}
		size := n.ToInt()
		if size < 0 || size > math.MaxInt32 {
			return "", newSyntaxError("配列の要素数が不正です: %s", part)
		}
		m.env[name] = value.Sized(int(size))
		return name, nil
	}

	if !expr.IsIdentifier(part) {
		return "", newSyntaxError("変数名が不正です: %s", part)
	}
	if _, ok := m.env[part]; !ok {
		m.env[part] = value.Null()
	}
	return part, nil
}

func (m *machine) appendTo(target, elem string) error {
	cur, err := m.eval(target)
	if err != nil {
		return err
	}
	if cur.Kind != value.KindArray {
		return &expr.EvalError{Expr: target, Reason: "配列ではないため末尾に追加できません"}
	}

	v, err := m.eval(elem)
	if err != nil {
		return err
	}

	next := cur.Clone()
	next.Arr = append(next.Arr, v)
	return m.store(target, next)
}

func (m *machine) assign(target, rhs string) error {
	v, err := m.eval(rhs)
	if err != nil {
		return err
	}
	return m.store(target, v)
}

// store writes v to a plain variable or an indexed array element. Index
// writes are 1-based and grow the array with nulls as needed.
func (m *machine) store(target string, v value.Value) error {
	target = strings.TrimSpace(target)
	if expr.IsIdentifier(target) {
		m.env[target] = v
		return nil
	}

	name, indexes, ok := expr.AccessChain(target)
	if !ok {
		return newSyntaxError("代入先が不正です: %s", target)
	}

	root, ok := m.env[name]
	if !ok || root.Kind != value.KindArray {
		return &expr.EvalError{Expr: target, Reason: "配列ではない値に添字で代入できません"}
	}

	offsets := make([]int, len(indexes))
	for k, ix := range indexes {
		iv, err := m.eval(ix)
		if err != nil {
			return err
		}
		n, ok := writeOffset(iv)
		if !ok {
			return &expr.EvalError{Expr: target, Reason: "添字が不正です: " + ix}
		}
		offsets[k] = n
	}

	updated, err := setElement(root.Clone(), offsets, v, target)
	if err != nil {
		return err
	}
	m.env[name] = updated
	return nil
}

func writeOffset(idx value.Value) (int, bool) {
	f := idx.ToNumber()
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	n := int(f)
	if n > 0 {
		n--
	}
	return n, true
}

func setElement(arr value.Value, offsets []int, v value.Value, target string) (value.Value, error) {
	if arr.Kind != value.KindArray {
		return value.Value{}, &expr.EvalError{Expr: target, Reason: "配列ではない値に添字で代入できません"}
	}

	n := offsets[0]
	for len(arr.Arr) <= n {
		arr.Arr = append(arr.Arr, value.Null())
	}

	if len(offsets) == 1 {
		arr.Arr[n] = v
		return arr, nil
	}

	inner, err := setElement(arr.Arr[n], offsets[1:], v, target)
	if err != nil {
		return value.Value{}, err
	}
	arr.Arr[n] = inner
	return arr, nil
}

func (m *machine) outputPair(a, b string) error {
	va, err := m.eval(a)
	if err != nil {
		return err
	}
	vb, err := m.eval(b)
	if err != nil {
		return err
	}
	m.output = append(m.output, va.String()+","+vb.String())
	return nil
}

func (m *machine) outputJoined(target string) error {
	v, err := m.eval(target)
	if err != nil {
		return err
	}
	if v.Kind != value.KindArray {
		m.output = append(m.output, v.String())
		return nil
	}

	parts := make([]string, len(v.Arr))
	for k, e := range v.Arr {
		if !e.IsNull() {
			parts[k] = e.String()
		}
	}
	m.output = append(m.output, strings.Join(parts, " "))
	return nil
}

func (m *machine) outputValue(s string) error {
	if strings.TrimSpace(s) == "" {
		m.output = append(m.output, "")
		return nil
	}
	v, err := m.eval(s)
	if err != nil {
		return err
	}
	m.output = append(m.output, v.String())
	return nil
}

// branchTarget is where control goes when the condition at a branch line is
// false: into the else body, onto the next elseif, or to the endif.
func (m *machine) branchTarget(alt int) int {
	if m.prog.Statement(alt).Kind == StmtElse {
		return alt + 1
	}
	return alt
}

func (m *machine) execIf(cur int, cond string) (int, error) {
	alt := m.prog.FindBlockEnd(cur, "if", "endif", "elseif", "else")
	if alt < 0 {
		return 0, newSyntaxError("対応する endif が見つかりません")
	}

	end := alt
	elseLine := -1
	if m.prog.Statement(alt).Kind != StmtEndIf {
		elseLine = alt
		end = m.prog.FindBlockEnd(cur, "if", "endif")
		if end < 0 {
			return 0, newSyntaxError("対応する endif が見つかりません")
		}
	}

	m.stack.Push(IfFrame{StartLine: cur, ElseLine: elseLine, EndLine: end})

	ok, err := expr.EvaluateCondition(cond, m.env)
	if err != nil {
		return 0, err
	}
	if ok {
		return m.fallThrough(cur + 1), nil
	}
	return m.branchTarget(alt), nil
}

func (m *machine) execElseIf(cur int, cond string) (int, error) {
	if _, ok := m.top().(IfFrame); !ok {
		return 0, newSyntaxError("if に対応しない elseif です")
	}

	ok, err := expr.EvaluateCondition(cond, m.env)
	if err != nil {
		return 0, err
	}
	if ok {
		return m.fallThrough(cur + 1), nil
	}

	alt := m.prog.FindBlockEnd(cur, "if", "endif", "elseif", "else")
	if alt < 0 {
		return 0, newSyntaxError("対応する endif が見つかりません")
	}
	return m.branchTarget(alt), nil
}

func (m *machine) execElse() (int, error) {
	f, ok := m.top().(IfFrame)
	if !ok {
		return 0, newSyntaxError("if に対応しない else です")
	}
	return f.EndLine, nil
}

func (m *machine) execEndIf(cur int) (int, error) {
	if _, ok := m.top().(IfFrame); !ok {
		return 0, newSyntaxError("if に対応しない endif です")
	}
	m.stack.Pop()
	return m.fallThrough(cur + 1), nil
}

func (m *machine) execWhile(cur int, cond string) (int, error) {
	f, ok := m.top().(WhileFrame)
	if !ok || f.StartLine != cur {
		end := m.prog.FindBlockEnd(cur, "while", "endwhile")
		if end < 0 {
			return 0, newSyntaxError("対応する endwhile が見つかりません")
		}
		f = WhileFrame{Condition: cond, StartLine: cur, EndLine: end}
		m.stack.Push(f)
	}

	ok, err := expr.EvaluateCondition(cond, m.env)
	if err != nil {
		return 0, err
	}
	if ok {
		return cur + 1, nil
	}

	m.stack.Pop()
	return m.fallThrough(f.EndLine + 1), nil
}

func (m *machine) execEndWhile() (int, error) {
	f, ok := m.top().(WhileFrame)
	if !ok {
		return 0, newSyntaxError("while に対応しない endwhile です")
	}
	return f.StartLine, nil
}

func (m *machine) execFor(cur int, loopVar, start, end, step, direction string) (int, error) {
	if f, ok := m.top().(ForFrame); ok && f.StartLine == cur {
		if inRange(m.env[f.LoopVar].ToNumber(), f.EndVal, f.Step) {
			return cur + 1, nil
		}
		m.stack.Pop()
		return m.fallThrough(f.EndLine + 1), nil
	}

	if !expr.IsIdentifier(loopVar) {
		return 0, newSyntaxError("ループ変数が不正です: %s", loopVar)
	}

	endLine := m.prog.FindBlockEnd(cur, "for", "endfor")
	if endLine < 0 {
		return 0, newSyntaxError("対応する endfor が見つかりません")
	}

	sv, err := m.eval(start)
	if err != nil {
		return 0, err
	}
	ev, err := m.eval(end)
	if err != nil {
		return 0, err
	}

	inc := 1.0
	if step != "" {
		iv, err := m.eval(step)
		if err != nil {
			return 0, err
		}
		inc = iv.ToNumber()
	}
	if direction == "減らす" {
		inc = -inc
	}

	m.env[loopVar] = sv

	f := ForFrame{
		LoopVar:   loopVar,
		StartVal:  sv.ToNumber(),
		EndVal:    ev.ToNumber(),
		Step:      inc,
		StartLine: cur,
		EndLine:   endLine,
	}
	if !inRange(f.StartVal, f.EndVal, f.Step) {
		return m.fallThrough(endLine + 1), nil
	}

	m.stack.Push(f)
	return cur + 1, nil
}

// inRange reports whether a loop at v should run another iteration.
func inRange(v, end, step float64) bool {
	if step < 0 {
		return v >= end
	}
	return v <= end
}

func (m *machine) execEndFor() (int, error) {
	f, ok := m.top().(ForFrame)
	if !ok {
		return 0, newSyntaxError("for に対応しない endfor です")
	}

	m.env[f.LoopVar] = value.Number(m.env[f.LoopVar].ToNumber() + f.Step)
	return f.StartLine, nil
}

func (m *machine) execBreak() (int, error) {
	for depth := m.stack.Size() - 1; depth >= 0; depth-- {
		end, ok := loopEnd(m.stack.At(depth))
		if !ok {
			continue
		}
		m.stack.Truncate(depth)
		return m.fallThrough(end + 1), nil
	}

	return 0, newSyntaxError("break に対応するループがありません")
}

func (m *machine) execReturn(s string) (int, error) {
	v, err := m.eval(s)
	if err != nil {
		return 0, err
	}

	m.env["result"] = v
	m.output = append(m.output, "Return: "+v.String())
	return m.prog.Len(), nil
}
