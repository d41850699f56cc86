package interpreter

import (
	"regexp"
	"slices"
	"strings"
)

var (
	lineNumberLabel = regexp.MustCompile(`^\d+\s*[:：]\s*`)
	lineNumberBare  = regexp.MustCompile(`^\d+(\s+|$)`)
	trailingComment = regexp.MustCompile(`\s*/\*.*?\*/\s*$`)
	leadingKeyword  = regexp.MustCompile(`^[A-Za-z]+`)
)

// Program is a pseudocode source split into lines. Each line is kept as
// written for display and in a normalized, classified form for execution.
type Program struct {
	lines []string
	code  []string
	stmts []Statement
}

// NewProgram splits source into lines and classifies each of them.
func NewProgram(source string) *Program {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	p := &Program{
		lines: lines,
		code:  make([]string, len(lines)),
		stmts: make([]Statement, len(lines)),
	}
	numbered := hasLineNumbers(lines)
	for i, l := range lines {
		p.code[i] = normalizeLine(l, numbered)
		p.stmts[i] = Classify(p.code[i])
	}

	return p
}

// hasLineNumbers reports whether every non-blank line starts with a bare
// display line number such as "12 ".
func hasLineNumbers(lines []string) bool {
	seen := false
	for _, l := range lines {
		s := strings.TrimSpace(l)
		if s == "" {
			continue
		}
		if !lineNumberBare.MatchString(s) {
			return false
		}
		seen = true
	}
	return seen
}

// normalizeLine trims a line and drops its display line number and a
// trailing block comment.
func normalizeLine(raw string, numbered bool) string {
	s := strings.TrimSpace(raw)

	if !strings.HasPrefix(s, "/*") {
		s = trailingComment.ReplaceAllString(s, "")
	}

	s = lineNumberLabel.ReplaceAllString(s, "")
	if numbered {
		s = lineNumberBare.ReplaceAllString(s, "")
	}

	return strings.TrimSpace(s)
}

// Len returns the number of lines.
func (p *Program) Len() int {
	return len(p.lines)
}

// Lines returns the source lines as written.
func (p *Program) Lines() []string {
	return append([]string(nil), p.lines...)
}

// Line returns line i as written.
func (p *Program) Line(i int) string {
	return p.lines[i]
}

// Code returns the normalized form of line i.
func (p *Program) Code(i int) string {
	return p.code[i]
}

// Statement returns the classification of line i.
func (p *Program) Statement(i int) Statement {
	return p.stmts[i]
}

// Next returns the first line at or after i that is neither blank nor a
// comment, or Len() when there is none.
func (p *Program) Next(i int) int {
	if i < 0 {
		i = 0
	}
	for ; i < len(p.stmts); i++ {
		switch p.stmts[i].Kind {
		case StmtBlank, StmtComment:
			continue
		}
		return i
	}
	return len(p.stmts)
}

func (p *Program) keyword(i int) string {
	switch p.stmts[i].Kind {
	case StmtBlank, StmtComment:
		return ""
	}
	return leadingKeyword.FindString(p.code[i])
}

// FindBlockEnd scans forward from start for the line closing the block that
// start opens. Nested blocks opened by startKw are skipped. When alternates
// are given, a line led by one of them at the block's own depth is returned
// as well. It returns -1 when the block is never closed.
func (p *Program) FindBlockEnd(start int, startKw, endKw string, alternates ...string) int {
	depth := 1

	for i := start + 1; i < len(p.code); i++ {
		kw := p.keyword(i)
		switch {
		case kw == "":
			continue
		case kw == startKw:
			depth++
		case kw == endKw:
			depth--
			if depth == 0 {
				return i
			}
		case depth == 1 && slices.Contains(alternates, kw):
			return i
		}
	}

	return -1
}
