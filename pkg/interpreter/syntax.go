package interpreter

import (
	"regexp"
)

// StmtKind identifies the kind of statement a program line holds.
type StmtKind int

const (
	StmtUnknown StmtKind = iota
	StmtBlank
	StmtComment
	StmtFuncDef
	StmtDeclare
	StmtAppend
	StmtAssign
	StmtOutputPair
	StmtOutputJoined
	StmtOutput
	StmtIf
	StmtElseIf
	StmtElse
	StmtEndIf
	StmtWhile
	StmtEndWhile
	StmtFor
	StmtEndFor
	StmtBreak
	StmtReturn
)

var stmtNames = map[StmtKind]string{
	StmtUnknown:      "unknown",
	StmtBlank:        "blank",
	StmtComment:      "comment",
	StmtFuncDef:      "funcdef",
	StmtDeclare:      "declare",
	StmtAppend:       "append",
	StmtAssign:       "assign",
	StmtOutputPair:   "output-pair",
	StmtOutputJoined: "output-joined",
	StmtOutput:       "output",
	StmtIf:           "if",
	StmtElseIf:       "elseif",
	StmtElse:         "else",
	StmtEndIf:        "endif",
	StmtWhile:        "while",
	StmtEndWhile:     "endwhile",
	StmtFor:          "for",
	StmtEndFor:       "endfor",
	StmtBreak:        "break",
	StmtReturn:       "return",
}

func (k StmtKind) String() string {
	if name, ok := stmtNames[k]; ok {
		return name
	}
	return "unknown"
}

type stmtRegex struct {
	Kind    StmtKind
	Pattern *regexp.Regexp
}

// Statement patterns in match order; the first match wins.
var stmtRegexes = []stmtRegex{
	{StmtBlank, regexp.MustCompile(`^$`)},
	{StmtComment, regexp.MustCompile(`^(//|/\*|\*)`)},
	{StmtFuncDef, regexp.MustCompile(`^[○〇]`)},

	{StmtDeclare, regexp.MustCompile(`^((?:8ビット型|整数型|文字列型|配列型|論理型|実数型)(?:の配列)?)\s*[:：]\s*(.*)$`)},
	{StmtAppend, regexp.MustCompile(`^(.+?)\s*の末尾に\s*(.+?)\s*(?:の値|の結果)?\s*を追加する$`)},
	{StmtAssign, regexp.MustCompile(`^([\p{L}_][\p{L}\p{N}_]*(?:\s*\[[^←]*\])*)\s*←\s*(.+)$`)},

	{StmtOutputPair, regexp.MustCompile(`^(.+?)\s*と\s*(.+?)\s*の値をこの順にコンマ区切りで出力する$`)},
	{StmtOutputJoined, regexp.MustCompile(`^(.+?)\s*の(?:全ての|すべての)?要素を(?:先頭から)?(?:順に)?(?:空白|スペース)区切りで出力する$`)},
	{StmtOutput, regexp.MustCompile(`^出力する\s*(.*)$`)},
	{StmtOutput, regexp.MustCompile(`^(.+?)\s*を出力する$`)},

	{StmtIf, regexp.MustCompile(`^if\s*\((.*)\)$`)},
	{StmtElseIf, regexp.MustCompile(`^else\s*if\s*\((.*)\)$`)},
	{StmtElse, regexp.MustCompile(`^else$`)},
	{StmtEndIf, regexp.MustCompile(`^endif\b`)},

	{StmtWhile, regexp.MustCompile(`^while\s*\((.*)\)$`)},
	{StmtEndWhile, regexp.MustCompile(`^endwhile\b`)},

	{StmtFor, regexp.MustCompile(`^for\s*\(\s*(.+?)\s*を\s*(.+?)\s*から\s*(.+?)\s*まで(?:\s*(.+?)\s*ずつ\s*(増やす|減らす))?\s*\)$`)},
	{StmtEndFor, regexp.MustCompile(`^endfor\b`)},

	{StmtBreak, regexp.MustCompile(`^break\b`)},
	{StmtReturn, regexp.MustCompile(`^return\b\s*(.*)$`)},
}

// Statement is a classified program line. Groups holds the pattern's
// capture groups, index 0 being the whole line.
type Statement struct {
	Kind   StmtKind
	Groups []string
}

// Classify matches a normalized line against the statement patterns.
func Classify(line string) Statement {
	for _, re := range stmtRegexes {
		if m := re.Pattern.FindStringSubmatch(line); m != nil {
			return Statement{Kind: re.Kind, Groups: m}
		}
	}
	return Statement{Kind: StmtUnknown, Groups: []string{line}}
}
