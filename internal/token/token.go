package token

import "fmt"

type Kind int

const (
	Illegal Kind = iota
	EOF

	Word   // bare word: keyword or variable name
	Int    // Integer
	String // String literal

	True
	False
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
}

func (k Kind) String() string {
	switch k {
	case Illegal:
		return "Illegal"
	case EOF:
		return "EOF"
	case Word:
		return "Word"
	case Int:
		return "Int"
	case String:
		return "String"
	case True:
		return "True"
	case False:
		return "False"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var literals = map[string]Kind{
	"true":  True,
	"false": False,
}

// LookupWord classifies a bare word. Keyword membership is decided later
// against the configured tables, so everything else is a Word.
func LookupWord(lit string) Kind {
	if kind, ok := literals[lit]; ok {
		return kind
	}
	return Word
}
