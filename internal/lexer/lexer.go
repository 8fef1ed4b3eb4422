package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"strange/internal/config"
	"strange/internal/ir"
	"strange/internal/token"
)

type Lexer struct {
	input []rune

	pos int

	ch   rune
	line int
	col  int

	errors []string
}

func New(input string) *Lexer {
	l := &Lexer{
		input: []rune(input),
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := token.Position{
		Line:   l.line,
		Column: l.col,
	}

	ch := l.ch

	if ch == 0 {
		return token.Token{Kind: token.EOF, Lexeme: "", Pos: pos}
	}

	// Numbers, including a sign glued to the first digit
	if isDigit(ch) || (ch == '-' && isDigit(l.peekChar())) {
		lit := l.readWord()
		if _, err := strconv.ParseInt(lit, 10, 64); err != nil {
			l.errorf(pos, fmt.Sprintf("invalid integer literal %q", lit))
			return token.Token{Kind: token.Illegal, Lexeme: lit, Pos: pos}
		}
		return token.Token{Kind: token.Int, Lexeme: lit, Pos: pos}
	}

	if ch == '"' || ch == '\'' {
		l.readChar() // consume opening quote
		lit, ok := l.readSimpleString(ch, pos)
		if !ok {
			return token.Token{Kind: token.Illegal, Lexeme: "", Pos: pos}
		}
		return token.Token{Kind: token.String, Lexeme: lit, Pos: pos}
	}

	lit := l.readWord()
	return token.Token{Kind: token.LookupWord(lit), Lexeme: lit, Pos: pos}
}

// Tokens lexes the whole input into a raw token stream. Words found in
// kw become named opcodes; any other word is a string literal.
func Tokens(input string, kw config.Keywords) ([]ir.OpCode, error) {
	l := New(input)
	var out []ir.OpCode
	for {
		tok := l.NextToken()
		switch tok.Kind {
		case token.EOF:
			if errs := l.Errors(); len(errs) > 0 {
				return nil, fmt.Errorf("%s", strings.Join(errs, "\n"))
			}
			return out, nil
		case token.Illegal:
			// keep scanning so every error is reported at once
		case token.Int:
			n, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
			out = append(out, ir.Int(n))
		case token.String:
			out = append(out, ir.Str(tok.Lexeme))
		case token.True:
			out = append(out, ir.Bool(true))
		case token.False:
			out = append(out, ir.Bool(false))
		case token.Word:
			if kw.IsKeyword(tok.Lexeme) {
				out = append(out, ir.Named(tok.Lexeme))
			} else {
				out = append(out, ir.Str(tok.Lexeme))
			}
		}
	}
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
		return
	}

	l.ch = l.input[l.pos]
	l.pos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for unicode.IsSpace(l.ch) {
			l.readChar()
		}

		// # comment to end of line
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		break
	}
}

func (l *Lexer) readWord() string {
	var sb []rune
	for l.ch != 0 && !unicode.IsSpace(l.ch) {
		sb = append(sb, l.ch)
		l.readChar()
	}
	return string(sb)
}

func (l *Lexer) readSimpleString(delimiter rune, startPos token.Position) (string, bool) {
	var sb []rune
	for {
		if l.ch == 0 || l.ch == '\n' {
			l.errorf(startPos, "unterminated string literal")
			return "", false
		}
		if l.ch == delimiter {
			l.readChar()
			return string(sb), true
		}
		if l.ch == '\\' {
			escPos := token.Position{Line: l.line, Column: l.col}
			l.readChar()
			r, ok := l.readEscape(escPos)
			if !ok {
				return "", false
			}
			sb = append(sb, r)
			l.readChar()
			continue
		}
		sb = append(sb, l.ch)
		l.readChar()
	}
}

func (l *Lexer) readEscape(pos token.Position) (rune, bool) {
	switch l.ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	case 0:
		l.errorf(pos, "unterminated escape sequence")
		return 0, false
	default:
		l.errorf(pos, fmt.Sprintf("unknown escape sequence \\%c", l.ch))
		return 0, false
	}
}

func (l *Lexer) errorf(pos token.Position, msg string) {
	l.errors = append(l.errors, formatError(pos, msg))
}

func formatError(pos token.Position, msg string) string {
	return fmt.Sprintf("%s: %s", pos, msg)
}

func (l *Lexer) Errors() []string {
	return l.errors
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
