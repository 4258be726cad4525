// lexer.go — comment stripping and tokenization for free source.
//
// StripComments runs first, blanking // and /* */ comments while preserving
// line structure so token coordinates stay accurate. The lexer then produces
// a flat token slice for the parser. Errors carry 1-based line/column and
// render with a source snippet via WrapErrorWithSource.

package free

import (
	"fmt"
	"strings"
)

// LexError is a tokenization failure at a 1-based source position.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// StripComments blanks // line comments and /* */ block comments, leaving
// newlines in place. Comment markers inside string and character literals
// are left alone.
func StripComments(src string) string {
	out := []byte(src)
	i := 0
	for i < len(src) {
		switch src[i] {
		case '"', '\'':
			quote := src[i]
			i++
			for i < len(src) && src[i] != quote {
				if src[i] == '\\' && i+1 < len(src) {
					i++
				}
				i++
			}
			i++
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					out[i] = ' '
					i++
				}
			} else if i+1 < len(src) && src[i+1] == '*' {
				out[i], out[i+1] = ' ', ' '
				i += 2
				for i < len(src) && !(src[i] == '*' && i+1 < len(src) && src[i+1] == '/') {
					if src[i] != '\n' {
						out[i] = ' '
					}
					i++
				}
				if i+1 < len(src) {
					out[i], out[i+1] = ' ', ' '
					i += 2
				}
			} else {
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}

type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tString // decoded string literal
	tChar   // decoded character literal
	tByte   // integer with b suffix
	tUint   // bare integer
	tLParen
	tRParen
	tLBrace
	tRBrace
	tLBracket
	tRBracket
	tComma
	tSemi
	tAssign
	tAmp
	tStar
	tHash
	tFn
	tLet
	tIf
	tElse
	tWhile
	tReturn
)

var keywords = map[string]tokenKind{
	"fn":     tFn,
	"let":    tLet,
	"if":     tIf,
	"else":   tElse,
	"while":  tWhile,
	"return": tReturn,
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func (t token) describe() string {
	switch t.kind {
	case tEOF:
		return "end of input"
	case tString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// lex tokenizes comment-stripped source.
func lex(src string) ([]token, error) {
	var toks []token
	line, col := 1, 1
	i := 0

	fail := func(msg string) ([]token, error) {
		return nil, &LexError{Line: line, Col: col, Msg: msg}
	}
	push := func(kind tokenKind, text string) {
		toks = append(toks, token{kind: kind, text: text, line: line, col: col})
	}
	advance := func(n int) {
		for ; n > 0; n-- {
			if src[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
		}
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			advance(1)

		case isIdentStart(c):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			if kw, ok := keywords[word]; ok {
				push(kw, word)
			} else {
				push(tIdent, word)
			}
			advance(j - i)

		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			if j < len(src) && src[j] == 'b' {
				push(tByte, src[i:j])
				advance(j - i + 1)
			} else {
				push(tUint, src[i:j])
				advance(j - i)
			}

		case c == '"':
			text, width, err := scanQuoted(src[i:], '"')
			if err != "" {
				return fail(err)
			}
			push(tString, text)
			advance(width)

		case c == '\'':
			text, width, err := scanQuoted(src[i:], '\'')
			if err != "" {
				return fail(err)
			}
			if len([]rune(text)) != 1 {
				return fail("character literal must hold exactly one character")
			}
			push(tChar, text)
			advance(width)

		default:
			kind, ok := punct(c)
			if !ok {
				return fail(fmt.Sprintf("unexpected character %q", c))
			}
			push(kind, string(c))
			advance(1)
		}
	}

	toks = append(toks, token{kind: tEOF, text: "", line: line, col: col})
	return toks, nil
}

func punct(c byte) (tokenKind, bool) {
	switch c {
	case '(':
		return tLParen, true
	case ')':
		return tRParen, true
	case '{':
		return tLBrace, true
	case '}':
		return tRBrace, true
	case '[':
		return tLBracket, true
	case ']':
		return tRBracket, true
	case ',':
		return tComma, true
	case ';':
		return tSemi, true
	case '=':
		return tAssign, true
	case '&':
		return tAmp, true
	case '*':
		return tStar, true
	case '#':
		return tHash, true
	default:
		return 0, false
	}
}

// scanQuoted decodes a quoted literal starting at s[0]==quote. Returns the
// decoded text, the source width consumed, and an error message ("" on
// success).
func scanQuoted(s string, quote byte) (text string, width int, errMsg string) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch c {
		case quote:
			return b.String(), i + 1, ""
		case '\n':
			return "", 0, "unterminated literal"
		case '\\':
			if i+1 >= len(s) {
				return "", 0, "unterminated escape"
			}
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '\'', '"':
				b.WriteByte(s[i+1])
			default:
				return "", 0, fmt.Sprintf("unknown escape \\%c", s[i+1])
			}
			i += 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, "unterminated literal"
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
