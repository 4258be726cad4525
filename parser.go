// parser.go — recursive-descent parser producing a Program.
//
// Grammar, roughly:
//
//	program := attr* fn*
//	attr    := "#" "[" ident "]"                  // disable_ptrs | enable_size_warn
//	fn      := "fn" ident "(" params? ")" block
//	stmt    := "let" ident "=" expr ";"
//	         | "return" expr ";"
//	         | "if" expr block ("else" block)?
//	         | "while" expr block
//	         | expr ("=" expr)? ";"
//	expr    := "&" expr | "*" expr | primary
//	primary := literal | ident call? | "(" expr ")"
//
// Parse is the whole-program entry point; ParseStmts parses a bare statement
// sequence (used by the REPL).

package free

import (
	"fmt"
	"strconv"
)

// ParseError is a syntax failure at a 1-based source position.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parse strips comments, tokenizes and parses a whole compilation unit.
func Parse(src string) (*Program, error) {
	toks, err := lex(StripComments(src))
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	prog, err := p.program()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// ParseStmts parses a bare statement sequence.
func ParseStmts(src string) ([]Stmt, error) {
	toks, err := lex(StripComments(src))
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var stmts []Stmt
	for p.peek().kind != tEOF {
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(kind tokenKind) (token, bool) {
	if p.peek().kind == kind {
		return p.next(), true
	}
	return token{}, false
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.peek().kind == kind {
		return p.next(), nil
	}
	return token{}, p.fail(fmt.Sprintf("expected %s, found %s", what, p.peek().describe()))
}

func (p *parser) fail(msg string) error {
	t := p.peek()
	return &ParseError{Line: t.line, Col: t.col, Msg: msg}
}

func (p *parser) program() (*Program, error) {
	prog := &Program{}

	for {
		if _, ok := p.accept(tHash); !ok {
			break
		}
		if _, err := p.expect(tLBracket, "'['"); err != nil {
			return nil, err
		}
		name, err := p.expect(tIdent, "flag name")
		if err != nil {
			return nil, err
		}
		switch name.text {
		case "disable_ptrs":
			prog.Flags = append(prog.Flags, DisablePtrs)
		case "enable_size_warn":
			prog.Flags = append(prog.Flags, EnableSizeWarn)
		default:
			p.pos--
			return nil, p.fail(fmt.Sprintf("unknown flag %q", name.text))
		}
		if _, err := p.expect(tRBracket, "']'"); err != nil {
			return nil, err
		}
	}

	for p.peek().kind != tEOF {
		fn, err := p.fn()
		if err != nil {
			return nil, err
		}
		prog.Funs = append(prog.Funs, fn)
	}
	return prog, nil
}

func (p *parser) fn() (*UserFn, error) {
	if _, err := p.expect(tFn, "'fn'"); err != nil {
		return nil, err
	}
	name, err := p.expect(tIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tLParen, "'('"); err != nil {
		return nil, err
	}
	var params []string
	if p.peek().kind != tRParen {
		for {
			param, err := p.expect(tIdent, "parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param.text)
			if _, ok := p.accept(tComma); !ok {
				break
			}
		}
	}
	if _, err := p.expect(tRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &UserFn{Name: name.text, Params: params, Body: body}, nil
}

func (p *parser) block() ([]Stmt, error) {
	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for p.peek().kind != tRBrace {
		if p.peek().kind == tEOF {
			return nil, p.fail("unterminated block")
		}
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.next()
	return stmts, nil
}

func (p *parser) stmt() (Stmt, error) {
	switch p.peek().kind {
	case tLet:
		p.next()
		name, err := p.expect(tIdent, "variable name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tAssign, "'='"); err != nil {
			return nil, err
		}
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tSemi, "';'"); err != nil {
			return nil, err
		}
		return &Define{Name: name.text, Value: value}, nil

	case tReturn:
		p.next()
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tSemi, "';'"); err != nil {
			return nil, err
		}
		return &Return{Value: value}, nil

	case tIf:
		p.next()
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		then, err := p.block()
		if err != nil {
			return nil, err
		}
		var otherwise []Stmt
		if _, ok := p.accept(tElse); ok {
			otherwise, err = p.block()
			if err != nil {
				return nil, err
			}
		}
		return &If{Cond: cond, Then: then, Otherwise: otherwise}, nil

	case tWhile:
		p.next()
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return &While{Cond: cond, Body: body}, nil

	default:
		target, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(tAssign); ok {
			value, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tSemi, "';'"); err != nil {
				return nil, err
			}
			return &Assign{Target: target, Value: value}, nil
		}
		if _, err := p.expect(tSemi, "';'"); err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: target}, nil
	}
}

func (p *parser) expr() (Expr, error) {
	switch p.peek().kind {
	case tAmp:
		p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &Refer{Inner: inner}, nil
	case tStar:
		p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &Deref{Inner: inner}, nil
	default:
		return p.primary()
	}
}

func (p *parser) primary() (Expr, error) {
	switch t := p.peek(); t.kind {
	case tString:
		p.next()
		return StrLit(t.text), nil

	case tChar:
		p.next()
		return CharLit([]rune(t.text)[0]), nil

	case tByte:
		p.next()
		n, err := strconv.ParseUint(t.text, 10, 8)
		if err != nil {
			p.pos--
			return nil, p.fail(fmt.Sprintf("byte literal %sb out of range", t.text))
		}
		return ByteLit(uint8(n)), nil

	case tUint:
		p.next()
		n, err := strconv.ParseUint(t.text, 10, 32)
		if err != nil {
			p.pos--
			return nil, p.fail(fmt.Sprintf("integer literal %s out of range", t.text))
		}
		return UintLit(uint32(n)), nil

	case tIdent:
		p.next()
		if _, ok := p.accept(tLParen); ok {
			var args []Expr
			if p.peek().kind != tRParen {
				for {
					arg, err := p.expr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if _, ok := p.accept(tComma); !ok {
						break
					}
				}
			}
			if _, err := p.expect(tRParen, "')'"); err != nil {
				return nil, err
			}
			return &Call{Name: t.text, Args: args}, nil
		}
		return &Load{Name: t.text}, nil

	case tLParen:
		p.next()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, p.fail(fmt.Sprintf("expected expression, found %s", t.describe()))
	}
}
