// errors.go — engine error kinds plus caret-snippet rendering for front-end
// diagnostics.
//
// Engine errors are plain typed structs; they propagate unchanged through
// lowering, statement compilation and call dispatch. First error wins,
// execution stops, nothing is retried. WrapErrorWithSource recognizes
// *LexError (lexer.go) and *ParseError (parser.go) and re-renders them as a
// numbered snippet with a caret under the offending 1-based column; every
// other error is returned as-is.

package free

import (
	"fmt"
	"strings"
)

// RefError is returned when code takes a reference to a value that is
// already a reference. References do not nest.
type RefError struct{}

func (e *RefError) Error() string { return "cannot reference a reference" }

// UnknownFnError is returned when a call names a function absent from the
// registry (neither user-defined nor foreign).
type UnknownFnError struct {
	Name string
}

func (e *UnknownFnError) Error() string {
	return fmt.Sprintf("function not defined: %s", e.Name)
}

// NotDefinedError is returned when a name lookup fails in the current scope.
// Scope holds a rendered snapshot of the scope's bindings for diagnostics.
type NotDefinedError struct {
	Name  string
	Scope []string
}

func (e *NotDefinedError) Error() string {
	if len(e.Scope) == 0 {
		return fmt.Sprintf("variable not defined: %s (scope is empty)", e.Name)
	}
	return fmt.Sprintf("variable not defined: %s (scope: %s)", e.Name, strings.Join(e.Scope, ", "))
}

// ArityError is returned when a call's argument count does not match the
// callee's parameter count.
type ArityError struct {
	Fn   string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Fn, e.Want, e.Got)
}

// WrapErrorWithSource upgrades front-end errors with a source snippet. Lex
// and parse errors gain a numbered excerpt and a caret; anything else passes
// through unchanged.
func WrapErrorWithSource(err error, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("LEX ERROR at %d:%d: %s\n\n%s", e.Line, e.Col, e.Msg, snippet(src, e.Line, e.Col))
	case *ParseError:
		return fmt.Errorf("PARSE ERROR at %d:%d: %s\n\n%s", e.Line, e.Col, e.Msg, snippet(src, e.Line, e.Col))
	default:
		return err
	}
}

// snippet renders up to one context line either side of line, with a caret
// under col. Coordinates are 1-based and clamped into range.
func snippet(src string, line, col int) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		return ""
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	last := line + 1
	if last > len(lines) {
		last = len(lines)
	}
	width := len(fmt.Sprint(last))

	first := line - 1
	if first < 1 {
		first = 1
	}

	var b strings.Builder
	for n := first; n <= last; n++ {
		fmt.Fprintf(&b, "  %*d | %s\n", width, n, lines[n-1])
		if n == line {
			c := col
			if c < 1 {
				c = 1
			}
			if c > len(lines[n-1])+1 {
				c = len(lines[n-1]) + 1
			}
			fmt.Fprintf(&b, "  %*s | %s^\n", width, "", strings.Repeat(" ", c-1))
		}
	}
	return b.String()
}
