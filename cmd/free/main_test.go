package main

import (
	"strings"
	"testing"

	free "github.com/Atul9/free"
)

func newReplInterp() (*free.Interp, *free.Tape) {
	tape := free.NewTape()
	ip := free.New(tape, tape)
	free.Std(ip, tape)
	return ip, tape
}

func TestReplEvalStatements(t *testing.T) {
	ip, tape := newReplInterp()
	if err := replEval(ip, "let x = 5b; putch(x);"); err != nil {
		t.Fatalf("replEval: %v", err)
	}
	if len(tape.Ops()) == 0 {
		t.Fatal("no ops were compiled for the line")
	}
}

func TestReplEvalDefinitionThenCall(t *testing.T) {
	ip, _ := newReplInterp()
	if err := replEval(ip, "fn seven() { return 7b; }"); err != nil {
		t.Fatalf("replEval fn: %v", err)
	}
	if err := replEval(ip, "putch(seven());"); err != nil {
		t.Fatalf("replEval call: %v", err)
	}
}

func TestReplEvalReportsParseErrors(t *testing.T) {
	ip, _ := newReplInterp()
	if err := replEval(ip, "let = 5b;"); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestReplEvalReportsCompileErrors(t *testing.T) {
	ip, _ := newReplInterp()
	err := replEval(ip, "nope();")
	if err == nil {
		t.Fatal("expected an unknown function error")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Fatalf("error does not name the function: %v", err)
	}
}

func TestOpenBraces(t *testing.T) {
	cases := []struct {
		src  string
		want int
	}{
		{"fn f() {", 1},
		{"fn f() { }", 0},
		{"let s = \"{\";", 0},
		{"let c = '{';", 0},
		{"fn f() { if x {", 2},
	}
	for _, c := range cases {
		if got := openBraces(c.src); got != c.want {
			t.Errorf("openBraces(%q) = %d, want %d", c.src, got, c.want)
		}
	}
}
