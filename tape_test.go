package free

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func opKinds(ops []Op) []OpKind {
	kinds := make([]OpKind, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	return kinds
}

func TestTapeLiteralAllocation(t *testing.T) {
	tape := NewTape()

	v := tape.String("hi")
	if v.Size() != 2 {
		t.Fatalf("want size 2, got %d", v.Size())
	}
	if tape.StackPtr() != 2 {
		t.Fatalf("want stack pointer 2, got %d", tape.StackPtr())
	}

	want := []Op{{Kind: OpAlloc, Addr: 0, Src: -1, Size: 2, Data: []byte("hi")}}
	if diff := cmp.Diff(want, tape.Ops()); diff != "" {
		t.Fatalf("op stream mismatch (-want +got):\n%s", diff)
	}
}

func TestTapeUintLittleEndian(t *testing.T) {
	tape := NewTape()
	tape.Uint(0x01020304)

	ops := tape.Ops()
	if len(ops) != 1 {
		t.Fatalf("want 1 op, got %d", len(ops))
	}
	if !bytes.Equal(ops[0].Data, []byte{4, 3, 2, 1}) {
		t.Fatalf("want little-endian payload, got %v", ops[0].Data)
	}
}

func TestTapeCopyAndFreeAccounting(t *testing.T) {
	tape := NewTape()

	v := tape.Byte(5)
	c := v.Copy()
	if tape.Live() != 2 {
		t.Fatalf("want 2 live allocations, got %d", tape.Live())
	}

	c.Free()
	if tape.Live() != 1 {
		t.Fatalf("want 1 live allocation after free, got %d", tape.Live())
	}

	// A span already reclaimed is ignored, never freed twice.
	n := len(tape.Ops())
	c.Free()
	if len(tape.Ops()) != n {
		t.Fatal("double free emitted an op")
	}

	want := []OpKind{OpAlloc, OpAlloc, OpCopy, OpFree}
	if diff := cmp.Diff(want, opKinds(tape.Ops())); diff != "" {
		t.Fatalf("op kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTapeSetStackPtrReclaims(t *testing.T) {
	tape := NewTape()
	tape.Byte(1)
	tape.Byte(2)

	tape.SetStackPtr(1)
	if tape.Live() != 1 {
		t.Fatalf("want 1 live allocation, got %d", tape.Live())
	}
	if tape.StackPtr() != 1 {
		t.Fatalf("want stack pointer 1, got %d", tape.StackPtr())
	}
}

func TestTapeReferAndDeref(t *testing.T) {
	tape := NewTape()

	v := tape.Byte(5)
	r, err := v.Refer()
	if err != nil {
		t.Fatalf("Refer: %v", err)
	}
	if !r.IsRef() || r.Size() != 1 {
		t.Fatalf("want 1-cell reference, got ref=%v size=%d", r.IsRef(), r.Size())
	}
	if got := r.Deref(); got != v {
		t.Fatal("Deref did not yield the referenced value")
	}

	_, err = r.Refer()
	var re *RefError
	if !errors.As(err, &re) {
		t.Fatalf("want *RefError on reference of reference, got %v", err)
	}
}

func TestTapeDisablePtrs(t *testing.T) {
	tape := NewTape(DisablePtrs)

	_, err := tape.Byte(1).Refer()
	if !errors.Is(err, ErrPtrsDisabled) {
		t.Fatalf("want ErrPtrsDisabled, got %v", err)
	}
}

func TestTapeSizeWarn(t *testing.T) {
	var buf bytes.Buffer
	tape := NewTape(EnableSizeWarn)
	tape.SetWarnLimit(4)
	tape.SetWarnOutput(&buf)

	tape.String("hello world")
	if !strings.Contains(buf.String(), "warning") {
		t.Fatalf("want a size warning, got %q", buf.String())
	}

	buf.Reset()
	tape.Byte(1)
	if buf.Len() != 0 {
		t.Fatalf("small value warned: %q", buf.String())
	}
}

func TestTapeControlBrackets(t *testing.T) {
	tape := NewTape()
	cond := tape.Byte(1)

	tape.WhileBegin(cond)
	tape.IfBegin(cond)
	tape.IfEnd()
	tape.WhileEnd()

	want := []OpKind{OpAlloc, OpWhileBegin, OpIfBegin, OpIfEnd, OpWhileEnd}
	if diff := cmp.Diff(want, opKinds(tape.Ops())); diff != "" {
		t.Fatalf("op kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTapeEndToEnd(t *testing.T) {
	src := `
		// double via a pointer, then print
		fn bump(p) {
			*p = 9b;
		}

		fn main() {
			let x = 5b;
			bump(&x);
			if x {
				putch(x);
			}
		}
	`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tape := NewTape(prog.Flags...)
	ip := New(tape, tape)
	Std(ip, tape)
	if err := prog.Compile(ip); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := ip.Call("main", nil); err != nil {
		t.Fatalf("Call main: %v", err)
	}

	var sawAssign, sawIf, sawWrite bool
	for _, op := range tape.Ops() {
		switch op.Kind {
		case OpAssign:
			sawAssign = true
		case OpIfBegin:
			sawIf = true
		case OpWrite:
			sawWrite = true
		}
	}
	if !sawAssign || !sawIf || !sawWrite {
		t.Fatalf("expected assign/if/write in op stream; assign=%v if=%v write=%v",
			sawAssign, sawIf, sawWrite)
	}

	if ip.Depth() != 1 {
		t.Fatalf("scope stack depth after run: want 1, got %d", ip.Depth())
	}
}

func TestTapeMultiCellReturn(t *testing.T) {
	src := `
		fn big() {
			return 70000;
		}

		fn greet() {
			return "hi";
		}
	`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tape := NewTape()
	ip := New(tape, tape)
	if err := prog.Compile(ip); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	stmts, err := ParseStmts(`let n = big(); let s = greet();`)
	if err != nil {
		t.Fatalf("ParseStmts: %v", err)
	}
	for _, s := range stmts {
		if err := s.Compile(ip); err != nil {
			t.Fatalf("Compile stmt: %v", err)
		}
	}

	n, err := ip.Get("n")
	if err != nil {
		t.Fatalf("Get n: %v", err)
	}
	if n.Size() != 4 {
		t.Fatalf("u32 return arrived as %d cell(s), want 4", n.Size())
	}

	s, err := ip.Get("s")
	if err != nil {
		t.Fatalf("Get s: %v", err)
	}
	if s.Size() != 2 {
		t.Fatalf("string return arrived as %d cell(s), want 2", s.Size())
	}
}
