// tape.go — the concrete Target and Control: a cell tape with a stack
// pointer, emitting a flat op stream.
//
// The tape is the compilation output of this system. Every value operation
// (alloc, copy, zero, free, ref, deref, assign, write) and every control
// bracket appends one Op; an executor or a further backend consumes the
// stream. Addresses are frame-relative cell offsets; the stack pointer
// advances on allocation and is restored by the engine on frame exit.

package free

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrPtrsDisabled is returned by Refer when the tape was built with the
// DisablePtrs flag.
var ErrPtrsDisabled = errors.New("pointer operations are disabled")

// OpKind discriminates tape operations.
type OpKind int

const (
	OpAlloc      OpKind = iota // reserve Size cells at Addr; Data holds initial contents
	OpCopy                     // copy Size cells from Src to Addr
	OpZero                     // clear Size cells at Addr
	OpFree                     // release Size cells at Addr
	OpRef                      // write the address Src into the pointer cell at Addr
	OpDeref                    // follow the pointer cell at Src to Addr
	OpAssign                   // overwrite Size cells at Addr from Src
	OpWrite                    // emit Size cells at Addr to the output stream
	OpIfBegin                  // open a conditional bracket on the cell at Addr
	OpIfEnd                    // close the innermost conditional bracket
	OpWhileBegin               // open a loop bracket on the cell at Addr
	OpWhileEnd                 // close the innermost loop bracket
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpCopy:
		return "copy"
	case OpZero:
		return "zero"
	case OpFree:
		return "free"
	case OpRef:
		return "ref"
	case OpDeref:
		return "deref"
	case OpAssign:
		return "assign"
	case OpWrite:
		return "write"
	case OpIfBegin:
		return "if"
	case OpIfEnd:
		return "end-if"
	case OpWhileBegin:
		return "while"
	case OpWhileEnd:
		return "end-while"
	default:
		return "?"
	}
}

// Op is one tape operation. Src is -1 when the operation has no source
// address (or the source is not tape storage).
type Op struct {
	Kind OpKind
	Addr int
	Src  int
	Size int
	Data []byte
}

func (o Op) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-9s @%d", o.Kind, o.Addr)
	if o.Src >= 0 {
		fmt.Fprintf(&b, " <- @%d", o.Src)
	}
	if o.Size > 0 {
		fmt.Fprintf(&b, " x%d", o.Size)
	}
	if len(o.Data) > 0 {
		fmt.Fprintf(&b, " %q", o.Data)
	}
	return b.String()
}

// Tape is a cell memory plus the op stream compiled against it.
type Tape struct {
	sp   int
	ops  []Op
	live map[int]int // addr of live allocation -> size

	disablePtrs bool
	sizeWarn    bool
	warnLimit   int
	warnTo      io.Writer
}

// NewTape builds an empty tape honoring the given program flags.
func NewTape(flags ...Flag) *Tape {
	t := &Tape{
		live:      make(map[int]int),
		warnLimit: 64,
		warnTo:    os.Stderr,
	}
	for _, f := range flags {
		switch f {
		case DisablePtrs:
			t.disablePtrs = true
		case EnableSizeWarn:
			t.sizeWarn = true
		}
	}
	return t
}

// SetWarnLimit overrides the EnableSizeWarn threshold (in cells).
func (t *Tape) SetWarnLimit(n int) { t.warnLimit = n }

// SetWarnOutput redirects size warnings.
func (t *Tape) SetWarnOutput(w io.Writer) { t.warnTo = w }

// Ops returns the op stream compiled so far.
func (t *Tape) Ops() []Op { return t.ops }

// Live reports the number of live allocations.
func (t *Tape) Live() int { return len(t.live) }

func (t *Tape) emit(op Op) { t.ops = append(t.ops, op) }

func (t *Tape) alloc(size int, data []byte) *cell {
	c := &cell{t: t, addr: t.sp, size: size}
	t.sp += size
	t.live[c.addr] = size
	t.emit(Op{Kind: OpAlloc, Addr: c.addr, Src: -1, Size: size, Data: data})
	if t.sizeWarn && size > t.warnLimit {
		fmt.Fprintf(t.warnTo, "warning: value of %d cells at @%d exceeds %d\n", size, c.addr, t.warnLimit)
	}
	return c
}

// String materializes a string literal, one cell per byte.
func (t *Tape) String(s string) Value { return t.alloc(len(s), []byte(s)) }

// Char materializes a character literal in one cell.
func (t *Tape) Char(c rune) Value { return t.alloc(1, []byte{byte(c)}) }

// Byte materializes a 1-byte integer literal.
func (t *Tape) Byte(b uint8) Value { return t.alloc(1, []byte{b}) }

// Uint materializes an unsigned 4-byte integer literal, little endian.
func (t *Tape) Uint(u uint32) Value {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, u)
	return t.alloc(4, data)
}

// StackPtr reports the next free cell address.
func (t *Tape) StackPtr() int { return t.sp }

// SetStackPtr restores the stack pointer, reclaiming every allocation at or
// above the new mark.
func (t *Tape) SetStackPtr(n int) {
	for addr := range t.live {
		if addr >= n {
			delete(t.live, addr)
		}
	}
	t.sp = n
}

// Write emits the value's cells to the output stream. Non-tape values are
// ignored.
func (t *Tape) Write(v Value) {
	if c, ok := v.(*cell); ok {
		t.emit(Op{Kind: OpWrite, Addr: c.addr, Src: -1, Size: c.size})
	}
}

// IfBegin opens a conditional bracket on the condition's cell.
func (t *Tape) IfBegin(cond Value) {
	t.emit(Op{Kind: OpIfBegin, Addr: cellAddr(cond), Src: -1})
}

// IfEnd closes the innermost conditional bracket.
func (t *Tape) IfEnd() { t.emit(Op{Kind: OpIfEnd, Addr: -1, Src: -1}) }

// WhileBegin opens a loop bracket on the condition's cell.
func (t *Tape) WhileBegin(cond Value) {
	t.emit(Op{Kind: OpWhileBegin, Addr: cellAddr(cond), Src: -1})
}

// WhileEnd closes the innermost loop bracket.
func (t *Tape) WhileEnd() { t.emit(Op{Kind: OpWhileEnd, Addr: -1, Src: -1}) }

func cellAddr(v Value) int {
	if c, ok := v.(*cell); ok {
		return c.addr
	}
	return -1
}

// cell is a tape-backed Value: an address span plus reference bookkeeping.
type cell struct {
	t       *Tape
	addr    int
	size    int
	ref     bool
	pointee *cell
}

// Copy duplicates the span into fresh cells. Copying a reference yields
// another alias of the same pointee.
func (c *cell) Copy() Value {
	dst := c.t.alloc(c.size, nil)
	c.t.emit(Op{Kind: OpCopy, Addr: dst.addr, Src: c.addr, Size: c.size})
	dst.ref = c.ref
	dst.pointee = c.pointee
	return dst
}

// Zero clears the span without releasing it.
func (c *cell) Zero() {
	c.t.emit(Op{Kind: OpZero, Addr: c.addr, Src: -1, Size: c.size})
}

// Free releases the span. Spans already reclaimed by a stack-pointer
// restore are ignored.
func (c *cell) Free() {
	if _, ok := c.t.live[c.addr]; !ok {
		return
	}
	delete(c.t.live, c.addr)
	c.t.emit(Op{Kind: OpFree, Addr: c.addr, Src: -1, Size: c.size})
}

// Size is the span length in cells.
func (c *cell) Size() int { return c.size }

// Refer allocates a pointer cell denoting this span. References do not
// nest, and the DisablePtrs flag forbids the operation entirely.
func (c *cell) Refer() (Value, error) {
	if c.ref {
		return nil, &RefError{}
	}
	if c.t.disablePtrs {
		return nil, ErrPtrsDisabled
	}
	r := c.t.alloc(1, nil)
	c.t.emit(Op{Kind: OpRef, Addr: r.addr, Src: c.addr})
	r.ref = true
	r.pointee = c
	return r, nil
}

// Deref follows the pointer cell to the span it denotes. On a non-reference
// the receiver is returned unchanged; that is a caller error upstream.
func (c *cell) Deref() Value {
	if !c.ref || c.pointee == nil {
		return c
	}
	c.t.emit(Op{Kind: OpDeref, Addr: c.pointee.addr, Src: c.addr})
	return c.pointee
}

// Assign overwrites the span's contents from src.
func (c *cell) Assign(src Value) {
	op := Op{Kind: OpAssign, Addr: c.addr, Src: -1, Size: c.size}
	if s, ok := src.(*cell); ok {
		op.Src = s.addr
	}
	c.t.emit(op)
}

// IsRef reports whether the cell is a pointer cell.
func (c *cell) IsRef() bool { return c.ref }
