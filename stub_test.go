package free

import (
	"fmt"
	"testing"
)

// stubStore is shared accounting state behind the stub Value/Target/Control
// implementations. Every storage event is both counted per value and
// appended to a chronological log, so tests can assert "freed exactly once"
// and observable ordering without a real tape.
type stubStore struct {
	nextID int
	sp     int

	log    []string
	copies map[string]int
	zeros  map[string]int
	frees  map[string]int

	values []*stubValue
}

func newStubStore() *stubStore {
	return &stubStore{
		copies: map[string]int{},
		zeros:  map[string]int{},
		frees:  map[string]int{},
	}
}

func (st *stubStore) record(ev string) { st.log = append(st.log, ev) }

func (st *stubStore) value(payload string, size int) *stubValue {
	st.nextID++
	st.sp += size
	v := &stubValue{st: st, id: fmt.Sprintf("v%d", st.nextID), payload: payload, size: size}
	st.values = append(st.values, v)
	return v
}

// alive returns the ids of values never freed, in creation order.
func (st *stubStore) alive() []string {
	var out []string
	for _, v := range st.values {
		if st.frees[v.id] == 0 {
			out = append(out, v.id)
		}
	}
	return out
}

type stubValue struct {
	st      *stubStore
	id      string
	payload string
	size    int
	ref     bool
	pointee *stubValue
}

func (v *stubValue) Copy() Value {
	v.st.copies[v.id]++
	nv := v.st.value(v.payload, v.size)
	nv.ref = v.ref
	nv.pointee = v.pointee
	v.st.record("copy " + v.id + " -> " + nv.id)
	return nv
}

func (v *stubValue) Zero() {
	v.st.zeros[v.id]++
	v.st.record("zero " + v.id)
	v.payload = ""
}

func (v *stubValue) Free() {
	v.st.frees[v.id]++
	v.st.record("free " + v.id)
}

func (v *stubValue) Size() int { return v.size }

func (v *stubValue) Refer() (Value, error) {
	if v.ref {
		return nil, &RefError{}
	}
	r := v.st.value("&"+v.id, 1)
	r.ref = true
	r.pointee = v
	v.st.record("ref " + v.id + " -> " + r.id)
	return r, nil
}

func (v *stubValue) Deref() Value {
	if v.ref && v.pointee != nil {
		return v.pointee
	}
	return v
}

func (v *stubValue) Assign(src Value) {
	s := src.(*stubValue)
	v.payload = s.payload
	v.st.record("assign " + v.id + " <- " + s.id)
}

func (v *stubValue) IsRef() bool { return v.ref }

type stubTarget struct{ st *stubStore }

func (t *stubTarget) String(s string) Value { return t.st.value(s, len(s)) }
func (t *stubTarget) Char(c rune) Value     { return t.st.value(string(c), 1) }
func (t *stubTarget) Byte(b uint8) Value    { return t.st.value(fmt.Sprint(b), 1) }
func (t *stubTarget) Uint(u uint32) Value   { return t.st.value(fmt.Sprint(u), 4) }
func (t *stubTarget) StackPtr() int         { return t.st.sp }
func (t *stubTarget) SetStackPtr(n int)     { t.st.sp = n }

type stubControl struct{ st *stubStore }

func (c *stubControl) IfBegin(cond Value)    { c.st.record("if-begin") }
func (c *stubControl) IfEnd()                { c.st.record("if-end") }
func (c *stubControl) WhileBegin(cond Value) { c.st.record("while-begin") }
func (c *stubControl) WhileEnd()             { c.st.record("while-end") }

// newStubInterp wires a context to the accounting stubs. Engine trace events
// land in the same log as storage events.
func newStubInterp(t *testing.T) (*Interp, *stubStore) {
	t.Helper()
	st := newStubStore()
	ip := New(&stubTarget{st: st}, &stubControl{st: st})
	ip.Trace = func(format string, args ...any) {
		st.record("trace: " + fmt.Sprintf(format, args...))
	}
	return ip, st
}

func mustCompile(t *testing.T, ip *Interp, stmts ...Stmt) {
	t.Helper()
	for _, s := range stmts {
		if err := s.Compile(ip); err != nil {
			t.Fatalf("compile error: %v", err)
		}
	}
}

func wantPayload(t *testing.T, v Value, payload string) {
	t.Helper()
	sv, ok := v.(*stubValue)
	if !ok {
		t.Fatalf("want stub value, got %T", v)
	}
	if sv.payload != payload {
		t.Fatalf("want payload %q, got %q (%s)", payload, sv.payload, sv.id)
	}
}
