// value.go — the runtime value contract and the collaborator boundaries the
// engine is compiled against.
//
// The engine never looks inside a value. It moves values between scopes,
// copies them on binding, zeroes them on rebinding, frees them on frame
// teardown, and takes/follows references. Any implementation of Value that
// honors the contracts below is substitutable; tape.go provides the concrete
// one and the tests provide an accounting stub.

package free

// Value is an opaque runtime datum with manually managed storage.
//
// Contracts:
//   - Copy duplicates the value into independently owned storage. Mutating
//     the copy never affects the original.
//   - Zero clears the contents without releasing the storage.
//   - Free releases the owned storage. Storage must be freed exactly once;
//     the engine guarantees it never calls Free twice on the same owner.
//   - Size is the storage footprint in cells, used for stack-pointer
//     arithmetic during frame teardown.
//   - Refer produces a reference value denoting this value's storage. It
//     fails with *RefError when the receiver is itself a reference;
//     references do not nest.
//   - Deref reads through a reference. Calling it on a non-reference is a
//     caller error upstream; implementations may return the receiver.
//   - Assign overwrites the receiver's contents from src. The receiver keeps
//     its own storage.
//   - IsRef reports whether the value denotes storage owned elsewhere.
//     Reference values are skipped by scope teardown.
type Value interface {
	Copy() Value
	Zero()
	Free()
	Size() int
	Refer() (Value, error)
	Deref() Value
	Assign(src Value)
	IsRef() bool
}

// Target materializes literal values and exposes the frame-relative stack
// pointer the engine uses for temporary naming and teardown bookkeeping.
type Target interface {
	// Literal materialization. Each call allocates fresh owned storage.
	String(s string) Value
	Char(c rune) Value
	Byte(b uint8) Value
	Uint(u uint32) Value

	// Stack-pointer bookkeeping. The pointer advances as values are
	// allocated; the engine restores it on frame exit.
	StackPtr() int
	SetStackPtr(n int)
}

// Control turns lowered condition values into the target's structured
// control flow. The engine brackets statement sequences with these calls and
// otherwise treats the component as a black box.
type Control interface {
	IfBegin(cond Value)
	IfEnd()
	WhileBegin(cond Value)
	WhileEnd()
}
