// ast.go — the abstract syntax tree.
//
// A Program carries compile-wide flags and the user functions it defines.
// Statements implement Compile (compile.go), expressions implement Lower
// (lower.go); both run against an *Interp context. Nodes are immutable once
// built and safe to register for the life of the process.

package free

// Flag is a compile-wide toggle carried on a Program. Flags are consumed by
// the code generator, not interpreted by the engine beyond being carried.
type Flag int

const (
	// DisablePtrs forbids reference and dereference operations.
	DisablePtrs Flag = iota
	// EnableSizeWarn warns when a materialized value is oversized.
	EnableSizeWarn
)

func (f Flag) String() string {
	switch f {
	case DisablePtrs:
		return "disable_ptrs"
	case EnableSizeWarn:
		return "enable_size_warn"
	default:
		return "unknown"
	}
}

// Program is a parsed compilation unit: flags plus function definitions.
type Program struct {
	Flags []Flag
	Funs  []*UserFn
}

// Has reports whether the program carries f.
func (p *Program) Has(f Flag) bool {
	for _, g := range p.Flags {
		if g == f {
			return true
		}
	}
	return false
}

// UserFn is a function written in the language. Registration is pure
// bookkeeping: the body is not validated and no code runs until a call.
type UserFn struct {
	Name   string
	Params []string
	Body   []Stmt
}

// Stmt is a statement node, executed for effect against the current frame.
type Stmt interface {
	Compile(ip *Interp) error
}

// Expr is an expression node, lowered to a concrete Value.
type Expr interface {
	Lower(ip *Interp) (Value, error)
}

// If brackets its Then statements with the Control component's conditional.
// Otherwise is accepted by the parser but not executed; see compile.go.
type If struct {
	Cond      Expr
	Then      []Stmt
	Otherwise []Stmt
}

// While brackets its Body with the Control component's loop. The condition
// is lowered once here; re-evaluation is owned by the Control component.
type While struct {
	Cond Expr
	Body []Stmt
}

// ExprStmt evaluates an expression for its side effects and discards the
// result.
type ExprStmt struct {
	Expr Expr
}

// Define binds the lowered value as a copy under Name in the current frame.
type Define struct {
	Name  string
	Value Expr
}

// Assign writes Value into the storage denoted by Target. Target may lower
// to any location expression, including a dereferenced pointer.
type Assign struct {
	Target Expr
	Value  Expr
}

// Return hands the lowered value to the return protocol.
type Return struct {
	Value Expr
}

// Load resolves a name in the current frame.
type Load struct {
	Name string
}

// Call lowers its arguments left to right, dispatches the callee, and yields
// the callee's result via the return protocol.
type Call struct {
	Name string
	Args []Expr
}

// Deref reads through a reference.
type Deref struct {
	Inner Expr
}

// Refer takes a reference to the lowered inner value. Fails if the inner
// value is itself a reference.
type Refer struct {
	Inner Expr
}

// Lifted wraps an already-lowered Value so it can re-enter expression
// position. Lowering it is the identity.
type Lifted struct {
	Value Value
}

// LitKind discriminates literal variants.
type LitKind int

const (
	LitStr LitKind = iota
	LitChar
	LitByte
	LitUint
)

// Lit is a literal. Exactly one payload field is meaningful, per Kind.
// Lowering materializes a fresh owned value under a synthetic scope binding;
// see lower.go.
type Lit struct {
	Kind LitKind
	Str  string
	Char rune
	Byte uint8
	Uint uint32
}

// StrLit builds a string literal.
func StrLit(s string) *Lit { return &Lit{Kind: LitStr, Str: s} }

// CharLit builds a character literal.
func CharLit(c rune) *Lit { return &Lit{Kind: LitChar, Char: c} }

// ByteLit builds a 1-byte integer literal.
func ByteLit(b uint8) *Lit { return &Lit{Kind: LitByte, Byte: b} }

// UintLit builds an unsigned 4-byte integer literal.
func UintLit(u uint32) *Lit { return &Lit{Kind: LitUint, Uint: u} }
