// interp.go — the interpreter context: scope stack, function registry, call
// dispatch, and the return protocol.
//
// One Interp owns everything a program execution mutates. Recursive calls
// thread the same context down the tree instead of reaching into process
// globals, so running two programs concurrently is just two contexts. The
// hard invariant: at most one logical call-stack traversal may be in flight
// against a given Interp at a time. The registry mutex exists only so hosts
// may register functions from another goroutine; it is held per lookup or
// insert, never across a call body.

package free

import (
	"fmt"
	"sync"
)

// ForeignFn is a statement sequence implemented in the host. It receives its
// arguments through the same frame-binding mechanism as a UserFn and signals
// its result via SetReturn, identically to a language-level function.
type ForeignFn struct {
	Params []string
	Body   func(ip *Interp) error
}

// fnDef is a registry slot. Both arms may be populated; the user definition
// shadows the foreign one on dispatch.
type fnDef struct {
	user    *UserFn
	foreign *ForeignFn
}

// Interp is the execution context for one program.
type Interp struct {
	target Target
	ctrl   Control

	mu  sync.Mutex
	fns map[string]*fnDef

	scopes []*Env
	ret    Value

	// Trace, when set, receives engine events (calls, defines). Nil by
	// default.
	Trace func(format string, args ...any)
}

// New builds a context around the given Target and Control collaborators,
// with one root frame on the scope stack and a zeroed return register.
func New(target Target, ctrl Control) *Interp {
	return &Interp{
		target: target,
		ctrl:   ctrl,
		fns:    make(map[string]*fnDef),
		scopes: []*Env{NewEnv()},
		ret:    target.Byte(0),
	}
}

// Target exposes the context's Target collaborator (used by foreign
// functions that need to materialize or emit against it).
func (ip *Interp) Target() Target { return ip.target }

// Depth reports the scope-stack depth.
func (ip *Interp) Depth() int { return len(ip.scopes) }

func (ip *Interp) trace(format string, args ...any) {
	if ip.Trace != nil {
		ip.Trace(format, args...)
	}
}

// Compile registers every function of the program. No code runs; execution
// begins with the first Call.
func (p *Program) Compile(ip *Interp) error {
	for _, fun := range p.Funs {
		ip.registerUser(fun)
	}
	return nil
}

// RegisterForeign binds a host-implemented function under name. A user
// definition of the same name takes precedence on dispatch.
func (ip *Interp) RegisterForeign(name string, params []string, body func(ip *Interp) error) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	def := ip.fns[name]
	if def == nil {
		def = &fnDef{}
		ip.fns[name] = def
	}
	def.foreign = &ForeignFn{Params: params, Body: body}
}

func (ip *Interp) registerUser(f *UserFn) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	def := ip.fns[f.Name]
	if def == nil {
		def = &fnDef{}
		ip.fns[f.Name] = def
	}
	def.user = f
}

func (ip *Interp) lookup(name string) *fnDef {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.fns[name]
}

// scope is the top frame, the only one visible to name resolution.
func (ip *Interp) scope() *Env {
	return ip.scopes[len(ip.scopes)-1]
}

func (ip *Interp) pushScope(env *Env) {
	ip.scopes = append(ip.scopes, env)
}

func (ip *Interp) popScope() *Env {
	env := ip.scope()
	ip.scopes = ip.scopes[:len(ip.scopes)-1]
	return env
}

// Get resolves name in the top frame.
func (ip *Interp) Get(name string) (Value, error) {
	return ip.scope().Get(name)
}

// Define binds a copy of v under name in the top frame.
func (ip *Interp) Define(name string, v Value) {
	ip.trace("defining %s", name)
	ip.scope().Define(name, v)
}

// DefineOwned moves v into the top frame under name.
func (ip *Interp) DefineOwned(name string, v Value) {
	ip.trace("defining %s", name)
	ip.scope().DefineOwned(name, v)
}

// SetReturn delivers a callee result: the register's prior contents are
// zeroed and its storage released, then a fresh copy of the value takes its
// place. The register always carries the returned value's footprint, so
// frame teardown reserves exactly size(return) cells.
func (ip *Interp) SetReturn(v Value) {
	ip.ret.Zero()
	ip.ret.Free()
	ip.ret = v.Copy()
}

// takeReturn captures the return register into a depth-scoped temporary in
// the caller's (now restored) frame and re-loads it, so the result becomes a
// normal freeable binding.
func (ip *Interp) takeReturn() (Value, error) {
	name := fmt.Sprintf("%%TEMP_RETURN%d%%", ip.target.StackPtr())
	ip.Define(name, ip.ret)
	return ip.Get(name)
}

// Call resolves name against the registry and dispatches. The user table is
// consulted before the foreign one.
func (ip *Interp) Call(name string, args []Expr) error {
	def := ip.lookup(name)
	if def == nil {
		return &UnknownFnError{Name: name}
	}
	if def.user != nil {
		f := def.user
		return ip.invoke(name, f.Params, args, func() error {
			for _, stmt := range f.Body {
				if err := stmt.Compile(ip); err != nil {
					return err
				}
			}
			return nil
		})
	}
	f := def.foreign
	return ip.invoke(name, f.Params, args, func() error {
		return f.Body(ip)
	})
}

// invoke runs the per-call protocol shared by user and foreign functions:
// snapshot the stack pointer, lower arguments left to right in the caller's
// frame, bind them by copy into a fresh frame, push, run, then pop and free
// the frame and restore the stack pointer to the snapshot plus the return
// register's footprint. Teardown runs on the error path too; a failing body
// must not leak its frame.
func (ip *Interp) invoke(name string, params []string, args []Expr, run func() error) error {
	if len(args) != len(params) {
		return &ArityError{Fn: name, Want: len(params), Got: len(args)}
	}

	frame := ip.target.StackPtr()

	env := NewEnv()
	for i, p := range params {
		v, err := args[i].Lower(ip)
		if err != nil {
			env.Free()
			return err
		}
		env.Define(p, v)
	}

	ip.pushScope(env)
	err := run()
	ip.popScope().Free()
	ip.target.SetStackPtr(frame + ip.ret.Size())

	return err
}
