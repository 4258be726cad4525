// env.go — a single lexical scope frame.
//
// Frames are self-contained: name resolution never climbs into an enclosing
// frame, so everything a callee can see was bound at call entry. The table is
// ordered so teardown frees storage in binding order and diagnostic snapshots
// are deterministic.

package free

import (
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// Env maps names to Values inside one call frame.
type Env struct {
	scope *orderedmap.OrderedMap
}

// NewEnv returns an empty frame.
func NewEnv() *Env {
	return &Env{scope: orderedmap.New()}
}

// Define binds name to an independently owned copy of v; the caller keeps
// ownership of v itself. Any previous binding of name is zeroed first so
// rebinding never leaks storage.
func (e *Env) Define(name string, v Value) {
	if prev, ok := e.scope.Get(name); ok {
		prev.(Value).Zero()
	}
	e.scope.Set(name, v.Copy())
}

// DefineOwned binds name to v itself, transferring ownership into the scope.
// Any previous binding of name is zeroed first.
func (e *Env) DefineOwned(name string, v Value) {
	if prev, ok := e.scope.Get(name); ok {
		prev.(Value).Zero()
	}
	e.scope.Set(name, v)
}

// Get resolves name in this frame. Failure carries the attempted name and a
// snapshot of the frame for diagnostics.
func (e *Env) Get(name string) (Value, error) {
	v, ok := e.scope.Get(name)
	if !ok {
		return nil, &NotDefinedError{Name: name, Scope: e.Snapshot()}
	}
	return v.(Value), nil
}

// Free releases every non-reference value in the frame. Reference bindings
// alias storage owned by an outer frame and are skipped.
func (e *Env) Free() {
	for _, name := range e.scope.Keys() {
		v, _ := e.scope.Get(name)
		if !v.(Value).IsRef() {
			v.(Value).Free()
		}
	}
}

// Len reports the number of bindings.
func (e *Env) Len() int {
	return len(e.scope.Keys())
}

// Snapshot renders the frame's bindings in insertion order.
func (e *Env) Snapshot() []string {
	keys := e.scope.Keys()
	out := make([]string, 0, len(keys))
	for _, name := range keys {
		v, _ := e.scope.Get(name)
		val := v.(Value)
		if val.IsRef() {
			out = append(out, fmt.Sprintf("%s: ref size=%d", name, val.Size()))
		} else {
			out = append(out, fmt.Sprintf("%s: size=%d", name, val.Size()))
		}
	}
	return out
}
