// lower.go — the Lower contract: reduce an expression node to a concrete
// Value against the current frame.

package free

import "fmt"

// Lower resolves the name in the top frame.
func (l *Load) Lower(ip *Interp) (Value, error) {
	return ip.Get(l.Name)
}

// Lower materializes the literal as a fresh owned value, binds it under a
// depth-scoped synthetic name, and re-loads it. The detour makes every
// literal result a scope-owned, freeable binding instead of a transient, so
// literals obey the same ownership discipline as named variables.
func (l *Lit) Lower(ip *Interp) (Value, error) {
	var (
		name string
		val  Value
	)
	sp := ip.target.StackPtr()
	switch l.Kind {
	case LitStr:
		name = fmt.Sprintf("%%TEMP_STR_LITERAL%d%%", sp)
		val = ip.target.String(l.Str)
	case LitChar:
		name = fmt.Sprintf("%%TEMP_CHAR_LITERAL%d%%", sp)
		val = ip.target.Char(l.Char)
	case LitByte:
		name = fmt.Sprintf("%%TEMP_BYTE_LITERAL%d%%", sp)
		val = ip.target.Byte(l.Byte)
	case LitUint:
		name = fmt.Sprintf("%%TEMP_U32_LITERAL%d%%", sp)
		val = ip.target.Uint(l.Uint)
	}
	ip.DefineOwned(name, val)
	return ip.Get(name)
}

// Lower lowers every argument left to right, dispatches the call, then
// retrieves the callee's result from the return protocol.
func (c *Call) Lower(ip *Interp) (Value, error) {
	ip.trace("calling %s", c.Name)
	if err := ip.Call(c.Name, c.Args); err != nil {
		return nil, err
	}
	return ip.takeReturn()
}

// Lower reads through the lowered inner value as a reference. Lowering a
// non-reference operand is a caller error upstream; the Value contract owns
// the behavior.
func (d *Deref) Lower(ip *Interp) (Value, error) {
	v, err := d.Inner.Lower(ip)
	if err != nil {
		return nil, err
	}
	return v.Deref(), nil
}

// Lower takes a reference to the lowered inner value. References do not
// nest; a reference operand fails with *RefError.
func (r *Refer) Lower(ip *Interp) (Value, error) {
	v, err := r.Inner.Lower(ip)
	if err != nil {
		return nil, err
	}
	return v.Refer()
}

// Lower is the identity; the value is already lowered.
func (l *Lifted) Lower(ip *Interp) (Value, error) {
	return l.Value, nil
}
