// compile.go — the Compile contract: execute statement nodes against the
// current frame, delegating sub-expressions to lowering and structured
// control to the Control component.

package free

// Compile lowers the expression and discards the result; the expression is
// evaluated purely for effect.
func (s *ExprStmt) Compile(ip *Interp) error {
	_, err := s.Expr.Lower(ip)
	return err
}

// Compile lowers the value and binds it as a copy under the statement's
// name, zeroing any prior binding first.
func (d *Define) Compile(ip *Interp) error {
	v, err := d.Value.Lower(ip)
	if err != nil {
		return err
	}
	ip.Define(d.Name, v)
	return nil
}

// Compile lowers both sides and writes the value into the storage the
// target denotes. The target may be any location expression, including a
// dereferenced pointer.
func (a *Assign) Compile(ip *Interp) error {
	lhs, err := a.Target.Lower(ip)
	if err != nil {
		return err
	}
	rhs, err := a.Value.Lower(ip)
	if err != nil {
		return err
	}
	lhs.Assign(rhs)
	return nil
}

// Compile lowers the condition, then compiles the Then statements inside
// the Control component's conditional bracket. Otherwise is carried in the
// data model but not executed.
func (i *If) Compile(ip *Interp) error {
	cond, err := i.Cond.Lower(ip)
	if err != nil {
		return err
	}
	ip.ctrl.IfBegin(cond)
	for _, stmt := range i.Then {
		if err := stmt.Compile(ip); err != nil {
			return err
		}
	}
	ip.ctrl.IfEnd()
	return nil
}

// Compile lowers the condition once and compiles the body inside the
// Control component's loop bracket; re-evaluation and looping are owned by
// the Control component.
func (w *While) Compile(ip *Interp) error {
	cond, err := w.Cond.Lower(ip)
	if err != nil {
		return err
	}
	ip.ctrl.WhileBegin(cond)
	for _, stmt := range w.Body {
		if err := stmt.Compile(ip); err != nil {
			return err
		}
	}
	ip.ctrl.WhileEnd()
	return nil
}

// Compile lowers the value and hands it to the return protocol.
func (r *Return) Compile(ip *Interp) error {
	v, err := r.Value.Lower(ip)
	if err != nil {
		return err
	}
	ip.SetReturn(v)
	return nil
}
