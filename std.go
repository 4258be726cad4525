// std.go — the baseline foreign-function library.
//
// These are host-implemented callees bound through the ordinary calling
// convention: arguments arrive as copy-bound frame bindings, results leave
// through the return protocol. They compile against a *Tape target because
// output is a tape op.

package free

// Std registers the baseline foreign functions on the context. The context's
// Target must be a *Tape.
func Std(ip *Interp, t *Tape) {
	// putstr(s): emit the string's cells to the output stream.
	ip.RegisterForeign("putstr", []string{"s"}, func(ip *Interp) error {
		v, err := ip.Get("s")
		if err != nil {
			return err
		}
		t.Write(v)
		return nil
	})

	// putch(ch): emit a single cell.
	ip.RegisterForeign("putch", []string{"ch"}, func(ip *Interp) error {
		v, err := ip.Get("ch")
		if err != nil {
			return err
		}
		t.Write(v)
		return nil
	})

	// putnum(n): emit a numeric value's cells.
	ip.RegisterForeign("putnum", []string{"n"}, func(ip *Interp) error {
		v, err := ip.Get("n")
		if err != nil {
			return err
		}
		t.Write(v)
		return nil
	})

	// dup(x): return a copy of the argument.
	ip.RegisterForeign("dup", []string{"x"}, func(ip *Interp) error {
		v, err := ip.Get("x")
		if err != nil {
			return err
		}
		ip.SetReturn(v)
		return nil
	})
}
