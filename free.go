// Package free is the execution core of the free language: an AST model, a
// scope stack, a function registry with user and foreign dispatch, and a
// direct-lowering engine that reduces expression trees to concrete values
// while emitting control flow and memory traffic to a cell tape.
//
// The engine practices manual memory management at the language-value level:
// every value is explicitly copied, zeroed, freed, referenced or
// dereferenced, and a frame-relative stack pointer names temporaries and
// reclaims frames deterministically. There is no intermediate representation
// beyond the AST and no optimization passes; compilation output is the
// tape's op stream.
//
// Typical embedding:
//
//	prog, err := free.Parse(src)
//	tape := free.NewTape(prog.Flags...)
//	ip := free.New(tape, tape)
//	free.Std(ip, tape)
//	prog.Compile(ip)               // registration only
//	err = ip.Call("main", nil)     // execution starts here
package free

// Version is the library version reported by cmd/free.
const Version = "0.3.0"
