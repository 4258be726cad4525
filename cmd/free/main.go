// Command free compiles and runs free programs.
//
//	free run <file.free> [...]    compile+execute files (parallel when several)
//	free repl                     interactive session
//	free version                  print the library version
//
// An optional free.toml manifest supplies default program flags and the
// size-warn threshold; flags written in the source itself always apply too.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/peterh/liner"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	free "github.com/Atul9/free"
)

const (
	appName     = "free"
	historyFile = ".free_history"
	promptMain  = "==> "
	promptCont  = "... "
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(free.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`free %s

Usage:
  %s run [flags] <file.free> [more files...]   Compile and run program(s).
  %s repl                                      Start the REPL.
  %s version                                   Print the version.

Run flags:
  --manifest <path>   Project manifest (default "free.toml" when present)
  --ops               Dump the compiled op stream
  --trace             Trace engine events to stderr

`, free.Version, appName, appName, appName)
}

// manifest mirrors free.toml.
type manifest struct {
	DisablePtrs    bool `toml:"disable_ptrs"`
	EnableSizeWarn bool `toml:"enable_size_warn"`
	WarnLimit      int  `toml:"warn_limit"`
}

func loadManifest(path string, required bool) (manifest, error) {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return manifest{}, nil
		}
		return manifest{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

func (m manifest) flags() []free.Flag {
	var fs []free.Flag
	if m.DisablePtrs {
		fs = append(fs, free.DisablePtrs)
	}
	if m.EnableSizeWarn {
		fs = append(fs, free.EnableSizeWarn)
	}
	return fs
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	manifestPath := fs.String("manifest", "free.toml", "project manifest")
	dumpOps := fs.Bool("ops", false, "dump the compiled op stream")
	trace := fs.Bool("trace", false, "trace engine events to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s run [flags] <file.free> [more files...]\n", appName)
		return 2
	}

	man, err := loadManifest(*manifestPath, fs.Changed("manifest"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}

	if len(files) == 1 {
		if err := runFile(files[0], man, *dumpOps, *trace); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
			return 1
		}
		return 0
	}

	// Several programs: each gets its own context; executions never share a
	// scope stack.
	var g errgroup.Group
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := runFile(file, man, *dumpOps, *trace); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

func runFile(path string, man manifest, dumpOps, trace bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	prog, err := free.Parse(string(src))
	if err != nil {
		return free.WrapErrorWithSource(err, string(src))
	}

	flags := append(man.flags(), prog.Flags...)
	tape := free.NewTape(flags...)
	if man.WarnLimit > 0 {
		tape.SetWarnLimit(man.WarnLimit)
	}

	ip := free.New(tape, tape)
	if trace {
		ip.Trace = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "trace: "+format+"\n", args...)
		}
	}
	free.Std(ip, tape)
	if err := prog.Compile(ip); err != nil {
		return err
	}
	if err := ip.Call("main", nil); err != nil {
		return err
	}

	if dumpOps {
		for _, op := range tape.Ops() {
			fmt.Println(op)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Printf("free %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", free.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	tape := free.NewTape()
	ip := free.New(tape, tape)
	free.Std(ip, tape)

	var buf strings.Builder
	for {
		prompt := promptMain
		if buf.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				buf.Reset()
				continue
			}
			fmt.Println()
			return 0
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "":
				continue
			case ":quit":
				return 0
			case ":ops":
				for _, op := range tape.Ops() {
					fmt.Println(op)
				}
				continue
			case ":help":
				fmt.Println("REPL commands:\n  :quit    Exit\n  :ops     Dump the op stream compiled so far")
				continue
			}
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		src := buf.String()
		if openBraces(src) > 0 {
			continue
		}
		buf.Reset()
		ln.AppendHistory(strings.TrimRight(src, "\n"))

		before := len(tape.Ops())
		if err := replEval(ip, src); err != nil {
			fmt.Fprintln(os.Stderr, free.WrapErrorWithSource(err, src))
			continue
		}
		fmt.Printf("ok (%d ops)\n", len(tape.Ops())-before)
	}
}

// replEval treats input starting with a definition or attribute as a program
// fragment (registration only); anything else is a statement sequence wrapped
// in a throwaway function and called immediately.
func replEval(ip *free.Interp, src string) error {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "fn") || strings.HasPrefix(trimmed, "#") {
		prog, err := free.Parse(src)
		if err != nil {
			return err
		}
		return prog.Compile(ip)
	}

	stmts, err := free.ParseStmts(src)
	if err != nil {
		return err
	}
	fn := &free.UserFn{Name: "%repl%", Body: stmts}
	if err := (&free.Program{Funs: []*free.UserFn{fn}}).Compile(ip); err != nil {
		return err
	}
	return ip.Call("%repl%", nil)
}

// openBraces counts unmatched '{' outside string/char literals.
func openBraces(src string) int {
	depth := 0
	inStr := byte(0)
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inStr != 0 {
			if c == '\\' {
				i++
			} else if c == inStr {
				inStr = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			inStr = c
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}
