// Command nilan runs the Language's bytecode interpreter, either over
// a file given on the command line or interactively as a REPL.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"nilan/vm"
)

const usage = "Usage: nilan [path]"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	machine := vm.New(os.Stdout, os.Stderr)
	machine.SetTrace(os.Getenv("NILAN_TRACE") != "")
	defer machine.Teardown()

	switch len(args) {
	case 0:
		return repl(machine)
	case 1:
		return runFile(machine, args[0])
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 64
	}
}

func runFile(machine *vm.VM, path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read file %q: %v\n", path, err)
		return 74
	}

	switch machine.Interpret(string(source)) {
	case vm.InterpretCompileError:
		return 65
	case vm.InterpretRuntimeError:
		return 70
	default:
		return 0
	}
}

// repl reads lines with history and basic line editing until EOF
// (Ctrl-D), feeding each one to the same VM so that globals and
// interned strings persist across the whole session.
func repl(machine *vm.VM) int {
	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not start REPL: %v\n", err)
		return 74
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return 0
		}
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 74
		}

		machine.Interpret(line)
	}
}
