// Package vm implements the stack-based bytecode interpreter: it
// fetches, decodes, and executes the chunk the compiler produced
// against a fixed-size value stack, a globals table, and the string
// interner shared with the compiler.
package vm

import (
	"fmt"
	"io"

	"nilan/chunk"
	"nilan/compiler"
	"nilan/debug"
	"nilan/intern"
	"nilan/table"
	"nilan/value"
)

// Result reports how Interpret finished.
type Result int

const (
	InterpretOK Result = iota
	InterpretCompileError
	InterpretRuntimeError
)

// stackMax is the VM's fixed value-stack capacity.
const stackMax = 256

// VM is a single-threaded, non-reentrant bytecode interpreter. It is
// meant to be constructed once and reused across many Interpret calls
// (e.g. one VM per REPL session), so that globals and interned strings
// persist between them.
type VM struct {
	chunk *chunk.Chunk
	ip    int

	stack    [stackMax]value.Value
	stackTop int

	interner *intern.Interner
	globals  *table.Table

	stdout io.Writer
	stderr io.Writer
	trace  bool
}

// New returns a freshly initialized VM. stdout receives PRINT output;
// stderr receives compile and runtime diagnostics.
func New(stdout, stderr io.Writer) *VM {
	return &VM{
		interner: intern.New(),
		globals:  table.New(),
		stdout:   stdout,
		stderr:   stderr,
	}
}

// SetTrace toggles per-instruction execution tracing to stderr.
func (vm *VM) SetTrace(enabled bool) {
	vm.trace = enabled
}

// Teardown releases the VM's interned strings and object list. It must
// not be called while another Interpret call could still be running —
// the VM is not reentrant.
func (vm *VM) Teardown() {
	vm.interner.Teardown()
	vm.globals = table.New()
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// Interpret compiles and runs source against this VM's persistent
// state. A compile failure leaves globals untouched, though string
// literals and names the compiler had already interned stay interned;
// a runtime failure leaves globals and interned strings as they stood
// at the point of failure (only the value stack is reset).
func (vm *VM) Interpret(source string) Result {
	c, err := compiler.Compile(source, vm.interner, vm.stderr)
	if err != nil {
		return InterpretCompileError
	}

	vm.chunk = c
	vm.ip = 0
	return vm.run()
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readConstant() value.Value {
	return vm.chunk.Constants[vm.readByte()]
}

func (vm *VM) readString() *value.ObjString {
	return vm.readConstant().Obj.Str
}

// traceInstruction prints the current stack contents followed by the
// disassembly of the instruction about to execute. Enabled only when
// SetTrace(true) has been called (see the NILAN_TRACE environment
// variable in package main).
func (vm *VM) traceInstruction() {
	fmt.Fprint(vm.stderr, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.stderr, "[ %s ]", value.Print(vm.stack[i]))
	}
	fmt.Fprintln(vm.stderr)

	line, _ := debug.DisassembleInstruction(vm.chunk, vm.ip)
	fmt.Fprintln(vm.stderr, line)
}

func (vm *VM) run() Result {
	for {
		if vm.trace {
			vm.traceInstruction()
		}

		switch op := chunk.Op(vm.readByte()); op {
		case chunk.OpConstant:
			vm.push(vm.readConstant())

		case chunk.OpNil:
			vm.push(value.Nil)
		case chunk.OpTrue:
			vm.push(value.BoolValue(true))
		case chunk.OpFalse:
			vm.push(value.BoolValue(false))

		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := vm.readByte()
			vm.push(vm.stack[slot])
		case chunk.OpSetLocal:
			slot := vm.readByte()
			vm.stack[slot] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := vm.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)

		case chunk.OpDefineGlobal:
			name := vm.readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case chunk.OpSetGlobal:
			name := vm.readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.BoolValue(value.Equal(a, b)))

		case chunk.OpGreater:
			if res, failed := vm.compareNumbers(func(a, b float64) bool { return a > b }); failed {
				return res
			}
		case chunk.OpLess:
			if res, failed := vm.compareNumbers(func(a, b float64) bool { return a < b }); failed {
				return res
			}

		case chunk.OpAdd:
			if res, failed := vm.add(); failed {
				return res
			}
		case chunk.OpSubtract:
			if res, failed := vm.binaryNumber(func(a, b float64) float64 { return a - b }); failed {
				return res
			}
		case chunk.OpMultiply:
			if res, failed := vm.binaryNumber(func(a, b float64) float64 { return a * b }); failed {
				return res
			}
		case chunk.OpDivide:
			if res, failed := vm.binaryNumber(func(a, b float64) float64 { return a / b }); failed {
				return res
			}

		case chunk.OpNot:
			vm.push(value.BoolValue(vm.pop().IsFalsey()))

		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.NumberValue(-vm.pop().Number))

		case chunk.OpPrint:
			fmt.Fprintln(vm.stdout, value.Print(vm.pop()))

		case chunk.OpReturn:
			return InterpretOK

		default:
			return vm.runtimeError("Unknown opcode %v.", op)
		}
	}
}

func (vm *VM) binaryNumber(f func(a, b float64) float64) (Result, bool) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers."), true
	}
	b := vm.pop().Number
	a := vm.pop().Number
	vm.push(value.NumberValue(f(a, b)))
	return InterpretOK, false
}

func (vm *VM) compareNumbers(f func(a, b float64) bool) (Result, bool) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers."), true
	}
	b := vm.pop().Number
	a := vm.pop().Number
	vm.push(value.BoolValue(f(a, b)))
	return InterpretOK, false
}

func (vm *VM) add() (Result, bool) {
	switch {
	case vm.peek(0).IsString() && vm.peek(1).IsString():
		b := vm.pop()
		a := vm.pop()
		obj := vm.interner.Intern(a.AsString() + b.AsString())
		vm.push(value.ObjValue(obj))
		return InterpretOK, false
	case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
		b := vm.pop().Number
		a := vm.pop().Number
		vm.push(value.NumberValue(a + b))
		return InterpretOK, false
	default:
		return vm.runtimeError("Operands must be two numbers or two strings."), true
	}
}

// runtimeError prints the message and a one-frame "[line L] in script"
// trailer, resets the value stack, and returns InterpretRuntimeError.
func (vm *VM) runtimeError(format string, args ...any) Result {
	fmt.Fprintf(vm.stderr, format+"\n", args...)

	line := vm.chunk.Lines[vm.ip-1]
	fmt.Fprintf(vm.stderr, "[line %d] in script\n", line)

	vm.resetStack()
	return InterpretRuntimeError
}
