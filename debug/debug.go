// Package debug implements a passive disassembler: given a chunk, it
// renders one line per instruction. It never mutates the chunk it
// inspects.
package debug

import (
	"fmt"
	"strings"

	"nilan/chunk"
	"nilan/value"
)

// DisassembleChunk renders every instruction in c, prefixed with name,
// as a single multi-line string.
func DisassembleChunk(c *chunk.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)

	offset := 0
	for offset < len(c.Code) {
		line, next := DisassembleInstruction(c, offset)
		b.WriteString(line)
		b.WriteByte('\n')
		offset = next
	}
	return b.String()
}

// DisassembleInstruction renders the single instruction at offset and
// returns the offset of the instruction that follows it.
func DisassembleInstruction(c *chunk.Chunk, offset int) (string, int) {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d ", offset)

	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		b.WriteString("   | ")
	} else {
		fmt.Fprintf(&b, "%4d ", c.Lines[offset])
	}

	op := chunk.Op(c.Code[offset])
	switch op {
	case chunk.OpConstant:
		return constantInstruction(&b, c, op, offset)
	case chunk.OpDefineGlobal, chunk.OpGetGlobal, chunk.OpSetGlobal:
		return constantInstruction(&b, c, op, offset)
	case chunk.OpGetLocal, chunk.OpSetLocal:
		return byteInstruction(&b, op, c, offset)
	case chunk.OpNil, chunk.OpTrue, chunk.OpFalse, chunk.OpPop,
		chunk.OpEqual, chunk.OpGreater, chunk.OpLess,
		chunk.OpAdd, chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide,
		chunk.OpNot, chunk.OpNegate, chunk.OpPrint, chunk.OpReturn:
		b.WriteString(op.String())
		return b.String(), offset + 1
	default:
		fmt.Fprintf(&b, "Unknown opcode %d", op)
		return b.String(), offset + 1
	}
}

func constantInstruction(b *strings.Builder, c *chunk.Chunk, op chunk.Op, offset int) (string, int) {
	index := c.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d '%s'", op, index, value.Print(c.Constants[index]))
	return b.String(), offset + 2
}

func byteInstruction(b *strings.Builder, op chunk.Op, c *chunk.Chunk, offset int) (string, int) {
	slot := c.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d", op, slot)
	return b.String(), offset + 2
}
