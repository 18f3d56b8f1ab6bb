package debug

import (
	"strings"
	"testing"

	"nilan/chunk"
	"nilan/value"
)

func TestDisassembleChunk(t *testing.T) {
	c := chunk.New()
	idx, _ := c.AddConstant(value.NumberValue(42))
	c.WriteOp(chunk.OpConstant, 1)
	c.Write(byte(idx), 1)
	c.WriteOp(chunk.OpReturn, 1)

	out := DisassembleChunk(c, "test")
	if !strings.HasPrefix(out, "== test ==\n") {
		t.Errorf("output missing header: %q", out)
	}
	if !strings.Contains(out, "OP_CONSTANT") || !strings.Contains(out, "42") {
		t.Errorf("output missing constant instruction: %q", out)
	}
	if !strings.Contains(out, "OP_RETURN") {
		t.Errorf("output missing return instruction: %q", out)
	}
}

func TestDisassembleInstructionAdvancesOffset(t *testing.T) {
	c := chunk.New()
	idx, _ := c.AddConstant(value.NumberValue(1))
	c.WriteOp(chunk.OpConstant, 1)
	c.Write(byte(idx), 1)

	_, next := DisassembleInstruction(c, 0)
	if next != 2 {
		t.Errorf("next offset = %d, want 2 (OP_CONSTANT is two bytes)", next)
	}
}
