package chunk

import (
	"testing"

	"nilan/value"
)

func TestWriteGrowsInStep(t *testing.T) {
	c := New()
	for i := 0; i < 20; i++ {
		c.Write(byte(i), i/2)
	}
	if len(c.Code) != 20 || len(c.Lines) != 20 {
		t.Fatalf("len(Code)=%d len(Lines)=%d, want 20 and 20", len(c.Code), len(c.Lines))
	}
	for i := 0; i < 20; i++ {
		if c.Code[i] != byte(i) {
			t.Errorf("Code[%d] = %d, want %d", i, c.Code[i], i)
		}
		if c.Lines[i] != i/2 {
			t.Errorf("Lines[%d] = %d, want %d", i, c.Lines[i], i/2)
		}
	}
}

func TestAddConstant(t *testing.T) {
	c := New()
	i0, ok := c.AddConstant(value.NumberValue(1))
	if !ok || i0 != 0 {
		t.Fatalf("first AddConstant = (%d, %v), want (0, true)", i0, ok)
	}
	i1, ok := c.AddConstant(value.NumberValue(2))
	if !ok || i1 != 1 {
		t.Fatalf("second AddConstant = (%d, %v), want (1, true)", i1, ok)
	}
}

func TestAddConstantOverflow(t *testing.T) {
	c := New()
	for i := 0; i < maxConstants; i++ {
		if _, ok := c.AddConstant(value.NumberValue(float64(i))); !ok {
			t.Fatalf("AddConstant failed early at index %d", i)
		}
	}
	if _, ok := c.AddConstant(value.NumberValue(999)); ok {
		t.Error("AddConstant succeeded past the 256-constant ceiling")
	}
}

func TestOpString(t *testing.T) {
	if OpReturn.String() != "OP_RETURN" {
		t.Errorf("OpReturn.String() = %q, want OP_RETURN", OpReturn.String())
	}
}
