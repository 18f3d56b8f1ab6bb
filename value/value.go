// Package value implements the tagged value representation and the
// heap-allocated object graph shared by the compiler and the VM.
package value

import (
	"fmt"
	"strconv"
)

// Kind discriminates the variant a Value currently holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a tagged union: exactly one of the fields below is
// meaningful, selected by Kind. It is always passed by value, never by
// pointer — the stack and the constants pool hold Values directly.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Obj    *Obj
}

// Nil is the single nil value.
var Nil = Value{Kind: KindNil}

// BoolValue wraps a boolean as a Value.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// NumberValue wraps a float64 as a Value.
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Number: n}
}

// ObjValue wraps a heap object as a Value.
func ObjValue(o *Obj) Value {
	return Value{Kind: KindObj, Obj: o}
}

// IsNil, IsBool, IsNumber, IsString report the Value's variant.
func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsString() bool { return v.Kind == KindObj && v.Obj.Type == ObjTypeString }

// AsString returns the underlying Go string of a string Value. It
// panics if v is not a string; callers must check IsString first.
func (v Value) AsString() string {
	return v.Obj.Str.Chars
}

// IsFalsey reports whether v is considered false in a boolean context:
// nil and the boolean false are falsey, everything else is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.Bool)
}

// Equal implements Value equality: structural for Nil/Bool/Number,
// identity for Obj (which, thanks to string interning, coincides with
// content equality for strings).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindObj:
		return a.Obj == b.Obj
	default:
		return false
	}
}

// Print renders v the way the PRINT opcode does: %g for numbers,
// "true"/"false" for booleans, "nil" for nil, raw bytes for strings.
func Print(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', 6, 64)
	case KindObj:
		return printObj(v.Obj)
	default:
		return fmt.Sprintf("<unknown value kind %d>", v.Kind)
	}
}

// ObjType discriminates the variant of a heap Obj.
type ObjType uint8

const (
	ObjTypeString ObjType = iota
)

// Obj is the header every heap-allocated value shares. Next threads the
// object onto the VM's object list for bulk teardown; it is never
// traversed for any other purpose (there is no garbage collector).
type Obj struct {
	Type ObjType
	Next *Obj
	Str  *ObjString
}

// ObjString is the only Obj variant: an owned byte sequence plus its
// precomputed FNV-1a hash, used both for equality during interning and
// as the hash-table key.
type ObjString struct {
	Chars string
	Hash  uint32
}

func printObj(o *Obj) string {
	switch o.Type {
	case ObjTypeString:
		return o.Str.Chars
	default:
		return "<unknown object>"
	}
}

// HashString computes the FNV-1a 32-bit hash of s: offset basis
// 2166136261, prime 16777619, one XOR-then-multiply per byte.
func HashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}
