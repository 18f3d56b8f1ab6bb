// Package intern canonicalizes string literals and runtime-concatenated
// strings into single heap Obj records, so that two Values holding the
// same byte sequence are also pointer-identical. It reuses package
// table's hash table for the find-or-insert probe (what clox calls
// findString) and threads every allocated object
// onto a list for bulk teardown.
package intern

import (
	"nilan/table"
	"nilan/value"
)

// Interner is shared by the compiler (string literals, global names)
// and the VM (runtime string concatenation): whichever side sees a
// byte sequence first owns the canonical object.
type Interner struct {
	strings *table.Table
	owners  map[*value.ObjString]*value.Obj
	objects *value.Obj
}

// New returns an empty interner.
func New() *Interner {
	return &Interner{strings: table.New(), owners: make(map[*value.ObjString]*value.Obj)}
}

// Intern returns the canonical Obj for chars, allocating a new heap
// string only if chars has not been interned yet.
func (in *Interner) Intern(chars string) *value.Obj {
	hash := value.HashString(chars)
	if existing := in.strings.FindString(chars, hash); existing != nil {
		return in.owners[existing]
	}

	str := &value.ObjString{Chars: chars, Hash: hash}
	obj := &value.Obj{Type: value.ObjTypeString, Str: str, Next: in.objects}
	in.objects = obj
	in.owners[str] = obj

	in.strings.Set(str, value.Nil)
	return obj
}

// Teardown releases the interner's references. The table is cleared
// before the object list, matching the ownership order required when
// the table's keys merely borrow from the objects the list owns.
func (in *Interner) Teardown() {
	in.strings = table.New()
	in.owners = make(map[*value.ObjString]*value.Obj)
	in.objects = nil
}
