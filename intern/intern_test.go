package intern

import "testing"

func TestInternCanonicalizes(t *testing.T) {
	in := New()
	a := in.Intern("hello")
	b := in.Intern("hello")
	if a != b {
		t.Error("interning the same bytes twice returned distinct objects")
	}
}

func TestInternDistinguishesContent(t *testing.T) {
	in := New()
	a := in.Intern("hello")
	b := in.Intern("world")
	if a == b {
		t.Error("interning distinct bytes returned the same object")
	}
}

func TestTeardownForgetsInternedStrings(t *testing.T) {
	in := New()
	first := in.Intern("hello")
	in.Teardown()
	second := in.Intern("hello")
	if first == second {
		t.Error("Teardown did not reset the interner's canonical objects")
	}
}
