package typing

import "testing"

func TestSignaturesMatchExact(t *testing.T) {
	if !SignaturesMatch([]string{"int", "double"}, []string{"int", "double"}) {
		t.Fatal("expected exact match")
	}
}

func TestSignaturesMatchTemplateWildcard(t *testing.T) {
	if !SignaturesMatch([]string{"MyStruct&"}, []string{"T"}) {
		t.Fatal("expected template parameter to match anything")
	}
}

func TestSignaturesMatchReferenceBinding(t *testing.T) {
	if !SignaturesMatch([]string{"int&"}, []string{"int"}) {
		t.Fatal("expected T& to bind T")
	}
	if !SignaturesMatch([]string{"int"}, []string{"int&"}) {
		t.Fatal("expected T to bind T&")
	}
	if !SignaturesMatch([]string{"int"}, []string{"const int&"}) {
		t.Fatal("expected const T& to bind T")
	}
}

func TestSignaturesMatchVariadicAcceptsExtra(t *testing.T) {
	if !SignaturesMatch([]string{"const char*", "int", "double"}, []string{"const char*", "..."}) {
		t.Fatal("expected variadic formal to accept extra args")
	}
}

func TestSignaturesMatchArityMismatch(t *testing.T) {
	if SignaturesMatch([]string{"int"}, []string{"int", "int"}) {
		t.Fatal("expected arity mismatch to fail without variadic")
	}
}

func TestIsTemplateParameter(t *testing.T) {
	cases := map[string]bool{
		"T":     true,
		"U":     true,
		"_Tval": true,
		"int":   false,
		"Shape": false,
	}
	for name, want := range cases {
		if got := IsTemplateParameter(name); got != want {
			t.Errorf("IsTemplateParameter(%q) = %v, want %v", name, got, want)
		}
	}
}
