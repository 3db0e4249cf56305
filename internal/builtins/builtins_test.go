package builtins

import "testing"

func TestLookupClasses(t *testing.T) {
	cases := []struct {
		name  string
		class Class
	}{
		{"append", ClassMethod},
		{"copy", ClassMethod},
		{"delete", ClassMethod},
		{"len", ClassMethod},
		{"cap", ClassMethod},
		{"close", ClassMethod},
		{"make", ClassNamespaced},
		{"complex", ClassNamespaced},
		{"real", ClassNamespaced},
		{"imag", ClassNamespaced},
		{"print", ClassNamespaced},
		{"println", ClassNamespaced},
		{"panic", ClassKeyword},
		{"recover", ClassKeyword},
		{"new", ClassKeyword},
		{"error", ClassKeyword},
	}
	for _, tc := range cases {
		class, ok := Lookup(tc.name)
		if !ok {
			t.Errorf("Expected %q to be eliminated", tc.name)
			continue
		}
		if class != tc.class {
			t.Errorf("Expected %q to have class %d, got %d", tc.name, tc.class, class)
		}
	}
	if len(Names()) != len(cases) {
		t.Errorf("Expected %d table names, got %d", len(cases), len(Names()))
	}
}

func TestLookupMiss(t *testing.T) {
	if _, ok := Lookup("fmt"); ok {
		t.Error("Expected 'fmt' not to be eliminated")
	}
	if IsEliminated("promise") {
		t.Error("Expected 'promise' not to be a reserved table name")
	}
}

func TestIsKeyword(t *testing.T) {
	if !IsKeyword("panic") {
		t.Error("Expected 'panic' to be keyword class")
	}
	if IsKeyword("len") {
		t.Error("Expected 'len' not to be keyword class")
	}
}

func TestPreludeMembers(t *testing.T) {
	members := make(map[string]bool)
	for _, m := range PreludeMembers() {
		members[m] = true
	}
	// Every namespaced rewrite target must be a prelude member, plus the
	// helpers lowering introduces.
	for _, want := range []string{"make", "print", "promise", "enumValues", "enumError"} {
		if !members[want] {
			t.Errorf("Expected prelude to provide %q", want)
		}
	}
	if members["append"] {
		t.Error("Expected method-class names to stay out of the prelude")
	}
}
