// Package builtins is the fixed table of eliminated free-function builtins
// and how each one must be rewritten. The table is data; the capability
// checks live in sema and the rewriting in lower.
package builtins

// Class says what call shape replaces the eliminated free function.
type Class uint8

const (
	// ClassMethod rewrites name(recv, args...) to recv.name(args...).
	ClassMethod Class = iota
	// ClassNamespaced rewrites name(args...) to goat.name(args...).
	ClassNamespaced
	// ClassKeyword names that are reserved outright and never callable or
	// declarable as values.
	ClassKeyword
)

// Namespace is the runtime package namespaced rewrites target.
const Namespace = "goat"

var table = map[string]Class{
	"append": ClassMethod,
	"copy":   ClassMethod,
	"delete": ClassMethod,
	"len":    ClassMethod,
	"cap":    ClassMethod,
	"close":  ClassMethod,

	"make":    ClassNamespaced,
	"complex": ClassNamespaced,
	"real":    ClassNamespaced,
	"imag":    ClassNamespaced,
	"print":   ClassNamespaced,
	"println": ClassNamespaced,

	"panic":   ClassKeyword,
	"recover": ClassKeyword,
	"new":     ClassKeyword,
	"error":   ClassKeyword,
}

// Lookup returns the rewrite class for an eliminated builtin name.
func Lookup(name string) (Class, bool) {
	c, ok := table[name]
	return c, ok
}

// IsEliminated reports whether name is in the table. Every table name is
// reserved: declaring a variable, constant, function or type with it is an
// error regardless of class.
func IsEliminated(name string) bool {
	_, ok := table[name]
	return ok
}

// IsKeyword reports whether name is in the keyword class.
func IsKeyword(name string) bool {
	c, ok := table[name]
	return ok && c == ClassKeyword
}

// Names returns the table names; order is unspecified.
func Names() []string {
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	return out
}

// PreludeMembers are the functions the goat runtime namespace provides in
// every package: the namespaced rewrite targets plus the helpers lowering
// introduces.
func PreludeMembers() []string {
	return []string{
		"make", "complex", "real", "imag", "print", "println",
		"promise", "enumValues", "enumError",
	}
}
