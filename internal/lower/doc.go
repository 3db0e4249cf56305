// Package lower rewrites a checked tree into the sugar-free output
// vocabulary: eliminated-builtin call forms become method or namespaced
// calls, enum declarations become a named int type with constants and
// generated helpers, the propagation operator becomes an explicit
// check-and-early-return, and launch-as-value becomes promise construction
// plus a fire-and-forget launch. The input tree is never mutated; lowering
// builds a fresh tree. Running lower on its own output is the identity.
package lower
