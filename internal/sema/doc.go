// Package sema runs the semantic checks between resolution and lowering:
// builtin call-shape and capability checks, enum assignment and switch
// exhaustiveness, the propagation-operator context rule and the launch
// observation policy. It types expressions only as far as those checks
// need; full inference is not this pipeline's contract.
//
// The checker never mutates the tree. Nodes it rejects are recorded in the
// flagged set so lowering leaves them alone instead of producing cascading
// nonsense from an already-broken site.
package sema
