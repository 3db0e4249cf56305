// Package ast is the tree vocabulary shared by the external parser (which
// produces the input tree), the pipeline (which checks it and builds the
// lowered tree), and the external emitter (which serializes the lowered tree).
//
// Nodes are plain pointer structs: Kind + Span + a kind-specific Data payload.
// The pipeline treats every input tree as read-only; lowering always builds a
// fresh tree (see Clone helpers) and never mutates nodes in place.
//
// The sugar constructs this pipeline eliminates — enum declarations, free
// builtin calls, the propagation operator, launch-as-value — are ordinary
// node kinds here, so a lowered tree and an input tree share one vocabulary.
package ast
