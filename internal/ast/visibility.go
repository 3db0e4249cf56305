package ast

// Visibility is the declared reachability qualifier of a symbol. There is no
// default: a top-level declaration without an explicit modifier keeps VisNone
// and the collector rejects it. Name casing is never consulted.
type Visibility uint8

const (
	// VisNone means no modifier was written in the source.
	VisNone Visibility = iota
	// VisPrivate restricts the symbol to its declaring file.
	VisPrivate
	// VisPackage makes the symbol visible to every file of its package.
	VisPackage
	// VisPublic makes the symbol visible to any importing package.
	VisPublic
)

func (v Visibility) String() string {
	switch v {
	case VisPrivate:
		return "private"
	case VisPackage:
		return "package"
	case VisPublic:
		return "public"
	default:
		return "none"
	}
}
