package symbols

import (
	"goat/internal/ast"
	"goat/internal/source"
)

// RefSite is where a reference occurs: a file within a package.
type RefSite struct {
	Package string
	File    source.FileID
}

// Visible is the visibility rule as one pure function over the scope
// lattice file < package < global. No string casing is involved.
//
//   - private: the reference must come from the declaring file.
//   - package: the reference must come from the declaring package.
//   - public: any package may reference it.
func Visible(site RefSite, sym *Symbol) bool {
	switch sym.Vis {
	case ast.VisPrivate:
		return site.Package == sym.Package && site.File == sym.File
	case ast.VisPackage:
		return site.Package == sym.Package
	case ast.VisPublic:
		return true
	default:
		// VisNone was already rejected by the collector; an unreachable
		// declaration stays invisible rather than guessing a default.
		return false
	}
}
