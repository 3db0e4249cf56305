package ast

import (
	"goat/internal/source"
)

// Unit is one compilation unit: the closed set of packages the pipeline
// analyzes together. Cross-package references never leave the unit.
type Unit struct {
	Packages []*Package
}

// PackageByName finds a package in the unit.
func (u *Unit) PackageByName(name string) *Package {
	for _, p := range u.Packages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Package groups the files that share one package name.
type Package struct {
	Name  string
	Files []*File
}

// File is one source file as delivered by the external parser.
type File struct {
	Path    string
	ID      source.FileID
	Span    source.Span
	Imports []*Import
	Decls   []*Decl
}

// Import brings another unit package into scope. Open imports splice the
// imported package's public names directly into the importing package scope;
// otherwise references go through the alias (or the package name).
type Import struct {
	Span  source.Span
	Path  string // package name within the unit
	Alias string // optional local name
	Open  bool
}

// LocalName returns the name references use for a non-open import.
func (imp *Import) LocalName() string {
	if imp.Alias != "" {
		return imp.Alias
	}
	return imp.Path
}
