package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"goat/internal/ast"
	"goat/internal/diag"
	"goat/internal/source"
)

// LoadTree reads a JSON syntax tree produced by the external parser and
// mirrors its file table into a FileSet rooted at the tree file's
// directory. I/O and decode failures become diagnostics instead of
// process errors, so the caller renders them through the same reporter as
// everything else.
func LoadTree(path string, maxDiagnostics int) (*ast.Unit, *source.FileSet, *diag.Bag) {
	bag := diag.NewBag(maxDiagnostics)
	raw, err := os.ReadFile(path)
	if err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Message:  fmt.Sprintf("failed to read tree file %s: %v", path, err),
		})
		return nil, source.NewFileSet(), bag
	}
	unit, fileSet := DecodeTree(raw, filepath.Dir(path), bag)
	return unit, fileSet, bag
}

// DecodeTree parses raw tree JSON; baseDir anchors relative source paths.
// A malformed tree yields a nil unit and a bag entry.
func DecodeTree(raw []byte, baseDir string, bag *diag.Bag) (*ast.Unit, *source.FileSet) {
	fileSet := source.NewFileSetWithBase(baseDir)
	unit, err := ast.DecodeUnit(bytes.NewReader(raw))
	if err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOBadTreeFile,
			Message:  fmt.Sprintf("malformed tree: %v", err),
		})
		return nil, fileSet
	}
	RegisterFiles(unit, fileSet)
	return unit, fileSet
}
