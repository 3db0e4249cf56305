package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"goat/internal/ast"
	"goat/internal/diag"
)

func writeTreeFile(t *testing.T, unit *ast.Unit) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ast.EncodeUnit(&buf, unit); err != nil {
		t.Fatalf("Expected the tree to encode, got %v", err)
	}
	path := filepath.Join(t.TempDir(), "unit.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Expected the tree file write to succeed, got %v", err)
	}
	return path
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestDecodeTreeMalformed(t *testing.T) {
	bag := diag.NewBag(10)
	unit, fileSet := DecodeTree([]byte("{not json"), ".", bag)
	if unit != nil {
		t.Error("Expected no unit from malformed input")
	}
	if fileSet == nil {
		t.Error("Expected a file set even on decode failure")
	}
	if !hasCode(bag, diag.IOBadTreeFile) {
		t.Errorf("Expected IOBadTreeFile, got: %+v", bag.Items())
	}
}

func TestLoadTreeMissingFile(t *testing.T) {
	unit, _, bag := LoadTree(filepath.Join(t.TempDir(), "absent.json"), 10)
	if unit != nil {
		t.Error("Expected no unit for a missing file")
	}
	if !hasCode(bag, diag.IOLoadFileError) {
		t.Errorf("Expected IOLoadFileError, got: %+v", bag.Items())
	}
}

func TestAnalyzeTreeFileMissing(t *testing.T) {
	res, _, err := AnalyzeTreeFile(context.Background(),
		filepath.Join(t.TempDir(), "absent.json"), Options{})
	if err != nil {
		t.Fatalf("Expected the failure as a diagnostic, got error %v", err)
	}
	if res.Succeeded() {
		t.Fatal("Expected the run to fail")
	}
	if !hasCode(res.Bag, diag.IOLoadFileError) {
		t.Errorf("Expected IOLoadFileError, got: %+v", res.Bag.Items())
	}
}

func TestAnalyzeTreeFileEndToEnd(t *testing.T) {
	path := writeTreeFile(t, sugaredUnit())
	res, fileSet, err := AnalyzeTreeFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Expected no pipeline error, got %v", err)
	}
	if !res.Succeeded() || res.Lowered == nil {
		t.Fatalf("Expected a clean run with a lowered tree, got: %+v", res.Bag.Items())
	}
	// The sources named by the tree do not exist on disk here, so they
	// register as virtual entries.
	if fileSet.Len() != 1 {
		t.Errorf("Expected 1 registered file, got %d", fileSet.Len())
	}
}

func TestAnalyzeTreeFileUsesCache(t *testing.T) {
	cache, err := OpenDiskCache("goat", filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("Expected the cache to open, got %v", err)
	}
	path := writeTreeFile(t, sugaredUnit())
	opts := Options{Cache: cache}

	first, _, err := AnalyzeTreeFile(context.Background(), path, opts)
	if err != nil || !first.Succeeded() {
		t.Fatalf("Expected a clean first run, got %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected to reread the tree file, got %v", err)
	}
	var payload DiskPayload
	hit, err := cache.Get(RunKey(raw, opts), &payload)
	if err != nil || !hit {
		t.Fatalf("Expected the first run to populate the cache, got hit=%v err=%v", hit, err)
	}

	second, _, err := AnalyzeTreeFile(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Expected no pipeline error on the cached run, got %v", err)
	}
	if !second.Succeeded() || second.Lowered == nil {
		t.Fatal("Expected the cached run to reproduce the lowered tree")
	}
	// Cache hits skip collection; the side tables stay empty.
	if second.Collect != nil {
		t.Error("Expected the cached result to carry no symbol table")
	}
}
