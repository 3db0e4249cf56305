package source

import "testing"

func TestFileSetAddVirtual(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("main.goat", []byte("line one\nline two\nline three"))
	f := fs.Get(id)
	if f == nil {
		t.Fatal("Expected file after AddVirtual")
	}
	if f.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
	if f.GetLine(2) != "line two" {
		t.Errorf("Expected line 2 to be 'line two', got %q", f.GetLine(2))
	}
	if f.GetLine(99) != "" {
		t.Errorf("Expected out-of-range line to be empty, got %q", f.GetLine(99))
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.goat", []byte("abc\ndefgh\nij"))

	// Offset 6 is the 'e' on line 2.
	start, end := fs.Resolve(Span{File: id, Start: 6, End: 8})
	if start.Line != 2 || start.Col != 3 {
		t.Errorf("Expected start 2:3, got %d:%d", start.Line, start.Col)
	}
	if end.Line != 2 || end.Col != 5 {
		t.Errorf("Expected end 2:5, got %d:%d", end.Line, end.Col)
	}

	// Offset 0 is 1:1.
	start, _ = fs.Resolve(Span{File: id, Start: 0, End: 1})
	if start.Line != 1 || start.Col != 1 {
		t.Errorf("Expected start 1:1, got %d:%d", start.Line, start.Col)
	}
}

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("main.goat", []byte("first"), 0)
	id2 := fs.Add("main.goat", []byte("second"), 0)
	if id1 == id2 {
		t.Fatal("Expected re-adding a path to yield a fresh FileID")
	}

	latest, ok := fs.GetLatest("main.goat")
	if !ok {
		t.Fatal("Expected path to be indexed")
	}
	if latest != id2 {
		t.Errorf("Expected latest ID %d, got %d", id2, latest)
	}
	if string(fs.Get(id1).Content) != "first" {
		t.Error("Expected the first version to stay reachable")
	}
}

func TestFormatPathBasename(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("pkg/util/log.goat", []byte(""))
	got := fs.Get(id).FormatPath("basename", fs.BaseDir())
	if got != "log.goat" {
		t.Errorf("Expected basename 'log.goat', got %q", got)
	}
}
