package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files and resolves spans into
// line/column positions for diagnostic output.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase creates a FileSet with a base directory for relative
// path rendering.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the configured base directory, falling back to the current
// working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and
// returns a fresh FileID. Re-adding a path always yields a new FileID; the
// path index tracks the latest version.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files) + 1)
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (stdin, test, or parser-provided).
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil for NoFileID and
// IDs the set never issued.
func (fileSet *FileSet) Get(id FileID) *File {
	if id == NoFileID || int(id) > len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id-1]
}

// Len returns the number of stored files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into start and end line/column positions. Spans
// over unknown files resolve to zero positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// GetLine returns the 1-based line with the given number, without the
// trailing newline. Out-of-range lines yield "".
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	end := lenContent
	if lineNum-1 < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	}

	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}
	return string(f.Content[start:end])
}

// FormatPath renders the file path for display.
// mode: "absolute", "relative", "basename", "auto".
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path

	case "basename":
		return BaseName(f.Path)

	case "auto":
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return BaseName(f.Path)

	default:
		return f.Path
	}
}

// AbsolutePath returns the normalized absolute form of path.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath makes path relative to baseDir; paths escaping baseDir fall
// back to the absolute form.
func RelativePath(path, baseDir string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absPath), nil
	}
	return normalizePath(rel), nil
}

// BaseName returns the final path element.
func BaseName(path string) string {
	return filepath.Base(path)
}
