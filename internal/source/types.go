package source

type (
	// FileID uniquely identifies a source file within a FileSet. IDs are
	// sequential starting at 1; 0 is NoFileID.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

// NoFileID marks a span with no backing file.
const NoFileID FileID = 0

const (
	// FileVirtual indicates the file was added from memory (test, stdin, or a
	// tree handed over by the external parser).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
