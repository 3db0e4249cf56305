package driver

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"goat/internal/ast"
	"goat/internal/diag"
	"goat/internal/source"
)

// Bump when the payload layout changes; a stale schema reads as a miss.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [sha256.Size]byte

// DiskCache stores finished run results keyed by input digest, so checking
// an unchanged tree costs one file read. Thread-safe.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens (creating if needed) a cache rooted at dir. An empty
// dir selects the XDG cache location for app.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// diagRecord is one flattened diagnostic. Spans reduce to their raw fields;
// the tree's file table restores rendering context on a hit.
type diagRecord struct {
	Severity uint8
	Code     uint16
	File     uint32
	Start    uint32
	End      uint32
	Message  string
	Notes    []noteRecord
}

type noteRecord struct {
	File    uint32
	Start   uint32
	End     uint32
	Message string
}

// DiskPayload is the cached run result.
type DiskPayload struct {
	Schema      uint16
	Diagnostics []diagRecord
	// LoweredJSON holds the encoded lowered tree; empty when the run
	// failed and the tree was withheld.
	LoweredJSON []byte
}

// RunKey derives the cache key from the raw tree bytes and every option
// that can change the outcome.
func RunKey(raw []byte, opts Options) Digest {
	h := sha256.New()
	h.Write(raw)
	var knobs [8]byte
	binary.LittleEndian.PutUint16(knobs[0:2], diskCacheSchemaVersion)
	if opts.ReportUnobservedPromises {
		knobs[2] = 1
	}
	binary.LittleEndian.PutUint32(knobs[4:8], uint32(opts.maxDiagnostics()))
	h.Write(knobs[:])
	var d Digest
	h.Sum(d[:0])
	return d
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "runs", hexKey+".mp")
}

// Put serializes and atomically writes a payload.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload; a missing entry or stale schema is (false, nil).
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the whole cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// resultToPayload flattens a finished run for caching.
func resultToPayload(res *Result) (*DiskPayload, error) {
	payload := &DiskPayload{Schema: diskCacheSchemaVersion}
	for _, d := range res.Bag.Items() {
		rec := diagRecord{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			File:     uint32(d.Primary.File),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			rec.Notes = append(rec.Notes, noteRecord{
				File:    uint32(n.Span.File),
				Start:   n.Span.Start,
				End:     n.Span.End,
				Message: n.Msg,
			})
		}
		payload.Diagnostics = append(payload.Diagnostics, rec)
	}
	if res.Lowered != nil {
		var buf bytes.Buffer
		if err := ast.EncodeUnit(&buf, res.Lowered); err != nil {
			return nil, fmt.Errorf("encode lowered tree for cache: %w", err)
		}
		payload.LoweredJSON = buf.Bytes()
	}
	return payload, nil
}

// payloadToResult rebuilds a Result from a cache hit. The symbol table and
// reference map are not cached; hits serve reporting and emission, which
// need neither.
func payloadToResult(payload *DiskPayload, unit *ast.Unit, maxDiagnostics int) (*Result, error) {
	bag := diag.NewBag(maxDiagnostics)
	for _, rec := range payload.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(rec.Severity),
			Code:     diag.Code(rec.Code),
			Message:  rec.Message,
			Primary: source.Span{
				File:  source.FileID(rec.File),
				Start: rec.Start,
				End:   rec.End,
			},
		}
		for _, n := range rec.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{
					File:  source.FileID(n.File),
					Start: n.Start,
					End:   n.End,
				},
				Msg: n.Message,
			})
		}
		bag.Add(d)
	}
	res := &Result{Unit: unit, Bag: bag}
	if len(payload.LoweredJSON) > 0 {
		lowered, err := ast.DecodeUnit(bytes.NewReader(payload.LoweredJSON))
		if err != nil {
			return nil, fmt.Errorf("decode cached lowered tree: %w", err)
		}
		res.Lowered = lowered
	}
	return res, nil
}
