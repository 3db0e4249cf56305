package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"goat/internal/diag"
	"goat/internal/source"
)

// AnalyzeTreeFile runs the pipeline over a tree file, consulting the disk
// cache when one is configured. Cache failures degrade to a fresh run; a
// broken cache should never break a check.
func AnalyzeTreeFile(ctx context.Context, path string, opts Options) (*Result, *source.FileSet, error) {
	bag := diag.NewBag(opts.maxDiagnostics())
	raw, err := os.ReadFile(path)
	if err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Message:  fmt.Sprintf("failed to read tree file %s: %v", path, err),
		})
		return &Result{Bag: bag}, source.NewFileSet(), nil
	}

	unit, fileSet := DecodeTree(raw, filepath.Dir(path), bag)
	if unit == nil {
		return &Result{Bag: bag}, fileSet, nil
	}

	key := RunKey(raw, opts)
	if opts.Cache != nil {
		var payload DiskPayload
		if hit, err := opts.Cache.Get(key, &payload); err == nil && hit {
			if res, err := payloadToResult(&payload, unit, opts.maxDiagnostics()); err == nil {
				return res, fileSet, nil
			}
		}
	}

	res, err := AnalyzeUnit(ctx, unit, opts)
	if err != nil {
		return nil, fileSet, err
	}
	if opts.Cache != nil {
		if payload, err := resultToPayload(res); err == nil {
			// A write failure only costs the next run a recompute.
			_ = opts.Cache.Put(key, payload)
		}
	}
	return res, fileSet, nil
}
