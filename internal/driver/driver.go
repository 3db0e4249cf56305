// Package driver orchestrates the analysis pipeline: symbol collection,
// reference resolution, semantic checks, lowering and the final aggregated
// report. Per-file work runs on parallel workers with a deterministic merge
// so diagnostic order never depends on scheduling.
package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"goat/internal/ast"
	"goat/internal/diag"
	"goat/internal/lower"
	"goat/internal/sema"
	"goat/internal/source"
	"goat/internal/symbols"
)

// Options tune one pipeline run.
type Options struct {
	// Jobs caps parallel per-file workers; 0 means one per CPU.
	Jobs int
	// MaxDiagnostics truncates the report; 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int
	// ReportUnobservedPromises enables the launch observation policy check.
	ReportUnobservedPromises bool
	// Cache, when non-nil, short-circuits repeated runs over identical
	// input.
	Cache *DiskCache
}

func (o Options) jobs() int {
	if o.Jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Jobs
}

// DefaultMaxDiagnostics is the report cap when Options leaves it unset.
const DefaultMaxDiagnostics = 100

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

// Result is one pipeline run's output. Lowered is nil whenever the bag
// carries errors; a broken tree is never handed to the emitter.
type Result struct {
	Unit    *ast.Unit
	Lowered *ast.Unit
	Bag     *diag.Bag
	Collect *symbols.Result
	Refs    map[*ast.Expr]symbols.SymbolID
}

// Succeeded reports whether the run produced a lowered tree.
func (r *Result) Succeeded() bool {
	return r != nil && !r.Bag.HasErrors()
}

// AnalyzeUnit runs every stage over an in-memory tree. All stages always
// run; an error in one stage never hides what later stages can still find.
func AnalyzeUnit(ctx context.Context, unit *ast.Unit, opts Options) (*Result, error) {
	collections, err := collectParallel(ctx, unit, opts)
	if err != nil {
		return nil, err
	}
	collect := symbols.Merge(unit, collections, nil, opts.maxDiagnostics())

	resolved, err := resolveParallel(ctx, unit, collect.Table, opts)
	if err != nil {
		return nil, err
	}
	refs := make(map[*ast.Expr]symbols.SymbolID)
	for _, rr := range resolved {
		for e, id := range rr.Refs {
			refs[e] = id
		}
	}

	checked := sema.CheckUnit(unit, collect, refs, sema.Options{
		ReportUnobservedPromises: opts.ReportUnobservedPromises,
		MaxDiagnostics:           opts.maxDiagnostics(),
	})

	bag := diag.NewBag(opts.maxDiagnostics())
	bag.Merge(collect.Bag)
	for _, rr := range resolved {
		bag.Merge(rr.Bag)
	}
	bag.Merge(checked.Bag)
	bag.Sort()
	bag.Dedup()

	res := &Result{
		Unit:    unit,
		Bag:     bag,
		Collect: collect,
		Refs:    refs,
	}
	if !bag.HasErrors() {
		res.Lowered = lower.New(collect, refs, checked.Flagged).LowerUnit(unit)
	}
	return res, nil
}

// collectParallel runs the per-file collection phase on worker goroutines.
// Results land at their file's index, so the merge sees unit order no
// matter which worker finished first.
func collectParallel(ctx context.Context, unit *ast.Unit, opts Options) ([]*symbols.FileCollection, error) {
	type job struct {
		pkg  string
		file *ast.File
	}
	var jobs []job
	for _, pkg := range unit.Packages {
		for _, f := range pkg.Files {
			jobs = append(jobs, job{pkg: pkg.Name, file: f})
		}
	}
	results := make([]*symbols.FileCollection, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), max(len(jobs), 1)))
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = symbols.CollectFile(j.pkg, j.file, opts.maxDiagnostics())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveParallel resolves references file by file against the published
// table, which is read-only at this point.
func resolveParallel(ctx context.Context, unit *ast.Unit, table *symbols.Table, opts Options) ([]*symbols.ResolveResult, error) {
	type job struct {
		pkg  *ast.Package
		file *ast.File
	}
	var jobs []job
	for _, pkg := range unit.Packages {
		for _, f := range pkg.Files {
			jobs = append(jobs, job{pkg: pkg, file: f})
		}
	}
	results := make([]*symbols.ResolveResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), max(len(jobs), 1)))
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = symbols.ResolveFile(table, j.pkg, j.file, opts.maxDiagnostics())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RegisterFiles mirrors the tree's file table into an empty FileSet so
// diagnostics can render paths and previews. Files are registered in ID
// order, one entry per ID, which keeps the set's sequential IDs aligned
// with the tree's. Sources that exist on disk are loaded; anything else
// becomes a virtual entry.
func RegisterFiles(unit *ast.Unit, fileSet *source.FileSet) {
	byID := make(map[source.FileID]*ast.File)
	var maxID source.FileID
	for _, pkg := range unit.Packages {
		for _, f := range pkg.Files {
			if f.ID > maxID {
				maxID = f.ID
			}
			if _, dup := byID[f.ID]; !dup {
				byID[f.ID] = f
			}
		}
	}
	for id := source.FileID(1); id <= maxID; id++ {
		f, ok := byID[id]
		if !ok {
			fileSet.AddVirtual("", nil)
			continue
		}
		if _, err := fileSet.Load(f.Path); err != nil {
			fileSet.AddVirtual(f.Path, nil)
		}
	}
}
