// Package diag defines the diagnostic model shared by all pipeline stages.
//
// Every stage reports findings through a Reporter; Bag aggregates them and
// provides the deterministic ordering (sort by location, then dedup) that the
// final report requires regardless of how much parallelism produced the
// diagnostics. Rendering lives in internal/diagfmt; orchestration in
// internal/driver.
//
// All goat source-level violations are fatal: the pipeline only ever emits
// SevError. The lower severities exist for infrastructure output (timing
// notes, cache reports) and are never produced by the analysis stages
// themselves.
package diag
