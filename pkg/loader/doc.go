// Package loader compiles .proto source trees into descriptor sets.
//
// # Overview
//
// The Loader wraps the protocompile compiler, resolving imports against the
// well-known standard imports plus any caller-supplied import paths. Source
// info is retained so downstream consumers can report file and line locations.
// Compiled descriptor sets are cached in a bounded LRU keyed by the import
// paths and file list.
//
// # Usage
//
//	ldr := loader.NewLoader()
//	set, files, err := ldr.LoadDirectory(ctx, "testdata/v1")
//
// # Related Packages
//
//   - pkg/schema: consumes the descriptor sets produced here
//   - pkg/detector: drives loading for both sides of a comparison
package loader
