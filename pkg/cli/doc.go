// Package cli implements the protodetect command-line interface.
//
// # Overview
//
// The CLI is a small command tree over the standard flag package. The root
// command dispatches to subcommands by name; each subcommand owns its flag
// set and run function.
//
// # Commands
//
// Detect breaking changes between two proto trees:
//
//	protodetect detect --original protos/v1 --update protos/v1new
//
// Compare against a pre-built descriptor set and emit JSON:
//
//	protodetect detect --original-descriptor-set original.pb \
//	    --update protos/v1new --format json
//
// The command exits non-zero when any MAJOR finding is detected, so it can
// gate CI pipelines directly.
//
// # Related Packages
//
//   - pkg/detector: runs the comparison
//   - pkg/config: environment defaults (PROTODETECT_*)
package cli
