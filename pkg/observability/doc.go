// Package observability provides structured JSON logging for detection runs.
//
// # Structured Logging
//
// Create a logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stderr)
//	logger.Infof("loaded %d files", count)
//
// Context-aware logging:
//
//	ctx = observability.WithRunID(ctx, runID)
//	observability.FromContext(ctx).Info("comparison started")
//
// Loggers attached to a context via WithLogger are recovered with
// FromContext, which also annotates entries with the run ID when one
// is present.
//
// # Related Packages
//
//   - pkg/config: logging configuration from the environment
//   - pkg/detector: attaches run IDs to detection contexts
package observability
