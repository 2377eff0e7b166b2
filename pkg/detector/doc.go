// Package detector orchestrates breaking change detection runs.
//
// # Overview
//
// A Detector loads the original and updated proto definitions, either by
// compiling source trees or by reading serialized descriptor sets, compares
// them, and assembles the findings into a Report with summary counts. Each
// run is tagged with a UUID that also flows through log entries.
//
// # Usage
//
//	d := detector.New()
//	report, err := d.Detect(ctx, detector.Options{
//		OriginalDirs: []string{"protos/v1"},
//		UpdateDirs:   []string{"protos/v1new"},
//	})
//	if report.Breaking() {
//		fmt.Print(report.HumanReadable())
//	}
//
// # Related Packages
//
//   - pkg/loader: proto compilation
//   - pkg/comparator: the comparison engine
//   - pkg/findings: finding records and accumulation
package detector
