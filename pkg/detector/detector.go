package detector

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/platinummonkey/protodetect/pkg/comparator"
	"github.com/platinummonkey/protodetect/pkg/findings"
	"github.com/platinummonkey/protodetect/pkg/loader"
	"github.com/platinummonkey/protodetect/pkg/observability"
	"github.com/platinummonkey/protodetect/pkg/schema"
)

// Options describes one side-by-side comparison. Each side is given either
// proto source directories or a pre-serialized descriptor set file.
type Options struct {
	// OriginalDirs and UpdateDirs are proto source trees. The first directory
	// of each side is the root; any additional directories act as import
	// paths for dependencies.
	OriginalDirs []string
	UpdateDirs   []string

	// OriginalDescriptorSetPath and UpdateDescriptorSetPath point at
	// serialized FileDescriptorSet files, used instead of compiling sources.
	OriginalDescriptorSetPath string
	UpdateDescriptorSetPath   string

	// PackagePrefixes limits the definition files under comparison to the
	// given proto package prefixes. Dependency packages outside the prefixes
	// still feed resource definitions but are not compared directly.
	PackagePrefixes []string

	// OutputJSONPath, when set, receives the findings as a JSON array.
	OutputJSONPath string
}

func (o Options) validate() error {
	if len(o.OriginalDirs) == 0 && o.OriginalDescriptorSetPath == "" {
		return fmt.Errorf("original side: either proto directories or a descriptor set file is required")
	}
	if len(o.UpdateDirs) == 0 && o.UpdateDescriptorSetPath == "" {
		return fmt.Errorf("update side: either proto directories or a descriptor set file is required")
	}
	return nil
}

// Detector loads two versions of an API surface and reports the differences
// between them.
type Detector struct {
	loader *loader.Loader
	logger *observability.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLoader substitutes the proto loader.
func WithLoader(l *loader.Loader) Option {
	return func(d *Detector) {
		d.loader = l
	}
}

// WithLogger sets the logger for detection runs.
func WithLogger(logger *observability.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New creates a Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		logger: observability.NewLogger(observability.InfoLevel, os.Stderr),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.loader == nil {
		d.loader = loader.NewLoader(loader.WithLogger(d.logger))
	}
	return d
}

// Detect runs the full comparison described by opts and returns the report.
func (d *Detector) Detect(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = observability.WithRunID(ctx, runID)
	logger := d.logger.WithField("run_id", runID)

	original, err := d.loadSide(ctx, opts.OriginalDirs, opts.OriginalDescriptorSetPath, opts.PackagePrefixes)
	if err != nil {
		return nil, fmt.Errorf("loading original definitions: %w", err)
	}
	updated, err := d.loadSide(ctx, opts.UpdateDirs, opts.UpdateDescriptorSetPath, opts.PackagePrefixes)
	if err != nil {
		return nil, fmt.Errorf("loading updated definitions: %w", err)
	}

	container := findings.NewContainer()
	if err := comparator.NewFileSetComparator(original, updated, container).Compare(); err != nil {
		return nil, fmt.Errorf("comparing file sets: %w", err)
	}

	report := newReport(runID, original.APIVersion(), updated.APIVersion(), container.All())
	logger.WithFields(map[string]interface{}{
		"findings": report.Summary.Total,
		"breaking": report.Summary.Major,
	}).Info("detection run complete")

	if opts.OutputJSONPath != "" {
		if err := report.WriteJSON(opts.OutputJSONPath); err != nil {
			return report, err
		}
	}
	return report, nil
}

// loadSide produces the schema view for one side of the comparison.
func (d *Detector) loadSide(ctx context.Context, dirs []string, descriptorSetPath string, prefixes []string) (*schema.FileSet, error) {
	var set *descriptorpb.FileDescriptorSet
	var err error
	if descriptorSetPath != "" {
		set, err = readDescriptorSet(descriptorSetPath)
	} else {
		set, err = d.compileDirs(ctx, dirs)
	}
	if err != nil {
		return nil, err
	}
	return schema.NewFileSet(set, prefixes...)
}

// compileDirs compiles all protos under the first directory, with every
// directory serving as an import path.
func (d *Detector) compileDirs(ctx context.Context, dirs []string) (*descriptorpb.FileDescriptorSet, error) {
	if len(dirs) == 1 {
		set, _, err := d.loader.LoadDirectory(ctx, dirs[0])
		return set, err
	}
	set, _, err := d.loader.LoadDirectory(ctx, dirs[0], dirs[1:]...)
	return set, err
}

// readDescriptorSet parses a serialized FileDescriptorSet from disk.
func readDescriptorSet(path string) (*descriptorpb.FileDescriptorSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor set %q: %w", path, err)
	}
	set := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("parsing descriptor set %q: %w", path, err)
	}
	return set, nil
}

// newReport assembles summary counts from the raw findings.
func newReport(runID, originalVersion, updatedVersion string, all []findings.Finding) *Report {
	report := &Report{
		RunID:           runID,
		GeneratedAt:     time.Now().UTC(),
		OriginalVersion: originalVersion,
		UpdatedVersion:  updatedVersion,
		Findings:        all,
		Summary: Summary{
			ByCategory: make(map[string]int),
		},
	}
	for _, f := range all {
		report.Summary.Total++
		switch f.ChangeType {
		case findings.ChangeTypeMajor:
			report.Summary.Major++
		case findings.ChangeTypeMinor:
			report.Summary.Minor++
		case findings.ChangeTypePatch:
			report.Summary.Patch++
		}
		report.Summary.ByCategory[f.Category.String()]++
	}
	return report
}
