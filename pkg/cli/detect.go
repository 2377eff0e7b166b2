package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/platinummonkey/protodetect/pkg/config"
	"github.com/platinummonkey/protodetect/pkg/detector"
	"github.com/platinummonkey/protodetect/pkg/loader"
	"github.com/platinummonkey/protodetect/pkg/observability"
)

func newDetectCommand() *Command {
	cmd := &Command{
		Name:        "detect",
		Description: "Detect breaking changes between two proto API versions",
		Flags:       flag.NewFlagSet("detect", flag.ExitOnError),
		Run:         runDetect,
	}

	cmd.Flags.String("original", "", "Directories containing the original proto definitions, comma separated (required unless --original-descriptor-set is given)")
	cmd.Flags.String("update", "", "Directories containing the updated proto definitions, comma separated (required unless --update-descriptor-set is given)")
	cmd.Flags.String("original-descriptor-set", "", "Serialized FileDescriptorSet for the original version")
	cmd.Flags.String("update-descriptor-set", "", "Serialized FileDescriptorSet for the updated version")
	cmd.Flags.String("package-prefixes", "", "Proto package prefixes under comparison, comma separated")
	cmd.Flags.String("output-json", "", "File path for the findings JSON output")
	cmd.Flags.String("format", "text", "Output format: text, json")

	return cmd
}

func runDetect(args []string) error {
	return runDetectTo(os.Stdout, args)
}

func runDetectTo(out io.Writer, args []string) error {
	flags := flag.NewFlagSet("detect", flag.ExitOnError)
	originalDirs := flags.String("original", "", "Directories containing the original proto definitions, comma separated")
	updateDirs := flags.String("update", "", "Directories containing the updated proto definitions, comma separated")
	originalSet := flags.String("original-descriptor-set", "", "Serialized FileDescriptorSet for the original version")
	updateSet := flags.String("update-descriptor-set", "", "Serialized FileDescriptorSet for the updated version")
	packagePrefixes := flags.String("package-prefixes", "", "Proto package prefixes under comparison, comma separated")
	outputJSON := flags.String("output-json", "", "File path for the findings JSON output")
	format := flags.String("format", "text", "Output format: text, json")

	if err := flags.Parse(args); err != nil {
		return err
	}

	// Validate required flags
	if *originalDirs == "" && *originalSet == "" {
		return fmt.Errorf("either --original or --original-descriptor-set is required")
	}
	if *updateDirs == "" && *updateSet == "" {
		return fmt.Errorf("either --update or --update-descriptor-set is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	opts := detector.Options{
		OriginalDirs:              splitList(*originalDirs),
		UpdateDirs:                splitList(*updateDirs),
		OriginalDescriptorSetPath: *originalSet,
		UpdateDescriptorSetPath:   *updateSet,
		PackagePrefixes:           splitList(*packagePrefixes),
		OutputJSONPath:            *outputJSON,
	}
	if len(opts.PackagePrefixes) == 0 {
		opts.PackagePrefixes = cfg.Detection.PackagePrefixes
	}
	if opts.OutputJSONPath == "" {
		opts.OutputJSONPath = cfg.Detection.OutputJSONPath
	}
	// Extra import paths only apply to sides compiled from source.
	if len(opts.OriginalDirs) > 0 {
		opts.OriginalDirs = append(opts.OriginalDirs, cfg.Loader.ImportPaths...)
	}
	if len(opts.UpdateDirs) > 0 {
		opts.UpdateDirs = append(opts.UpdateDirs, cfg.Loader.ImportPaths...)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stderr)
	d := detector.New(
		detector.WithLogger(logger),
		detector.WithLoader(loader.NewLoader(
			loader.WithLogger(logger),
			loader.WithCacheSize(cfg.Loader.CacheSize),
		)),
	)

	report, err := d.Detect(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	// Output results
	if *format == "json" {
		if err := outputReportJSON(out, report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, report.HumanReadable())
	}

	// Exit with non-zero status when breaking changes were found
	if report.Breaking() {
		return fmt.Errorf("breaking changes detected")
	}
	return nil
}

func outputReportJSON(out io.Writer, report *detector.Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
